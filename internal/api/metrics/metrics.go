// Package metrics defines and registers the business Prometheus metrics of the
// sweet shop API. HTTP request metrics come from the echoprometheus middleware
// wired in the router; everything here is domain level.
//
// All metrics are registered with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// Purchase outcomes.
const (
	ResultSuccess           = "success"
	ResultInsufficientStock = "insufficient_stock"
	ResultNotFound          = "not_found"
	ResultInvalid           = "invalid"
	ResultError             = "error"
)

// ── Inventory ────────────────────────────────────────────────────────────────

// PurchasesTotal counts purchase attempts.
// Label:
//   - result: success, insufficient_stock, not_found, invalid or error
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase attempts, by result.",
	},
	[]string{"result"},
)

// PurchasedUnitsTotal counts units sold.
// Label:
//   - category: the sweet category (e.g. "chocolate")
var PurchasedUnitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchased_units_total",
		Help:      "Total number of units sold, by category.",
	},
	[]string{"category"},
)

// RestockedUnitsTotal counts units added by restocks.
var RestockedUnitsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restocked_units_total",
		Help:      "Total number of units added to stock by restocks.",
	},
)

// ── Auth ─────────────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts new accounts.
// Label:
//   - role: "admin" or "customer"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "users_registered_total",
		Help:      "Total number of registered users, by role.",
	},
	[]string{"role"},
)
