package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/candycraft/sweetshop-api/docs"
	"github.com/candycraft/sweetshop-api/internal/api/handler"
	"github.com/candycraft/sweetshop-api/internal/api/middleware"
	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth   ports.AuthService
	Tokens ports.TokenValidator
	Sweets ports.SweetService
	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handler.DependencyCheck
	Logger zerolog.Logger
}

// Options tune the global middleware.
type Options struct {
	AllowedOrigins []string
	// AuthRateLimit caps register/login requests per second per client IP.
	// Zero disables the limiter.
	AuthRateLimit        float64
	BodyLimit            string
	ExposeInternalErrors bool
}

// access is the authorization level a route demands.
type access int

const (
	public access = iota
	authenticated
	adminOnly
)

type route struct {
	method    string
	path      string
	access    access
	throttled bool
	handle    echo.HandlerFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, opts.ExposeInternalErrors)

	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: allowedOrigins(opts.AllowedOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "sweetshop",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	sweetHandler := handler.NewSweetHandler(deps.Sweets)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	// /search is registered before /:id; echo prefers static segments anyway.
	routes := []route{
		{http.MethodPost, "/api/auth/register", public, true, authHandler.Register},
		{http.MethodPost, "/api/auth/login", public, true, authHandler.Login},
		{http.MethodGet, "/api/auth/profile", authenticated, false, authHandler.Profile},

		{http.MethodGet, "/api/sweets", public, false, sweetHandler.List},
		{http.MethodGet, "/api/sweets/search", public, false, sweetHandler.Search},
		{http.MethodGet, "/api/sweets/:id", public, false, sweetHandler.Get},
		{http.MethodPost, "/api/sweets", adminOnly, false, sweetHandler.Create},
		{http.MethodPut, "/api/sweets/:id", adminOnly, false, sweetHandler.Update},
		{http.MethodDelete, "/api/sweets/:id", adminOnly, false, sweetHandler.Delete},
		{http.MethodPost, "/api/sweets/:id/purchase", authenticated, false, sweetHandler.Purchase},
		{http.MethodPost, "/api/sweets/:id/restock", adminOnly, false, sweetHandler.Restock},

		{http.MethodGet, "/health", public, false, healthHandler.Liveness},
		{http.MethodGet, "/health/ready", public, false, healthHandler.Readiness},
	}

	authenticate := middleware.Authenticate(deps.Tokens)
	requireAdmin := middleware.AuthorizeRoles(domain.RoleAdmin)
	var limiter echo.MiddlewareFunc
	if opts.AuthRateLimit > 0 {
		limiter = authRateLimiter(opts.AuthRateLimit)
	}

	for _, r := range routes {
		var mws []echo.MiddlewareFunc
		if r.throttled && limiter != nil {
			mws = append(mws, limiter)
		}
		switch r.access {
		case authenticated:
			mws = append(mws, authenticate)
		case adminOnly:
			mws = append(mws, authenticate, requireAdmin)
		}
		e.Add(r.method, r.path, r.handle, mws...)
	}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func authRateLimiter(rps float64) echo.MiddlewareFunc {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(echo.Context, string, error) error {
			return domain.Errorf(domain.ErrTooManyAttempts, "Too many requests, please try again later")
		},
	})
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
