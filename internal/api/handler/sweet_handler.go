package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/candycraft/sweetshop-api/internal/api/metrics"
	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// SweetHandler handles HTTP requests for the catalog and stock operations.
type SweetHandler struct {
	service ports.SweetService
}

func NewSweetHandler(service ports.SweetService) *SweetHandler {
	return &SweetHandler{service: service}
}

// Create handles POST /api/sweets.
//
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "Sweet"
// @Success      201   {object}  domain.Sweet
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /api/sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sweet, err := h.service.CreateSweet(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sweet)
}

// List handles GET /api/sweets. Missing, non-numeric or non-positive page and
// limit fall back to 1 and 10.
//
// @Summary      List sweets
// @Tags         sweets
// @Produce      json
// @Param        page   query     int  false  "Page number"     default(1)
// @Param        limit  query     int  false  "Items per page"  default(10)
// @Success      200    {object}  listSweetsResponse
// @Router       /api/sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	page := positiveIntOr(c.QueryParam("page"), defaultPage)
	limit := positiveIntOr(c.QueryParam("limit"), defaultLimit)

	res, err := h.service.ListSweets(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listSweetsResponse{
		Sweets: res.Sweets,
		Total:  res.Total,
		Pages:  res.Pages,
		Page:   res.Page,
		Limit:  res.Limit,
	})
}

// Search handles GET /api/sweets/search.
//
// @Summary      Search sweets
// @Tags         sweets
// @Produce      json
// @Param        q         query     string  false  "Full-text query over name and category"
// @Param        priceMin  query     number  false  "Inclusive lower price bound"
// @Param        priceMax  query     number  false  "Inclusive upper price bound"
// @Success      200       {object}  searchSweetsResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /api/sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	priceMin, err := optionalPrice(c.QueryParam("priceMin"), "priceMin")
	if err != nil {
		return err
	}
	priceMax, err := optionalPrice(c.QueryParam("priceMax"), "priceMax")
	if err != nil {
		return err
	}

	res, err := h.service.SearchSweets(c.Request().Context(), ports.SearchSweetsInput{
		Query:    c.QueryParam("q"),
		PriceMin: priceMin,
		PriceMax: priceMax,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchSweetsResponse{Sweets: res.Sweets, Count: res.Count})
}

// Get handles GET /api/sweets/:id.
//
// @Summary      Get a sweet
// @Tags         sweets
// @Produce      json
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  domain.Sweet
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.GetSweet(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweet)
}

// Update handles PUT /api/sweets/:id. Only the fields present in the body change.
//
// @Summary      Update a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet id"
// @Param        body  body      updateSweetRequest  true  "Fields to change"
// @Success      200   {object}  domain.Sweet
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req updateSweetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sweet, err := h.service.UpdateSweet(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweet)
}

// Delete handles DELETE /api/sweets/:id.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  sweetActionResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	sweet, err := h.service.DeleteSweet(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetActionResponse{Message: "Sweet deleted successfully", Sweet: sweet})
}

// Purchase handles POST /api/sweets/:id/purchase.
//
// @Summary      Purchase a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Sweet id"
// @Param        body  body      quantityRequest  true  "Units to buy"
// @Success      200   {object}  sweetActionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	quantity, err := bindQuantity(c)
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return err
	}

	sweet, err := h.service.PurchaseSweet(c.Request().Context(), c.Param("id"), quantity)
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
		return err
	}

	metrics.PurchasesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.PurchasedUnitsTotal.WithLabelValues(string(sweet.Category)).Add(float64(quantity))
	return c.JSON(http.StatusOK, sweetActionResponse{Message: "Purchase successful", Sweet: sweet})
}

// Restock handles POST /api/sweets/:id/restock.
//
// @Summary      Restock a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Sweet id"
// @Param        body  body      quantityRequest  true  "Units to add"
// @Success      200   {object}  sweetActionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	quantity, err := bindQuantity(c)
	if err != nil {
		return err
	}

	sweet, err := h.service.RestockSweet(c.Request().Context(), c.Param("id"), quantity)
	if err != nil {
		return err
	}

	metrics.RestockedUnitsTotal.Add(float64(quantity))
	return c.JSON(http.StatusOK, sweetActionResponse{Message: "Restock successful", Sweet: sweet})
}

func bindQuantity(c echo.Context) (int, error) {
	var req quantityRequest
	if err := bindJSON(c, &req); err != nil {
		return 0, err
	}
	if err := c.Validate(&req); err != nil {
		return 0, err
	}
	return *req.Quantity, nil
}

func positiveIntOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// optionalPrice parses a price bound. Empty means absent.
func optionalPrice(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.Validationf("%s must be a number", name)
	}
	return &v, nil
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ResultInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidID):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
