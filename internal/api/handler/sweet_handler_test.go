package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
	"github.com/candycraft/sweetshop-api/internal/core/service"
	"github.com/candycraft/sweetshop-api/internal/testutil/memstore"
)

func newSweetHandler() (*SweetHandler, *service.SweetService) {
	svc := service.NewSweetService(memstore.NewSweets(), zerolog.Nop())
	return NewSweetHandler(svc), svc
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func seedSweet(t *testing.T, svc *service.SweetService, name string, category domain.Category, price float64, qty int) *domain.Sweet {
	t.Helper()
	s, err := svc.CreateSweet(context.Background(), ports.CreateSweetInput{Name: name, Category: category, Price: price, Quantity: qty})
	if err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return s
}

func TestSweetHandler_Create(t *testing.T) {
	h, _ := newSweetHandler()

	c, rec := newJSONContext(http.MethodPost, "/api/sweets",
		`{"name":"Gummy Bears","category":"candy","price":1.99,"quantity":100,"imageUrl":"https://img.example.com/gb.png"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"_id", "name", "category", "price", "quantity", "imageUrl", "createdAt", "updatedAt"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing %q in %s", key, rec.Body.String())
		}
	}
}

func TestSweetHandler_Create_Validation(t *testing.T) {
	h, _ := newSweetHandler()

	cases := map[string]struct {
		body string
		want string
	}{
		"missing price":    {`{"name":"A","category":"candy","quantity":1}`, "price is required"},
		"missing quantity": {`{"name":"A","category":"candy","price":1}`, "quantity is required"},
		"bad image url":    {`{"name":"A","category":"candy","price":1,"quantity":1,"imageUrl":"nope"}`, "imageUrl must be a valid URL"},
		"negative price":   {`{"name":"A","category":"candy","price":-1,"quantity":1}`, "price cannot be negative"},
		"bad category":     {`{"name":"A","category":"veg","price":1,"quantity":1}`, "category must be one of"},
		"fractional qty":   {`{"name":"A","category":"candy","price":1,"quantity":1.5}`, "invalid request body"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/api/sweets", tc.body)
			err := h.Create(c)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestSweetHandler_List_CoercesPaging(t *testing.T) {
	h, svc := newSweetHandler()
	for i := 0; i < 12; i++ {
		seedSweet(t, svc, "Candy", domain.CategoryCandy, 1, 1)
	}

	c, rec := newJSONContext(http.MethodGet, "/api/sweets?page=2&limit=5", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp listSweetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Sweets) != 5 || resp.Total != 12 || resp.Pages != 3 {
		t.Fatalf("unexpected page: len=%d total=%d pages=%d", len(resp.Sweets), resp.Total, resp.Pages)
	}

	c, rec = newJSONContext(http.MethodGet, "/api/sweets?page=abc&limit=-4", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp = listSweetsResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Page != 1 || resp.Limit != 10 || len(resp.Sweets) != 10 {
		t.Fatalf("expected defaults, got page=%d limit=%d len=%d", resp.Page, resp.Limit, len(resp.Sweets))
	}
}

func TestSweetHandler_Search(t *testing.T) {
	h, svc := newSweetHandler()
	seedSweet(t, svc, "Dark Chocolate", domain.CategoryChocolate, 4.5, 1)
	seedSweet(t, svc, "Gummy Bears", domain.CategoryCandy, 1.99, 1)

	c, rec := newJSONContext(http.MethodGet, "/api/sweets/search?q=chocolate&priceMax=5", "")
	if err := h.Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp searchSweetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 1 || resp.Sweets[0].Name != "Dark Chocolate" {
		t.Fatalf("unexpected search result: %s", rec.Body.String())
	}

	c, _ = newJSONContext(http.MethodGet, "/api/sweets/search?priceMin=cheap", "")
	if err := h.Search(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-numeric bound, got %v", err)
	}
}

func TestSweetHandler_GetUpdateDelete(t *testing.T) {
	h, svc := newSweetHandler()
	s := seedSweet(t, svc, "Taffy", domain.CategoryTaffy, 0.5, 10)

	c, rec := newJSONContext(http.MethodGet, "/", "")
	if err := h.Get(withID(c, s.ID)); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"name":"Taffy"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newJSONContext(http.MethodGet, "/", "")
	if err := h.Get(withID(c, "bad-id")); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	c, rec = newJSONContext(http.MethodPut, "/", `{"price":0.75}`)
	if err := h.Update(withID(c, s.ID)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"price":0.75`) || !strings.Contains(rec.Body.String(), `"quantity":10`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newJSONContext(http.MethodPut, "/", `{"quantity":-1}`)
	if err := h.Update(withID(c, s.ID)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	c, rec = newJSONContext(http.MethodDelete, "/", "")
	if err := h.Delete(withID(c, s.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Sweet deleted successfully") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newJSONContext(http.MethodDelete, "/", "")
	if err := h.Delete(withID(c, s.ID)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSweetHandler_PurchaseAndRestock(t *testing.T) {
	h, svc := newSweetHandler()
	s := seedSweet(t, svc, "Gummy Bears", domain.CategoryCandy, 1.99, 100)

	c, rec := newJSONContext(http.MethodPost, "/", `{"quantity":30}`)
	if err := h.Purchase(withID(c, s.ID)); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	var resp sweetActionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Purchase successful" || resp.Sweet.Quantity != 70 {
		t.Fatalf("unexpected purchase response: %s", rec.Body.String())
	}

	c, _ = newJSONContext(http.MethodPost, "/", `{"quantity":1000}`)
	if err := h.Purchase(withID(c, s.ID)); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	for _, body := range []string{`{}`, `{"quantity":0}`, `{"quantity":-2}`} {
		c, _ = newJSONContext(http.MethodPost, "/", body)
		if err := h.Purchase(withID(c, s.ID)); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}

	c, rec = newJSONContext(http.MethodPost, "/", `{"quantity":50}`)
	if err := h.Restock(withID(c, s.ID)); err != nil {
		t.Fatalf("restock: %v", err)
	}
	resp = sweetActionResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Restock successful" || resp.Sweet.Quantity != 120 {
		t.Fatalf("unexpected restock response: %s", rec.Body.String())
	}
}

func TestPurchaseResult(t *testing.T) {
	cases := map[string]error{
		"insufficient_stock": domain.ErrInsufficientStock,
		"not_found":          domain.ErrNotFound,
		"invalid":            domain.ErrInvalidID,
		"error":              errors.New("boom"),
	}
	for want, err := range cases {
		if got := purchaseResult(err); got != want {
			t.Errorf("purchaseResult(%v) = %q, want %q", err, got, want)
		}
	}
}
