package ports

import (
	"context"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

// CreateSweetInput carries all data needed to create a sweet.
type CreateSweetInput struct {
	Name        string
	Category    domain.Category
	Price       float64
	Quantity    int
	Description string
	ImageURL    string
}

// ListSweetsResult is one page of the catalog.
type ListSweetsResult struct {
	Sweets []*domain.Sweet
	Total  int64
	Pages  int
	Page   int
	Limit  int
}

// SearchSweetsInput carries the optional search parameters.
type SearchSweetsInput struct {
	Query    string
	PriceMin *float64
	PriceMax *float64
}

// SearchSweetsResult is the full (unpaginated) match set.
type SearchSweetsResult struct {
	Sweets []*domain.Sweet
	Count  int
}

// SweetService defines the inventory use cases.
type SweetService interface {
	CreateSweet(ctx context.Context, in CreateSweetInput) (*domain.Sweet, error)
	ListSweets(ctx context.Context, page, limit int) (*ListSweetsResult, error)
	SearchSweets(ctx context.Context, in SearchSweetsInput) (*SearchSweetsResult, error)
	GetSweet(ctx context.Context, id string) (*domain.Sweet, error)
	UpdateSweet(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	DeleteSweet(ctx context.Context, id string) (*domain.Sweet, error)
	PurchaseSweet(ctx context.Context, id string, quantity int) (*domain.Sweet, error)
	RestockSweet(ctx context.Context, id string, quantity int) (*domain.Sweet, error)
}
