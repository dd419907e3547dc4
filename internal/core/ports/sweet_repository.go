package ports

import (
	"context"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

// SearchFilter carries the optional search criteria. A nil or empty field is
// not applied at all.
type SearchFilter struct {
	Query    string   // full-text match over name and category
	PriceMin *float64 // inclusive
	PriceMax *float64 // inclusive
}

// SweetRepository defines persistence operations for the catalog.
// Ids passed in are already known to be well-formed.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	// FindByID returns domain.ErrNotFound when no record matches.
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	// List returns up to limit records after skipping skip, ordered by creation
	// time, newest first, plus the total count.
	List(ctx context.Context, skip int64, limit int) ([]*domain.Sweet, int64, error)
	Search(ctx context.Context, filter SearchFilter) ([]*domain.Sweet, error)
	// Update sets only the fields present in patch and returns the stored result.
	Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) (*domain.Sweet, error)
	// AdjustQuantity adds delta to the stock as a single conditional store
	// command. A negative delta applies only while quantity >= -delta; otherwise
	// it fails with domain.ErrInsufficientStock and the record is unchanged. A
	// positive delta applies only while quantity <= domain.MaxQuantity-delta;
	// otherwise it fails with domain.ErrStockLimit.
	AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Sweet, error)
}
