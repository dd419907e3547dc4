package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SweetService implements the inventory use cases. It is the only writer of
// Sweet.Quantity besides admin edits.
type SweetService struct {
	repo   ports.SweetRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewSweetService(repo ports.SweetRepository, logger zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, logger: logger, now: time.Now}
}

// CreateSweet validates and persists a new sweet.
func (s *SweetService) CreateSweet(ctx context.Context, in ports.CreateSweetInput) (*domain.Sweet, error) {
	now := s.now().UTC()
	sweet := &domain.Sweet{
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := sweet.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, sweet)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create sweet")
		return nil, fmt.Errorf("create sweet: %w", err)
	}

	s.logger.Info().Str("sweet_id", created.ID).Str("name", created.Name).Msg("sweet created")
	return created, nil
}

// ListSweets returns one page of the catalog, newest first. Non-positive page
// or limit fall back to the defaults. A page past the end is empty but still
// reports the total.
func (s *SweetService) ListSweets(ctx context.Context, page, limit int) (*ports.ListSweetsResult, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	sweets, total, err := s.repo.List(ctx, pageOffset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	if sweets == nil {
		sweets = []*domain.Sweet{}
	}

	return &ports.ListSweetsResult{
		Sweets: sweets,
		Total:  total,
		Pages:  totalPages(total, limit),
		Page:   page,
		Limit:  limit,
	}, nil
}

// SearchSweets applies only the filters that are present.
func (s *SweetService) SearchSweets(ctx context.Context, in ports.SearchSweetsInput) (*ports.SearchSweetsResult, error) {
	filter := ports.SearchFilter{
		Query:    strings.TrimSpace(in.Query),
		PriceMin: in.PriceMin,
		PriceMax: in.PriceMax,
	}

	sweets, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	if sweets == nil {
		sweets = []*domain.Sweet{}
	}
	return &ports.SearchSweetsResult{Sweets: sweets, Count: len(sweets)}, nil
}

// GetSweet returns the sweet or domain.ErrNotFound.
func (s *SweetService) GetSweet(ctx context.Context, id string) (*domain.Sweet, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	sweet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get sweet")
	}
	return sweet, nil
}

// UpdateSweet applies a partial update. Every provided field is checked
// against the sweet invariants, so the merged record stays valid.
func (s *SweetService) UpdateSweet(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	patch = patch.Normalized()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if patch.Empty() {
		sweet, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "update sweet")
		}
		return sweet, nil
	}

	sweet, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, notFoundOr(err, "update sweet")
	}

	s.logger.Info().Str("sweet_id", id).Msg("sweet updated")
	return sweet, nil
}

// DeleteSweet removes the sweet and returns it. Deleting an absent sweet
// yields domain.ErrNotFound.
func (s *SweetService) DeleteSweet(ctx context.Context, id string) (*domain.Sweet, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	sweet, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "delete sweet")
	}

	s.logger.Info().Str("sweet_id", id).Msg("sweet deleted")
	return sweet, nil
}

// PurchaseSweet decrements stock by quantity. The check and the decrement are
// one conditional store operation, so concurrent purchases can never drive the
// quantity negative.
func (s *SweetService) PurchaseSweet(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("Quantity must be greater than 0")
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	sweet, err := s.repo.AdjustQuantity(ctx, id, -quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			return nil, domain.Errorf(domain.ErrInsufficientStock, "Insufficient quantity available")
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.Errorf(domain.ErrNotFound, "Sweet not found")
		}
		s.logger.Error().Err(err).Str("sweet_id", id).Msg("purchase failed")
		return nil, fmt.Errorf("purchase sweet: %w", err)
	}

	s.logger.Info().
		Str("sweet_id", id).
		Int("quantity", quantity).
		Int("remaining", sweet.Quantity).
		Msg("purchase completed")
	return sweet, nil
}

// RestockSweet increments stock by quantity.
func (s *SweetService) RestockSweet(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("Restock quantity must be greater than 0")
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	sweet, err := s.repo.AdjustQuantity(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrStockLimit) {
			return nil, domain.Validationf("Restock would exceed the maximum stock of %d", domain.MaxQuantity)
		}
		return nil, notFoundOr(err, "restock sweet")
	}

	s.logger.Info().
		Str("sweet_id", id).
		Int("quantity", quantity).
		Int("stock", sweet.Quantity).
		Msg("sweet restocked")
	return sweet, nil
}

func checkID(id string) error {
	if !domain.ValidID(id) {
		return domain.Errorf(domain.ErrInvalidID, "Invalid sweet ID")
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Errorf(domain.ErrNotFound, "Sweet not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pageOffset is (page-1)*limit, saturating at math.MaxInt64 instead of
// overflowing. Both arguments are positive.
func pageOffset(page, limit int) int64 {
	p, l := int64(page-1), int64(limit)
	if p > math.MaxInt64/l {
		return math.MaxInt64
	}
	return p * l
}

// totalPages is ceil(total/limit).
func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total-1)/int64(limit) + 1)
}
