package handler

import (
	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type createSweetRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Category    string   `json:"category"    validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Quantity    *int     `json:"quantity"    validate:"required"`
	Description string   `json:"description" validate:"max=1000"`
	ImageURL    string   `json:"imageUrl"    validate:"omitempty,url"`
}

func (r createSweetRequest) toInput() ports.CreateSweetInput {
	return ports.CreateSweetInput{
		Name:        r.Name,
		Category:    domain.Category(r.Category),
		Price:       *r.Price,
		Quantity:    *r.Quantity,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

// updateSweetRequest carries a partial update; absent fields stay nil.
type updateSweetRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string  `json:"imageUrl"    validate:"omitempty,url"`
}

func (r updateSweetRequest) toPatch() domain.SweetPatch {
	p := domain.SweetPatch{
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
	if r.Category != nil {
		c := domain.Category(*r.Category)
		p.Category = &c
	}
	return p
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type listSweetsResponse struct {
	Sweets []*domain.Sweet `json:"sweets"`
	Total  int64           `json:"total"`
	Pages  int             `json:"pages"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type searchSweetsResponse struct {
	Sweets []*domain.Sweet `json:"sweets"`
	Count  int             `json:"count"`
}

// sweetActionResponse is returned by delete, purchase and restock.
type sweetActionResponse struct {
	Message string        `json:"message"`
	Sweet   *domain.Sweet `json:"sweet"`
}
