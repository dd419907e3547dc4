package domain

import (
	"encoding/hex"
	"math"
	"strings"
	"time"
)

// Category is the closed set of sweet categories.
type Category string

const (
	CategoryChocolate   Category = "chocolate"
	CategoryCandy       Category = "candy"
	CategoryGum         Category = "gum"
	CategoryLollipop    Category = "lollipop"
	CategoryMarshmallow Category = "marshmallow"
	CategoryTaffy       Category = "taffy"
	CategoryCake        Category = "cake"
	CategoryCookie      Category = "cookie"
	CategoryOther       Category = "other"
)

var categories = map[Category]struct{}{
	CategoryChocolate:   {},
	CategoryCandy:       {},
	CategoryGum:         {},
	CategoryLollipop:    {},
	CategoryMarshmallow: {},
	CategoryTaffy:       {},
	CategoryCake:        {},
	CategoryCookie:      {},
	CategoryOther:       {},
}

// MaxQuantity is the largest stock level a sweet can hold.
const MaxQuantity = math.MaxInt

// CategoryNames is the enum as it appears in validation messages.
const CategoryNames = "chocolate, candy, gum, lollipop, marshmallow, taffy, cake, cookie, other"

// Valid reports whether c belongs to the enumerated set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Sweet is an item of the catalog. Quantity is the on-hand stock.
type Sweet struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the full invariant set of a sweet.
func (s *Sweet) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Validationf("name is required")
	}
	if !s.Category.Valid() {
		return Validationf("category must be one of: %s", CategoryNames)
	}
	if err := validatePrice(s.Price); err != nil {
		return err
	}
	if s.Quantity < 0 {
		return Validationf("quantity cannot be negative")
	}
	return nil
}

// SweetPatch is a partial update; nil fields are left untouched.
type SweetPatch struct {
	Name        *string
	Category    *Category
	Price       *float64
	Quantity    *int
	Description *string
	ImageURL    *string
}

// Empty reports whether the patch sets no field.
func (p SweetPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Quantity == nil && p.Description == nil && p.ImageURL == nil
}

// Validate checks every provided field against the sweet invariants.
func (p SweetPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Validationf("name cannot be empty")
	}
	if p.Category != nil && !p.Category.Valid() {
		return Validationf("category must be one of: %s", CategoryNames)
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return Validationf("quantity cannot be negative")
	}
	return nil
}

// Normalized returns the patch with its text fields trimmed.
func (p SweetPatch) Normalized() SweetPatch {
	p.Name = trimmed(p.Name)
	p.Description = trimmed(p.Description)
	p.ImageURL = trimmed(p.ImageURL)
	return p
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// Apply returns a copy of s with the patch applied as given.
func (p SweetPatch) Apply(s Sweet) Sweet {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.ImageURL != nil {
		s.ImageURL = *p.ImageURL
	}
	return s
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Validationf("price must be a finite number")
	}
	if price < 0 {
		return Validationf("price cannot be negative")
	}
	return nil
}

// ValidID reports whether id is a well-formed store identifier
// (a MongoDB ObjectID in 24-character hex form).
func ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
