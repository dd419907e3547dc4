package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSweet() Sweet {
	return Sweet{Name: "Gummy Bears", Category: CategoryCandy, Price: 1.99, Quantity: 100}
}

func TestSweet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Sweet)
		wantErr string
	}{
		{name: "valid", mutate: func(*Sweet) {}},
		{name: "zero price and quantity", mutate: func(s *Sweet) { s.Price = 0; s.Quantity = 0 }},
		{name: "negative price", mutate: func(s *Sweet) { s.Price = -1 }, wantErr: "price cannot be negative"},
		{name: "negative quantity", mutate: func(s *Sweet) { s.Quantity = -1 }, wantErr: "quantity cannot be negative"},
		{name: "unknown category", mutate: func(s *Sweet) { s.Category = "vegetable" }, wantErr: "category must be one of"},
		{name: "blank name", mutate: func(s *Sweet) { s.Name = "   " }, wantErr: "name is required"},
		{name: "NaN price", mutate: func(s *Sweet) { s.Price = math.NaN() }, wantErr: "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSweet()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range []Category{"chocolate", "candy", "gum", "lollipop", "marshmallow", "taffy", "cake", "cookie", "other"} {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("Chocolate").Valid())
	assert.False(t, Category("").Valid())
}

func TestSweetPatch_ValidateAndApply(t *testing.T) {
	neg := -5
	price := 3.5
	name := "  Dark Truffle "

	err := SweetPatch{Quantity: &neg}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	p := SweetPatch{Price: &price, Name: &name}
	require.NoError(t, p.Validate())
	assert.False(t, p.Empty())
	assert.True(t, SweetPatch{}.Empty())

	got := p.Normalized().Apply(validSweet())
	assert.Equal(t, "Dark Truffle", got.Name)
	assert.Equal(t, 3.5, got.Price)
	assert.Equal(t, 100, got.Quantity)
	assert.Equal(t, CategoryCandy, got.Category)
}

func TestSweetPatch_Normalized(t *testing.T) {
	name := "  Fudge  "
	desc := "\tsoft\n"
	url := " https://img.example.com/fudge.png "
	price := 2.0

	p := SweetPatch{Name: &name, Description: &desc, ImageURL: &url, Price: &price}
	n := p.Normalized()

	require.NotNil(t, n.Name)
	assert.Equal(t, "Fudge", *n.Name)
	assert.Equal(t, "soft", *n.Description)
	assert.Equal(t, "https://img.example.com/fudge.png", *n.ImageURL)
	assert.Same(t, p.Price, n.Price)
	assert.Nil(t, SweetPatch{}.Normalized().Name)
	// the receiver is not modified
	assert.Equal(t, "  Fudge  ", *p.Name)

	raw := p.Apply(validSweet())
	assert.Equal(t, "  Fudge  ", raw.Name)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("507f1f77bcf86cd799439011"))
	assert.False(t, ValidID("not-a-valid-id"))
	assert.False(t, ValidID("507f1f77bcf86cd79943901z"))
	assert.False(t, ValidID(""))
}

func TestError_KindAndMessage(t *testing.T) {
	err := Errorf(ErrInsufficientStock, "only %d left", 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "only 3 left", err.Error())

	bare := &Error{Kind: ErrNotFound}
	assert.Equal(t, "not found", bare.Error())
}

func TestIdentity_HasRole(t *testing.T) {
	id := Identity{UserID: "u1", Role: RoleCustomer}
	assert.True(t, id.HasRole(RoleAdmin, RoleCustomer))
	assert.False(t, id.HasRole(RoleAdmin))
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.com "))
}
