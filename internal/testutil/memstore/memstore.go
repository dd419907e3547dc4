// Package memstore provides in-memory implementations of the repository ports.
// They honour the same contracts as the MongoDB repositories, including the
// atomic conditional stock adjustment, and are meant for tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

// Users is an in-memory ports.UserRepository.
type Users struct {
	mu   sync.Mutex
	byID map[string]*domain.User
	Err  error // when set, every call fails with it
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]*domain.User)}
}

func (r *Users) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	clone := *user
	clone.ID = primitive.NewObjectID().Hex()
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Users) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *Users) UpdateCredentials(_ context.Context, id, passwordHash string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Count returns the number of stored users.
func (r *Users) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Sweets is an in-memory ports.SweetRepository.
type Sweets struct {
	mu   sync.Mutex
	byID map[string]*entry
	seq  int
	Err  error // when set, every call fails with it
}

type entry struct {
	sweet domain.Sweet
	seq   int
}

func NewSweets() *Sweets {
	return &Sweets{byID: make(map[string]*entry)}
}

func (r *Sweets) Create(_ context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.seq++
	clone := *s
	clone.ID = primitive.NewObjectID().Hex()
	r.byID[clone.ID] = &entry{sweet: clone, seq: r.seq}
	out := clone
	return &out, nil
}

func (r *Sweets) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := e.sweet
	return &out, nil
}

func (r *Sweets) List(_ context.Context, skip int64, limit int) ([]*domain.Sweet, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}

	all := r.sortedLocked()
	total := int64(len(all))
	if skip >= total {
		return []*domain.Sweet{}, total, nil
	}
	rest := all[skip:]
	if len(rest) > limit {
		rest = rest[:limit]
	}
	return rest, total, nil
}

func (r *Sweets) Search(_ context.Context, f ports.SearchFilter) ([]*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	terms := strings.Fields(strings.ToLower(f.Query))
	var out []*domain.Sweet
	for _, s := range r.sortedLocked() {
		if len(terms) > 0 && !matchesAny(s, terms) {
			continue
		}
		if f.PriceMin != nil && s.Price < *f.PriceMin {
			continue
		}
		if f.PriceMax != nil && s.Price > *f.PriceMax {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Sweets) Update(_ context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.sweet = patch.Apply(e.sweet)
	e.sweet.UpdatedAt = time.Now().UTC()
	out := e.sweet
	return &out, nil
}

func (r *Sweets) Delete(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.byID, id)
	out := e.sweet
	return &out, nil
}

// AdjustQuantity performs the check and the update under one lock, the
// in-memory equivalent of a conditional store update.
func (r *Sweets) AdjustQuantity(_ context.Context, id string, delta int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if delta < 0 && e.sweet.Quantity < -delta {
		return nil, domain.ErrInsufficientStock
	}
	if delta > 0 && e.sweet.Quantity > domain.MaxQuantity-delta {
		return nil, domain.ErrStockLimit
	}
	e.sweet.Quantity += delta
	e.sweet.UpdatedAt = time.Now().UTC()
	out := e.sweet
	return &out, nil
}

// Len returns the number of stored sweets.
func (r *Sweets) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Sweets) sortedLocked() []*domain.Sweet {
	entries := make([]*entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.sweet.CreatedAt.Equal(b.sweet.CreatedAt) {
			return a.sweet.CreatedAt.After(b.sweet.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]*domain.Sweet, len(entries))
	for i, e := range entries {
		s := e.sweet
		out[i] = &s
	}
	return out
}

func matchesAny(s *domain.Sweet, terms []string) bool {
	name := strings.ToLower(s.Name)
	category := string(s.Category)
	for _, t := range terms {
		if strings.Contains(name, t) || category == t {
			return true
		}
	}
	return false
}
