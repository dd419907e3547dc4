//go:build integration

package mongo

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
	"github.com/candycraft/sweetshop-api/internal/testutil"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testutil.NewMongoContainer(ctx)
	if err != nil {
		log.Fatalf("start mongo: %v", err)
	}

	client, db, err := Connect(ctx, Config{URI: container.URI, Database: "sweetshop_test"})
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	if err := EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}
	testDB = db

	code := m.Run()

	_ = client.Disconnect(ctx)
	if err := container.Terminate(ctx); err != nil {
		log.Printf("terminate mongo: %v", err)
	}
	os.Exit(code)
}

func freshSweets(t *testing.T) *SweetRepository {
	t.Helper()
	if err := testDB.Collection(collectionSweets).Drop(context.Background()); err != nil {
		t.Fatalf("drop sweets: %v", err)
	}
	repo := NewSweetRepository(testDB)
	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return repo
}

func insertSweet(t *testing.T, repo *SweetRepository, name string, category domain.Category, price float64, qty int, at time.Time) *domain.Sweet {
	t.Helper()
	s, err := repo.Create(context.Background(), &domain.Sweet{
		Name: name, Category: category, Price: price, Quantity: qty, CreatedAt: at, UpdatedAt: at,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return s
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)
	now := time.Now().UTC()

	u, err := repo.Create(ctx, &domain.User{Name: "A", Email: "dup@example.com", PasswordHash: "h", Role: domain.RoleCustomer, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = repo.Create(ctx, &domain.User{Name: "B", Email: "dup@example.com", PasswordHash: "h", Role: domain.RoleCustomer, CreatedAt: now, UpdatedAt: now})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	if err := repo.UpdateCredentials(ctx, u.ID, "h2", domain.RoleAdmin); err != nil {
		t.Fatalf("update credentials: %v", err)
	}
	got, err := repo.FindByID(ctx, u.ID)
	if err != nil || got.PasswordHash != "h2" || got.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user after update: %+v, %v", got, err)
	}
}

func TestSweetRepository_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := freshSweets(t)
	base := time.Now().UTC().Truncate(time.Millisecond)

	insertSweet(t, repo, "Dark Chocolate Bar", domain.CategoryChocolate, 4.5, 10, base)
	insertSweet(t, repo, "Gummy Bears", domain.CategoryCandy, 1.99, 10, base.Add(time.Second))
	insertSweet(t, repo, "Milk Chocolate", domain.CategoryChocolate, 1.5, 10, base.Add(2*time.Second))

	page, total, err := repo.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(page) != 2 || page[0].Name != "Milk Chocolate" {
		t.Fatalf("unexpected page: total=%d len=%d first=%v", total, len(page), page)
	}

	beyond, total, err := repo.List(ctx, math.MaxInt64, 10)
	if err != nil {
		t.Fatalf("list past the end: %v", err)
	}
	if total != 3 || len(beyond) != 0 {
		t.Fatalf("expected empty page with total 3, got total=%d len=%d", total, len(beyond))
	}

	minPrice := 2.0
	found, err := repo.Search(ctx, ports.SearchFilter{Query: "chocolate", PriceMin: &minPrice})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Dark Chocolate Bar" {
		t.Fatalf("unexpected search result: %+v", found)
	}
}

func TestSweetRepository_AdjustQuantity(t *testing.T) {
	ctx := context.Background()
	repo := freshSweets(t)
	s := insertSweet(t, repo, "Gummy Bears", domain.CategoryCandy, 1.99, 100, time.Now().UTC())

	got, err := repo.AdjustQuantity(ctx, s.ID, -30)
	if err != nil || got.Quantity != 70 {
		t.Fatalf("expected 70, got %+v, %v", got, err)
	}
	if _, err := repo.AdjustQuantity(ctx, s.ID, -80); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := repo.AdjustQuantity(ctx, "507f1f77bcf86cd799439011", -1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err = repo.AdjustQuantity(ctx, s.ID, 50)
	if err != nil || got.Quantity != 120 {
		t.Fatalf("expected 120, got %+v, %v", got, err)
	}
	if _, err := repo.AdjustQuantity(ctx, s.ID, math.MaxInt); !errors.Is(err, domain.ErrStockLimit) {
		t.Fatalf("expected ErrStockLimit, got %v", err)
	}
	if cur, _ := repo.FindByID(ctx, s.ID); cur.Quantity != 120 {
		t.Fatalf("rejected increment changed stock to %d", cur.Quantity)
	}
}

func TestSweetRepository_ConcurrentDecrements(t *testing.T) {
	ctx := context.Background()
	repo := freshSweets(t)
	s := insertSweet(t, repo, "Limited", domain.CategoryCake, 9.99, 25, time.Now().UTC())

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustQuantity(ctx, s.ID, -1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	cur, err := repo.FindByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ok != 25 || cur.Quantity != 0 {
		t.Fatalf("expected 25 successes and zero stock, got %d and %d", ok, cur.Quantity)
	}
}
