package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

var errFakeMiss = errors.New("fake miss")

type fakeCache struct {
	entries       map[string][]byte
	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) key(entity, filter string) string {
	return entity + ":" + filter
}

func (f *fakeCache) Get(ctx context.Context, entity, filter string, dest any) error {
	raw, ok := f.entries[f.key(entity, filter)]
	if !ok {
		return errFakeMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, entity, filter string, value any, tags ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[f.key(entity, filter)] = raw
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, tag string) error {
	f.invalidations = append(f.invalidations, tag)
	f.entries = map[string][]byte{}
	return nil
}

type countingRepo struct {
	*Repository
	cartListCalls int
}

func (c *countingRepo) ListCarts(ctx context.Context, activeOnly bool) ([]models.Cart, error) {
	c.cartListCalls++
	return c.Repository.ListCarts(ctx, activeOnly)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
}

func newCachedService(t *testing.T, repo catalogRepo, cache *fakeCache) Service {
	t.Helper()
	svc, err := NewService(repo, testLogger(), WithCache(cache, func(err error) bool {
		return errors.Is(err, errFakeMiss)
	}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestListCartsServedFromCache(t *testing.T) {
	db := newTestDB(t)
	seedCart(t, db, "Burger Van", true)

	repo := &countingRepo{Repository: NewRepository(db)}
	cache := newFakeCache()
	svc := newCachedService(t, repo, cache)
	ctx := context.Background()

	first, err := svc.ListCarts(ctx)
	if err != nil {
		t.Fatalf("list carts: %v", err)
	}
	second, err := svc.ListCarts(ctx)
	if err != nil {
		t.Fatalf("list carts cached: %v", err)
	}

	if repo.cartListCalls != 1 {
		t.Fatalf("expected one repo read, got %d", repo.cartListCalls)
	}
	if len(first) != 1 || len(second) != 1 || first[0].Name != second[0].Name {
		t.Fatalf("cache returned different data: %+v vs %+v", first, second)
	}
}

func TestSaveCartInvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	seedCart(t, db, "Burger Van", true)

	repo := &countingRepo{Repository: NewRepository(db)}
	cache := newFakeCache()
	svc := newCachedService(t, repo, cache)
	ctx := context.Background()

	if _, err := svc.ListCarts(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	_, err := svc.SaveCart(ctx, &models.Cart{
		Name:         "Crepe Cart",
		PricePerHour: decimal.NewFromInt(95),
		Active:       true,
	})
	if err != nil {
		t.Fatalf("save cart: %v", err)
	}

	if len(cache.invalidations) != 1 || cache.invalidations[0] != TagCarts {
		t.Fatalf("expected carts tag invalidation, got %v", cache.invalidations)
	}

	carts, err := svc.ListCarts(ctx)
	if err != nil {
		t.Fatalf("list after save: %v", err)
	}
	if len(carts) != 2 {
		t.Fatalf("expected fresh listing with 2 carts, got %d", len(carts))
	}
}

func TestGetCartHidesInactive(t *testing.T) {
	db := newTestDB(t)
	cart := seedCart(t, db, "Retired", false)

	svc, err := NewService(NewRepository(db), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetCart(context.Background(), cart.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveCartValidation(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	cases := []*models.Cart{
		nil,
		{Name: "  "},
		{Name: "Bad Rate", PricePerHour: decimal.NewFromInt(-1)},
		{Name: "Bad Capacity", Capacity: -2},
	}
	for _, cart := range cases {
		if _, err := svc.SaveCart(ctx, cart); err == nil {
			t.Fatalf("expected validation error for %+v", cart)
		}
	}
}

func TestSaveServiceItemValidatesPricing(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SaveServiceItem(context.Background(), &models.ServiceItem{
		ID:      uuid.Nil,
		Name:    "Staffing",
		Pricing: "hourly-ish",
		Price:   decimal.NewFromInt(25),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
