package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Cart{}, &models.FoodItem{}, &models.ServiceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCart(t *testing.T, db *gorm.DB, name string, active bool) *models.Cart {
	t.Helper()
	cart := &models.Cart{
		ID:           uuid.New(),
		Name:         name,
		PricePerHour: decimal.NewFromInt(150),
		Capacity:     4,
		Active:       active,
	}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return cart
}

func TestListCartsActiveOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedCart(t, db, "Burger Van", true)
	seedCart(t, db, "Retired Cart", false)

	carts, err := repo.ListCarts(ctx, true)
	if err != nil {
		t.Fatalf("list carts: %v", err)
	}
	if len(carts) != 1 || carts[0].Name != "Burger Van" {
		t.Fatalf("unexpected carts %+v", carts)
	}

	carts, err = repo.ListCarts(ctx, false)
	if err != nil {
		t.Fatalf("list all carts: %v", err)
	}
	if len(carts) != 2 {
		t.Fatalf("expected both carts, got %d", len(carts))
	}
}

func TestListFoodItemsIncludesGlobals(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart := seedCart(t, db, "Taco Wagon", true)
	other := seedCart(t, db, "Crepe Cart", true)

	items := []models.FoodItem{
		{ID: uuid.New(), CartID: &cart.ID, Name: "Tacos", Price: decimal.NewFromInt(10), Active: true},
		{ID: uuid.New(), CartID: nil, Name: "Soda", Price: decimal.NewFromInt(3), Active: true},
		{ID: uuid.New(), CartID: &other.ID, Name: "Crepes", Price: decimal.NewFromInt(8), Active: true},
		{ID: uuid.New(), CartID: &cart.ID, Name: "Old Special", Price: decimal.NewFromInt(12), Active: false},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed food item: %v", err)
		}
	}

	visible, err := repo.ListFoodItems(ctx, &cart.ID, true)
	if err != nil {
		t.Fatalf("list food items: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected cart-bound item plus global, got %+v", visible)
	}
	names := map[string]bool{}
	for _, item := range visible {
		names[item.Name] = true
	}
	if !names["Tacos"] || !names["Soda"] {
		t.Fatalf("unexpected visible items %+v", names)
	}
}

func TestFindServiceItemsByID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	svc := models.ServiceItem{
		ID:      uuid.New(),
		Name:    "Staffing",
		Pricing: enums.ServicePricingPerHour,
		Price:   decimal.NewFromInt(25),
		Active:  true,
	}
	if err := db.Create(&svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}

	found, err := repo.FindServiceItems(ctx, []uuid.UUID{svc.ID, uuid.New()})
	if err != nil {
		t.Fatalf("find services: %v", err)
	}
	if len(found) != 1 || found[0].ID != svc.ID {
		t.Fatalf("unexpected services %+v", found)
	}

	found, err = repo.FindServiceItems(ctx, nil)
	if err != nil {
		t.Fatalf("find services empty: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected empty result, got %+v", found)
	}
}

func TestFindCartForUpdateOutsideLockDialect(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	cart := seedCart(t, db, "Pizza Trailer", true)

	loaded, err := repo.FindCartForUpdate(ctx, cart.ID)
	if err != nil {
		t.Fatalf("find cart for update: %v", err)
	}
	if loaded.ID != cart.ID {
		t.Fatalf("unexpected cart %+v", loaded)
	}
}

func TestCreateCartKeepsInactiveState(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.CreateCart(ctx, &models.Cart{
		Name:            "Draft Cart",
		PricePerHour:    decimal.NewFromInt(90),
		Capacity:        2,
		PickupAvailable: false,
		Active:          false,
	})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}

	got, err := repo.FindCart(ctx, created.ID)
	if err != nil {
		t.Fatalf("find cart: %v", err)
	}
	if got.Active {
		t.Fatal("cart created inactive came back active")
	}
	if got.PickupAvailable {
		t.Fatal("pickup_available=false was not persisted")
	}
}
