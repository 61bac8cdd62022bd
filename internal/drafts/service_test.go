package drafts

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

type memStore struct {
	mu      sync.Mutex
	values  map[string]string
	lastTTL time.Duration
	sets    int
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprintf("%v", value)
	m.lastTTL = ttl
	m.sets++
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (m *memStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memStore) DraftKey(draftID string) string {
	return "gv:draft:" + draftID
}

type stubCatalog struct {
	cart     *models.Cart
	food     []models.FoodItem
	services []models.ServiceItem
}

func (s *stubCatalog) FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	if s.cart == nil || s.cart.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return s.cart, nil
}

func (s *stubCatalog) FindFoodItems(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, item := range s.food {
		for _, id := range ids {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (s *stubCatalog) FindServiceItems(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error) {
	var out []models.ServiceItem
	for _, item := range s.services {
		for _, id := range ids {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

type stubCouponValidator struct {
	terms    *pricing.CouponTerms
	err      error
	lastCode string
}

func (s *stubCouponValidator) Validate(ctx context.Context, code, customerEmail string, orderAmount decimal.Decimal) (*coupons.ValidationResult, error) {
	s.lastCode = code
	if s.err != nil {
		return nil, s.err
	}
	terms := pricing.CouponTerms{Code: code, Type: enums.DiscountTypeFixed, Value: decimal.NewFromInt(10)}
	if s.terms != nil {
		terms = *s.terms
	}
	return &coupons.ValidationResult{Terms: terms}, nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func testCatalog() *stubCatalog {
	cartID := uuid.New()
	otherCartID := uuid.New()
	return &stubCatalog{
		cart: &models.Cart{
			ID:                cartID,
			Name:              "La Vespa",
			Active:            true,
			PricePerHour:      dec("50"),
			ShippingAvailable: true,
			ShippingPrice:     dec("75"),
		},
		food: []models.FoodItem{
			{ID: uuid.New(), Name: "Margherita", Price: dec("12.50"), Active: true},
			{ID: uuid.New(), Name: "Tiramisu", Price: dec("6"), Active: true, CartID: &otherCartID},
			{ID: uuid.New(), Name: "Calzone", Price: dec("14"), Active: false},
		},
		services: []models.ServiceItem{
			{ID: uuid.New(), Name: "Waiter", Price: dec("35"), Pricing: enums.ServicePricingPerHour, Active: true},
			{ID: uuid.New(), Name: "Setup", Price: dec("100"), Pricing: enums.ServicePricingFlat, Active: true},
		},
	}
}

func newTestService(t *testing.T, catalog *stubCatalog, validator *stubCouponValidator) (Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc, err := NewService(store, store, catalog, catalog, validator, pricing.NewCalculator(4), 2*time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	typed := svc.(*service)
	typed.now = func() time.Time {
		return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc, store
}

func TestCreateAndGetRoundtrip(t *testing.T) {
	svc, store := newTestService(t, testCatalog(), &stubCouponValidator{})
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a draft id")
	}
	if store.lastTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %v", store.lastTTL)
	}

	loaded, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, loaded.ID)
	}
}

func TestGetUnknownDraft(t *testing.T) {
	svc, _ := newTestService(t, testCatalog(), &stubCouponValidator{})

	_, err := svc.Get(context.Background(), uuid.NewString())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAccumulatesAcrossSteps(t *testing.T) {
	catalog := testCatalog()
	svc, store := newTestService(t, catalog, &stubCouponValidator{})
	ctx := context.Background()

	draft, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// step 1: cart
	draft, err = svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID})
	if err != nil {
		t.Fatalf("Update cart: %v", err)
	}

	// step 2: one date, 10:00-14:00 at 50/h
	dates := []DateInput{{Date: "2026-06-01", StartTime: types.TimeOfDay("10:00"), EndTime: types.TimeOfDay("14:00")}}
	draft, err = svc.Update(ctx, draft.ID, Patch{Dates: &dates})
	if err != nil {
		t.Fatalf("Update dates: %v", err)
	}
	if len(draft.Dates) != 1 || !draft.Dates[0].CartCost.Equal(dec("200")) {
		t.Fatalf("expected cart cost 200, got %+v", draft.Dates)
	}
	if draft.CartID == nil {
		t.Fatal("cart selection lost by date patch")
	}

	// step 3: two pizzas
	items := []ItemInput{{FoodItemID: catalog.food[0].ID, Quantity: 2}}
	draft, err = svc.Update(ctx, draft.ID, Patch{Items: &items})
	if err != nil {
		t.Fatalf("Update items: %v", err)
	}
	if !draft.Totals.FoodTotal.Equal(dec("25")) {
		t.Fatalf("expected food total 25, got %s", draft.Totals.FoodTotal)
	}
	if len(draft.Dates) != 1 {
		t.Fatal("dates lost by item patch")
	}
	// 25 food + 200 cart
	if !draft.Totals.Total.Equal(dec("225")) {
		t.Fatalf("expected total 225, got %s", draft.Totals.Total)
	}

	if store.lastTTL != 2*time.Hour {
		t.Fatalf("expected ttl refresh on update, got %v", store.lastTTL)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	catalog := testCatalog()
	svc, _ := newTestService(t, catalog, &stubCouponValidator{})
	ctx := context.Background()

	draft, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dates := []DateInput{{Date: "2026-06-01", Preset: "morning"}}
	items := []ItemInput{{FoodItemID: catalog.food[0].ID, Quantity: 3}}
	patch := Patch{CartID: &catalog.cart.ID, Dates: &dates, Items: &items}

	first, err := svc.Update(ctx, draft.ID, patch)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	second, err := svc.Update(ctx, draft.ID, patch)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated patch changed the draft:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestUpdateResolvesPresetSlots(t *testing.T) {
	catalog := testCatalog()
	svc, _ := newTestService(t, catalog, &stubCouponValidator{})
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	dates := []DateInput{{Date: "2026-06-01", Preset: "full_day"}}
	draft, err := svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID, Dates: &dates})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := draft.Dates[0]
	if got.StartTime != types.TimeOfDay("08:00") || got.EndTime != types.TimeOfDay("20:00") {
		t.Fatalf("unexpected preset times %s-%s", got.StartTime, got.EndTime)
	}
	if !got.Hours.Equal(dec("12")) {
		t.Fatalf("expected 12 hours, got %s", got.Hours)
	}
}

func TestUpdateRejectsBadDates(t *testing.T) {
	catalog := testCatalog()
	svc, _ := newTestService(t, catalog, &stubCouponValidator{})
	ctx := context.Background()

	cases := []struct {
		name string
		date DateInput
	}{
		{"past date", DateInput{Date: "2026-04-30", StartTime: "10:00", EndTime: "12:00"}},
		{"unknown preset", DateInput{Date: "2026-06-01", Preset: "brunch"}},
		{"inverted range", DateInput{Date: "2026-06-01", StartTime: "14:00", EndTime: "10:00"}},
		{"unparseable date", DateInput{Date: "01.06.2026", StartTime: "10:00", EndTime: "12:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft, _ := svc.Create(ctx)
			dates := []DateInput{tc.date}
			_, err := svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID, Dates: &dates})
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateRejectsForeignAndInactiveItems(t *testing.T) {
	catalog := testCatalog()
	svc, _ := newTestService(t, catalog, &stubCouponValidator{})
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	draft, err := svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID})
	if err != nil {
		t.Fatalf("Update cart: %v", err)
	}

	foreign := []ItemInput{{FoodItemID: catalog.food[1].ID, Quantity: 1}}
	_, err = svc.Update(ctx, draft.ID, Patch{Items: &foreign})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for foreign item, got %v", err)
	}

	inactive := []ItemInput{{FoodItemID: catalog.food[2].ID, Quantity: 1}}
	_, err = svc.Update(ctx, draft.ID, Patch{Items: &inactive})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inactive item, got %v", err)
	}
}

func TestUpdateAppliesCoupon(t *testing.T) {
	catalog := testCatalog()
	validator := &stubCouponValidator{
		terms: &pricing.CouponTerms{Code: "SUMMER30", Type: enums.DiscountTypeFixed, Value: dec("30")},
	}
	svc, _ := newTestService(t, catalog, validator)
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	dates := []DateInput{{Date: "2026-06-01", StartTime: "10:00", EndTime: "14:00"}}
	code := "summer10"
	draft, err := svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID, Dates: &dates, CouponCode: &code})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if validator.lastCode != "SUMMER10" {
		t.Fatalf("expected normalized coupon code, got %q", validator.lastCode)
	}
	if !draft.Totals.Discount.Equal(dec("30")) {
		t.Fatalf("expected discount 30, got %s", draft.Totals.Discount)
	}
	// 200 cart - 30 discount
	if !draft.Totals.Total.Equal(dec("170")) {
		t.Fatalf("expected total 170, got %s", draft.Totals.Total)
	}
}

func TestUpdateRejectsInvalidCoupon(t *testing.T) {
	catalog := testCatalog()
	validator := &stubCouponValidator{err: pkgerrors.New(pkgerrors.CodeCoupon, "coupon expired")}
	svc, _ := newTestService(t, catalog, validator)
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	code := "EXPIRED"
	_, err := svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID, CouponCode: &code})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCoupon {
		t.Fatalf("expected coupon error, got %v", err)
	}
}

func TestCartSwitchReprices(t *testing.T) {
	catalog := testCatalog()
	svc, _ := newTestService(t, catalog, &stubCouponValidator{})
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	dates := []DateInput{{Date: "2026-06-01", StartTime: "10:00", EndTime: "14:00"}}
	draft, err := svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID, Dates: &dates})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	catalog.cart.PricePerHour = dec("80")
	draft, err = svc.Update(ctx, draft.ID, Patch{CartID: &catalog.cart.ID})
	if err != nil {
		t.Fatalf("re-select cart: %v", err)
	}
	if !draft.Dates[0].CartCost.Equal(dec("320")) {
		t.Fatalf("expected repriced cart cost 320, got %s", draft.Dates[0].CartCost)
	}
	if !draft.Totals.Total.Equal(dec("320")) {
		t.Fatalf("expected total 320, got %s", draft.Totals.Total)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, store := newTestService(t, testCatalog(), &stubCouponValidator{})
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	if err := svc.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if len(store.values) != 0 {
		t.Fatalf("expected store to be empty, got %d keys", len(store.values))
	}
}

func TestEmptyPatchSkipsWrite(t *testing.T) {
	svc, store := newTestService(t, testCatalog(), &stubCouponValidator{})
	ctx := context.Background()

	draft, _ := svc.Create(ctx)
	before := store.sets

	got, err := svc.Update(ctx, draft.ID, Patch{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != draft.ID {
		t.Fatalf("unexpected draft %s", got.ID)
	}
	if store.sets != before {
		t.Fatal("empty patch should not rewrite the draft")
	}
}
