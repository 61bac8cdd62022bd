package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

type draftStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type draftKeyer interface {
	DraftKey(draftID string) string
}

type cartLoader interface {
	FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
}

type itemLoader interface {
	FindFoodItems(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error)
	FindServiceItems(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code, customerEmail string, orderAmount decimal.Decimal) (*coupons.ValidationResult, error)
}

// Service manages booking drafts in Redis for the wizard session.
type Service interface {
	Create(ctx context.Context) (*Draft, error)
	Get(ctx context.Context, id string) (*Draft, error)
	Update(ctx context.Context, id string, patch Patch) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store   draftStore
	keyer   draftKeyer
	carts   cartLoader
	items   itemLoader
	coupons couponValidator
	calc    *pricing.Calculator
	ttl     time.Duration
	now     func() time.Time
}

// NewService builds a draft service backed by Redis and the catalog.
func NewService(store draftStore, keyer draftKeyer, carts cartLoader, items itemLoader, validator couponValidator, calc *pricing.Calculator, ttl time.Duration) (Service, error) {
	if store == nil || keyer == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if carts == nil || items == nil {
		return nil, fmt.Errorf("catalog loaders required")
	}
	if validator == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if calc == nil {
		return nil, fmt.Errorf("calculator required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	return &service{
		store:   store,
		keyer:   keyer,
		carts:   carts,
		items:   items,
		coupons: validator,
		calc:    calc,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Create opens an empty draft with a fresh identifier.
func (s *service) Create(ctx context.Context) (*Draft, error) {
	now := s.now().UTC()
	draft := &Draft{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Get loads a draft. Expired or unknown drafts report not found, which the
// wizard treats as a session restart.
func (s *service) Get(ctx context.Context, id string) (*Draft, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id is required")
	}
	raw, err := s.store.Get(ctx, s.keyer.DraftKey(id))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading draft")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding draft")
	}
	return &draft, nil
}

// Update shallow-merges the patch into the draft, re-snapshots catalog
// prices for newly selected ids, recomputes totals, and stores the result.
// The TTL restarts on every update so an active session never expires
// mid-wizard.
func (s *service) Update(ctx context.Context, id string, patch Patch) (*Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return draft, nil
	}

	if err := s.apply(ctx, draft, patch); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, draft); err != nil {
		return nil, err
	}

	draft.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Delete discards the draft. Deleting an absent draft is not an error.
func (s *service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft id is required")
	}
	if err := s.store.Del(ctx, s.keyer.DraftKey(id)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting draft")
	}
	return nil
}

func (s *service) apply(ctx context.Context, draft *Draft, patch Patch) error {
	if patch.CartID != nil {
		if err := s.applyCart(ctx, draft, *patch.CartID); err != nil {
			return err
		}
	}
	if patch.Dates != nil {
		if err := s.applyDates(ctx, draft, *patch.Dates); err != nil {
			return err
		}
	}
	if patch.Items != nil {
		if err := s.applyItems(ctx, draft, *patch.Items); err != nil {
			return err
		}
	}
	if patch.Services != nil {
		if err := s.applyServices(ctx, draft, *patch.Services); err != nil {
			return err
		}
	}
	if patch.DeliveryMethod != nil {
		if !patch.DeliveryMethod.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
		}
		draft.DeliveryMethod = *patch.DeliveryMethod
	}
	if patch.PaymentMethod != nil {
		if !patch.PaymentMethod.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
		}
		draft.PaymentMethod = *patch.PaymentMethod
	}
	if patch.CustomerName != nil {
		draft.Customer.Name = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.CustomerEmail != nil {
		draft.Customer.Email = strings.TrimSpace(*patch.CustomerEmail)
	}
	if patch.CustomerPhone != nil {
		draft.Customer.Phone = strings.TrimSpace(*patch.CustomerPhone)
	}
	if patch.CustomerAddr != nil {
		draft.Customer.Address = strings.TrimSpace(*patch.CustomerAddr)
	}
	if patch.Notes != nil {
		draft.Customer.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.CouponCode != nil {
		draft.CouponCode = strings.ToUpper(strings.TrimSpace(*patch.CouponCode))
	}
	return nil
}

func (s *service) applyCart(ctx context.Context, draft *Draft, cartID uuid.UUID) error {
	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}

	draft.CartID = &cart.ID

	// cart rate changed: reprice existing dates at the new rate
	for i := range draft.Dates {
		draft.Dates[i].CartCost = cart.PricePerHour.Mul(draft.Dates[i].Hours)
	}
	return nil
}

func (s *service) applyDates(ctx context.Context, draft *Draft, inputs []DateInput) error {
	if draft.CartID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a cart before booking dates")
	}
	cart, err := s.loadCart(ctx, *draft.CartID)
	if err != nil {
		return err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	dates := make([]DraftDate, 0, len(inputs))
	for i, input := range inputs {
		start, end := input.StartTime, input.EndTime
		if input.Preset != "" {
			preset, ok := pricing.PresetByName(input.Preset)
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("date %d: unknown preset slot %q", i, input.Preset))
			}
			start, end = preset.Start, preset.End
		}

		day, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("date %d: invalid date %q", i, input.Date))
		}
		if day.Before(today) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("date %d: %s is in the past", i, input.Date))
		}
		if !start.IsValid() || !end.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("date %d: invalid time range", i))
		}
		if !start.Before(end) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("date %d: start time must be before end time", i))
		}

		hours := pricing.HoursBetween(start, end)
		dates = append(dates, DraftDate{
			Date:      day.Format("2006-01-02"),
			StartTime: start,
			EndTime:   end,
			Hours:     hours,
			CartCost:  cart.PricePerHour.Mul(hours),
		})
	}

	draft.Dates = dates
	return nil
}

func (s *service) applyItems(ctx context.Context, draft *Draft, inputs []ItemInput) error {
	if len(inputs) == 0 {
		draft.Items = nil
		return nil
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for i, input := range inputs {
		if input.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		ids = append(ids, input.FoodItemID)
	}

	found, err := s.items.FindFoodItems(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading food items")
	}
	byID := make(map[uuid.UUID]models.FoodItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	items := make([]DraftItem, 0, len(inputs))
	for _, input := range inputs {
		item, ok := byID[input.FoodItemID]
		if !ok || !item.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("food item %s is not available", input.FoodItemID))
		}
		if item.CartID != nil && (draft.CartID == nil || *item.CartID != *draft.CartID) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("food item %q belongs to a different cart", item.Name))
		}
		items = append(items, DraftItem{
			FoodItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   input.Quantity,
		})
	}

	draft.Items = items
	return nil
}

func (s *service) applyServices(ctx context.Context, draft *Draft, inputs []ServiceInput) error {
	if len(inputs) == 0 {
		draft.Services = nil
		return nil
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for i, input := range inputs {
		if input.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("service %d: quantity must be positive", i))
		}
		if input.Hours != nil && input.Hours.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("service %d: hours must not be negative", i))
		}
		ids = append(ids, input.ServiceItemID)
	}

	found, err := s.items.FindServiceItems(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading services")
	}
	byID := make(map[uuid.UUID]models.ServiceItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	services := make([]DraftService, 0, len(inputs))
	for _, input := range inputs {
		item, ok := byID[input.ServiceItemID]
		if !ok || !item.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("service %s is not available", input.ServiceItemID))
		}
		if item.CartID != nil && (draft.CartID == nil || *item.CartID != *draft.CartID) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("service %q belongs to a different cart", item.Name))
		}

		hours := decimal.Zero
		if input.Hours != nil {
			hours = *input.Hours
		}
		services = append(services, DraftService{
			ServiceItemID: item.ID,
			Name:          item.Name,
			Pricing:       item.Pricing,
			UnitPrice:     item.Price,
			Quantity:      input.Quantity,
			Hours:         hours,
		})
	}

	draft.Services = services
	return nil
}

// recompute rebuilds the totals from the draft contents. The coupon is
// re-validated against the fresh subtotal so removing items can surface a
// below-minimum coupon immediately.
func (s *service) recompute(ctx context.Context, draft *Draft) error {
	var (
		shippingAvailable bool
		shippingPrice     decimal.Decimal
	)
	if draft.CartID != nil {
		cart, err := s.loadCart(ctx, *draft.CartID)
		if err != nil {
			return err
		}
		shippingAvailable = cart.ShippingAvailable
		shippingPrice = cart.ShippingPrice
	}

	// first pass without the coupon to learn the subtotal
	base, err := s.calc.Compute(draft.QuoteInput(shippingAvailable, shippingPrice, nil))
	if err != nil {
		return err
	}

	var terms *pricing.CouponTerms
	if draft.CouponCode != "" {
		result, err := s.coupons.Validate(ctx, draft.CouponCode, draft.Customer.Email, base.Subtotal())
		if err != nil {
			return err
		}
		terms = &result.Terms
	}

	totals, err := s.calc.Compute(draft.QuoteInput(shippingAvailable, shippingPrice, terms))
	if err != nil {
		return err
	}
	draft.Totals = totals
	return nil
}

func (s *service) loadCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.FindCart(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if !cart.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}

func (s *service) save(ctx context.Context, draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding draft")
	}
	if err := s.store.Set(ctx, s.keyer.DraftKey(draft.ID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing draft")
	}
	return nil
}
