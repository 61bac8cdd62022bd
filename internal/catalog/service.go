package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

// Cache invalidation tags per catalog entity.
const (
	TagCarts        = "carts"
	TagFoodItems    = "food_items"
	TagServiceItems = "service_items"
)

type catalogRepo interface {
	FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context, activeOnly bool) ([]models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	UpdateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	ListFoodItems(ctx context.Context, cartID *uuid.UUID, activeOnly bool) ([]models.FoodItem, error)
	CreateFoodItem(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error)
	UpdateFoodItem(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error)
	ListServiceItems(ctx context.Context, cartID *uuid.UUID, activeOnly bool) ([]models.ServiceItem, error)
	CreateServiceItem(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error)
	UpdateServiceItem(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error)
}

type cacheStore interface {
	Get(ctx context.Context, entity, filter string, dest any) error
	Set(ctx context.Context, entity, filter string, value any, tags ...string) error
	Invalidate(ctx context.Context, tag string) error
}

// Service exposes catalog reads for the booking wizard and admin writes.
// Public reads go through the cache; every write invalidates the entity tag
// so stale listings never outlive a change.
type Service interface {
	GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]models.Cart, error)
	ListFoodItems(ctx context.Context, cartID *uuid.UUID) ([]models.FoodItem, error)
	ListServiceItems(ctx context.Context, cartID *uuid.UUID) ([]models.ServiceItem, error)

	ListCartsAdmin(ctx context.Context) ([]models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	SaveFoodItem(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error)
	SaveServiceItem(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error)
}

type service struct {
	repo  catalogRepo
	cache cacheStore
	miss  func(error) bool
	logg  *logger.Logger
}

// Option tweaks service construction.
type Option func(*service)

// WithCache attaches a cache store. missCheck reports whether an error from
// Get means an absent key rather than a dependency failure.
func WithCache(store cacheStore, missCheck func(error) bool) Option {
	return func(s *service) {
		s.cache = store
		s.miss = missCheck
	}
}

// NewService builds a catalog service. The cache is optional; without one
// every read goes to the database.
func NewService(repo catalogRepo, logg *logger.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{repo: repo, logg: logg}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// GetCart loads one active cart for the public surface.
func (s *service) GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	var cached models.Cart
	if s.cacheGet(ctx, "cart", id.String(), &cached) {
		return &cached, nil
	}

	cart, err := s.repo.FindCart(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if !cart.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}

	s.cacheSet(ctx, "cart", id.String(), cart, TagCarts)
	return cart, nil
}

// ListCarts returns active carts for the public surface.
func (s *service) ListCarts(ctx context.Context) ([]models.Cart, error) {
	var cached []models.Cart
	if s.cacheGet(ctx, "carts", "active", &cached) {
		return cached, nil
	}

	carts, err := s.repo.ListCarts(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing carts")
	}

	s.cacheSet(ctx, "carts", "active", carts, TagCarts)
	return carts, nil
}

// ListFoodItems returns the active food items for the cart (plus globals).
func (s *service) ListFoodItems(ctx context.Context, cartID *uuid.UUID) ([]models.FoodItem, error) {
	filter := cacheFilter(cartID)

	var cached []models.FoodItem
	if s.cacheGet(ctx, "food_items", filter, &cached) {
		return cached, nil
	}

	items, err := s.repo.ListFoodItems(ctx, cartID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing food items")
	}

	s.cacheSet(ctx, "food_items", filter, items, TagFoodItems)
	return items, nil
}

// ListServiceItems returns the active services for the cart (plus globals).
func (s *service) ListServiceItems(ctx context.Context, cartID *uuid.UUID) ([]models.ServiceItem, error) {
	filter := cacheFilter(cartID)

	var cached []models.ServiceItem
	if s.cacheGet(ctx, "service_items", filter, &cached) {
		return cached, nil
	}

	items, err := s.repo.ListServiceItems(ctx, cartID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing service items")
	}

	s.cacheSet(ctx, "service_items", filter, items, TagServiceItems)
	return items, nil
}

// ListCartsAdmin returns every cart including inactive ones, bypassing the
// cache.
func (s *service) ListCartsAdmin(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.repo.ListCarts(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing carts")
	}
	return carts, nil
}

// SaveCart creates or updates a cart and invalidates cart listings.
func (s *service) SaveCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := validateCart(cart); err != nil {
		return nil, err
	}

	var (
		saved *models.Cart
		err   error
	)
	if cart.ID == uuid.Nil {
		saved, err = s.repo.CreateCart(ctx, cart)
	} else {
		saved, err = s.repo.UpdateCart(ctx, cart)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}

	s.invalidate(ctx, TagCarts)
	return saved, nil
}

// SaveFoodItem creates or updates a food item and invalidates item listings.
func (s *service) SaveFoodItem(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food item name is required")
	}
	if item.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food item price must not be negative")
	}

	var (
		saved *models.FoodItem
		err   error
	)
	if item.ID == uuid.Nil {
		saved, err = s.repo.CreateFoodItem(ctx, item)
	} else {
		saved, err = s.repo.UpdateFoodItem(ctx, item)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving food item")
	}

	s.invalidate(ctx, TagFoodItems)
	return saved, nil
}

// SaveServiceItem creates or updates a service item and invalidates
// service listings.
func (s *service) SaveServiceItem(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service name is required")
	}
	if item.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative")
	}
	if !item.Pricing.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service pricing mode")
	}

	var (
		saved *models.ServiceItem
		err   error
	)
	if item.ID == uuid.Nil {
		saved, err = s.repo.CreateServiceItem(ctx, item)
	} else {
		saved, err = s.repo.UpdateServiceItem(ctx, item)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving service item")
	}

	s.invalidate(ctx, TagServiceItems)
	return saved, nil
}

func (s *service) cacheGet(ctx context.Context, entity, filter string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, entity, filter, dest)
	if err == nil {
		return true
	}
	if s.miss == nil || !s.miss(err) {
		s.logg.Warn(ctx, fmt.Sprintf("catalog cache read failed for %s/%s: %v", entity, filter, err))
	}
	return false
}

func (s *service) cacheSet(ctx context.Context, entity, filter string, value any, tags ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, entity, filter, value, tags...); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("catalog cache write failed for %s/%s: %v", entity, filter, err))
	}
}

func (s *service) invalidate(ctx context.Context, tag string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tag); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("catalog cache invalidation failed for %s: %v", tag, err))
	}
}

func cacheFilter(cartID *uuid.UUID) string {
	if cartID == nil {
		return "all"
	}
	return cartID.String()
}

func validateCart(cart *models.Cart) error {
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart payload is required")
	}
	if strings.TrimSpace(cart.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart name is required")
	}
	if cart.PricePerHour.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart rate must not be negative")
	}
	if cart.ShippingPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping price must not be negative")
	}
	if cart.Capacity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "capacity must not be negative")
	}
	return nil
}
