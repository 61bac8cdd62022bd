package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
)

// Repository wires together catalog persistence for carts, food items, and
// service items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindCart loads a cart by id.
func (r *Repository) FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindCartForUpdate loads a cart with a row lock. Callers must run inside a
// transaction; the lock serializes submissions racing on the same cart.
// SQLite has no row locks and serializes writers on its own, so the clause
// only applies on Postgres.
func (r *Repository) FindCartForUpdate(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	if err := query.First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListCarts returns carts, optionally filtered to active ones.
func (r *Repository) ListCarts(ctx context.Context, activeOnly bool) ([]models.Cart, error) {
	query := r.db.WithContext(ctx).Model(&models.Cart{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var carts []models.Cart
	if err := query.Order("name ASC").Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// CreateCart persists a new cart.
func (r *Repository) CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCart saves cart changes.
func (r *Repository) UpdateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// ListFoodItems returns the food items visible for a cart: items bound to
// the cart plus global items (nil cart id). A nil cartID lists everything.
func (r *Repository) ListFoodItems(ctx context.Context, cartID *uuid.UUID, activeOnly bool) ([]models.FoodItem, error) {
	query := r.db.WithContext(ctx).Model(&models.FoodItem{})
	if cartID != nil {
		query = query.Where("cart_id IS NULL OR cart_id = ?", *cartID)
	}
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var items []models.FoodItem
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindFoodItems loads food items by id.
func (r *Repository) FindFoodItems(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.FoodItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateFoodItem persists a new food item.
func (r *Repository) CreateFoodItem(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateFoodItem saves food item changes.
func (r *Repository) UpdateFoodItem(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// ListServiceItems returns the services visible for a cart, mirroring
// ListFoodItems semantics.
func (r *Repository) ListServiceItems(ctx context.Context, cartID *uuid.UUID, activeOnly bool) ([]models.ServiceItem, error) {
	query := r.db.WithContext(ctx).Model(&models.ServiceItem{})
	if cartID != nil {
		query = query.Where("cart_id IS NULL OR cart_id = ?", *cartID)
	}
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var items []models.ServiceItem
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindServiceItems loads service items by id.
func (r *Repository) FindServiceItems(ctx context.Context, ids []uuid.UUID) ([]models.ServiceItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.ServiceItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateServiceItem persists a new service item.
func (r *Repository) CreateServiceItem(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateServiceItem saves service item changes.
func (r *Repository) UpdateServiceItem(ctx context.Context, item *models.ServiceItem) (*models.ServiceItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
