package coupons

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
)

// Repository handles coupon persistence.
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

// FindByCode loads a coupon by its case-insensitive code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Where("lower(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// List returns every coupon for the back office.
func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Create persists a new coupon.
func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update saves coupon changes.
func (r *Repository) Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if err := r.db.WithContext(ctx).Save(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

// CountRedemptionsByEmail counts how often the customer already used the
// coupon.
func (r *Repository) CountRedemptionsByEmail(ctx context.Context, couponID uuid.UUID, email string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CouponRedemption{}).
		Where("coupon_id = ? AND lower(customer_email) = ?", couponID, strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ConsumeUsage increments used_count, guarded so a concurrent submission
// can never push the counter past the limit. Returns true when the
// increment was applied.
func (r *Repository) ConsumeUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RecordRedemption stores one redemption row for per-email accounting.
func (r *Repository) RecordRedemption(ctx context.Context, redemption *models.CouponRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}
