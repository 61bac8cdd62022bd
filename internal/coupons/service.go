package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

type couponRepo interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	CountRedemptionsByEmail(ctx context.Context, couponID uuid.UUID, email string) (int64, error)
}

// ValidationResult is the outcome of a successful coupon check.
type ValidationResult struct {
	Coupon         *models.Coupon      `json:"-"`
	Terms          pricing.CouponTerms `json:"terms"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	FinalAmount    decimal.Decimal     `json:"final_amount"`
}

// Service validates coupons against drafts and exposes back-office CRUD.
type Service interface {
	Validate(ctx context.Context, code, customerEmail string, orderAmount decimal.Decimal) (*ValidationResult, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Save(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
}

type service struct {
	repo couponRepo
	now  func() time.Time
}

// NewService builds a coupon service.
func NewService(repo couponRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Validate checks the coupon against the order amount and customer history.
// Every rejection is a CodeCoupon error with a reason in the message; the
// caller decides whether to drop or replace the coupon.
func (s *service) Validate(ctx context.Context, code, customerEmail string, orderAmount decimal.Decimal) (*ValidationResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeCoupon, "coupon code is required")
	}
	if orderAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must not be negative")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeCoupon, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading coupon")
	}

	if err := s.checkRedeemable(ctx, coupon, customerEmail, orderAmount); err != nil {
		return nil, err
	}

	terms := TermsFor(coupon)
	discount, err := pricing.DiscountFor(&terms, orderAmount)
	if err != nil {
		return nil, err
	}

	final := orderAmount.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return &ValidationResult{
		Coupon:         coupon,
		Terms:          terms,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

func (s *service) checkRedeemable(ctx context.Context, coupon *models.Coupon, customerEmail string, orderAmount decimal.Decimal) error {
	now := s.now()

	if !coupon.Active {
		return pkgerrors.New(pkgerrors.CodeCoupon, "coupon is no longer active")
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeCoupon, "coupon is not valid yet")
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return pkgerrors.New(pkgerrors.CodeCoupon, "coupon has expired")
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return pkgerrors.New(pkgerrors.CodeCoupon, "coupon usage limit reached")
	}
	if coupon.MinOrderAmount != nil && orderAmount.LessThan(*coupon.MinOrderAmount) {
		return pkgerrors.New(pkgerrors.CodeCoupon,
			fmt.Sprintf("order amount below coupon minimum of %s", coupon.MinOrderAmount.StringFixed(2)))
	}

	if coupon.PerEmailLimit != nil && strings.TrimSpace(customerEmail) != "" {
		used, err := s.repo.CountRedemptionsByEmail(ctx, coupon.ID, customerEmail)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting coupon redemptions")
		}
		if used >= int64(*coupon.PerEmailLimit) {
			return pkgerrors.New(pkgerrors.CodeCoupon, "coupon already used by this customer")
		}
	}
	return nil
}

// List returns every coupon.
func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing coupons")
	}
	return coupons, nil
}

// Save creates or updates a coupon after shape validation.
func (s *service) Save(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon payload is required")
	}
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !coupon.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if coupon.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must not be negative")
	}
	if coupon.DiscountType == enums.DiscountTypePercentage && coupon.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value must not exceed 100")
	}
	if coupon.ValidFrom != nil && coupon.ValidUntil != nil && coupon.ValidUntil.Before(*coupon.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validity window is inverted")
	}

	var (
		saved *models.Coupon
		err   error
	)
	if coupon.ID == uuid.Nil {
		saved, err = s.repo.Create(ctx, coupon)
	} else {
		saved, err = s.repo.Update(ctx, coupon)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving coupon")
	}
	return saved, nil
}

// TermsFor converts the stored coupon into calculator terms.
func TermsFor(coupon *models.Coupon) pricing.CouponTerms {
	return pricing.CouponTerms{
		Code:        coupon.Code,
		Type:        coupon.DiscountType,
		Value:       coupon.Value,
		MaxDiscount: coupon.MaxDiscount,
	}
}
