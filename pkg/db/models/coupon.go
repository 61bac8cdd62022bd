package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
)

// Coupon is a discount code. UsedCount is only incremented inside the
// booking submission transaction, never by draft-stage validation.
type Coupon struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code           string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	Value          decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	MaxDiscount    *decimal.Decimal   `gorm:"column:max_discount;type:numeric(12,2)"`
	MinOrderAmount *decimal.Decimal   `gorm:"column:min_order_amount;type:numeric(12,2)"`
	ValidFrom      *time.Time         `gorm:"column:valid_from"`
	ValidUntil     *time.Time         `gorm:"column:valid_until"`
	UsageLimit     *int               `gorm:"column:usage_limit"`
	UsedCount      int                `gorm:"column:used_count;not null;default:0"`
	PerEmailLimit  *int               `gorm:"column:per_email_limit"`
	Active         bool               `gorm:"column:active;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// CouponRedemption records each successful use of a coupon so per-email
// limits can be enforced.
type CouponRedemption struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CouponID      uuid.UUID `gorm:"column:coupon_id;type:uuid;not null"`
	BookingID     uuid.UUID `gorm:"column:booking_id;type:uuid;not null"`
	CustomerEmail string    `gorm:"column:customer_email;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns the id when the caller has not set one.
func (c *CouponRedemption) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
