package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
)

// Booking is a finalized reservation. Amount columns are snapshots taken at
// submission time; catalog price changes never alter an existing booking.
// Bookings are cancelled by status change, never deleted.
type Booking struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CartID         uuid.UUID            `gorm:"column:cart_id;type:uuid;not null"`
	Status         enums.BookingStatus  `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;type:delivery_method;not null"`
	PaymentMethod  enums.PaymentMethod  `gorm:"column:payment_method;type:payment_method;not null"`

	CustomerName    string  `gorm:"column:customer_name;not null"`
	CustomerEmail   string  `gorm:"column:customer_email;not null"`
	CustomerPhone   string  `gorm:"column:customer_phone;not null;default:''"`
	CustomerAddress *string `gorm:"column:customer_address"`
	Notes           *string `gorm:"column:notes"`

	CouponCode     *string         `gorm:"column:coupon_code"`
	FoodAmount     decimal.Decimal `gorm:"column:food_amount;type:numeric(12,2);not null;default:0"`
	ServicesAmount decimal.Decimal `gorm:"column:services_amount;type:numeric(12,2);not null;default:0"`
	CartAmount     decimal.Decimal `gorm:"column:cart_amount;type:numeric(12,2);not null;default:0"`
	ShippingAmount decimal.Decimal `gorm:"column:shipping_amount;type:numeric(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`

	PaymentSlipURL      *string `gorm:"column:payment_slip_url"`
	PaymentSlipFilename *string `gorm:"column:payment_slip_filename"`
	PaymentReference    *string `gorm:"column:payment_reference"`

	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`

	Dates    []BookingDate    `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Items    []BookingItem    `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Services []BookingService `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
