package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is a rentable food cart in the catalog. Availability flags and
// shipping price feed the pricing engine; slot ownership lives in
// BookingDate rows.
type Cart struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Description       *string         `gorm:"column:description"`
	PricePerHour      decimal.Decimal `gorm:"column:price_per_hour;type:numeric(12,2);not null"`
	Capacity          int             `gorm:"column:capacity;not null;default:0"`
	PickupAvailable   bool            `gorm:"column:pickup_available;not null"`
	ShippingAvailable bool            `gorm:"column:shipping_available;not null;default:false"`
	ShippingPrice     decimal.Decimal `gorm:"column:shipping_price;type:numeric(12,2);not null;default:0"`
	ImageURL          *string         `gorm:"column:image_url"`
	Active            bool            `gorm:"column:active;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
