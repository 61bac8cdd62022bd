package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
)

// BookingService snapshots one selected service with the quantity and hours
// it was priced at.
type BookingService struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	BookingID     uuid.UUID            `gorm:"column:booking_id;type:uuid;not null"`
	ServiceItemID uuid.UUID            `gorm:"column:service_item_id;type:uuid;not null"`
	Name          string               `gorm:"column:name;not null"`
	Pricing       enums.ServicePricing `gorm:"column:pricing;type:service_pricing;not null"`
	UnitPrice     decimal.Decimal      `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	Hours         decimal.Decimal      `gorm:"column:hours;type:numeric(5,2);not null"`
	LineTotal     decimal.Decimal      `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (b *BookingService) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
