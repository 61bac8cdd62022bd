package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingItem snapshots one selected food item. UnitPrice is captured at
// selection time.
type BookingItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BookingID  uuid.UUID       `gorm:"column:booking_id;type:uuid;not null"`
	FoodItemID uuid.UUID       `gorm:"column:food_item_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (b *BookingItem) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
