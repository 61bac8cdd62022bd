package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FoodItem is an orderable extra. A nil CartID makes the item available for
// every cart.
type FoodItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID    *uuid.UUID      `gorm:"column:cart_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	Category  string          `gorm:"column:category;not null;default:''"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL  *string         `gorm:"column:image_url"`
	Active    bool            `gorm:"column:active;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (f *FoodItem) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
