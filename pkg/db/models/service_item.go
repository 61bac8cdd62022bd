package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
)

// ServiceItem is a bookable service such as staffing or setup. Per-hour
// services multiply price by booked hours; flat services ignore hours.
type ServiceItem struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CartID    *uuid.UUID           `gorm:"column:cart_id;type:uuid"`
	Name      string               `gorm:"column:name;not null"`
	Category  string               `gorm:"column:category;not null;default:''"`
	Pricing   enums.ServicePricing `gorm:"column:pricing;type:service_pricing;not null;default:'per_hour'"`
	Price     decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null"`
	Active    bool                 `gorm:"column:active;not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (s *ServiceItem) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
