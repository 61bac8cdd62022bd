package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

// BookingDate reserves one [StartTime,EndTime) range on one cart for one
// calendar day. CartCost is the hours-times-rate snapshot computed when the
// date was added to the draft. The slot exclusion constraint over
// (cart_id, date, time range) lives in the migrations and only covers rows
// with Active true; cancelling a booking deactivates its dates so the slots
// reopen.
type BookingDate struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BookingID  uuid.UUID       `gorm:"column:booking_id;type:uuid;not null"`
	CartID     uuid.UUID       `gorm:"column:cart_id;type:uuid;not null"`
	Date       time.Time       `gorm:"column:date;type:date;not null"`
	StartTime  types.TimeOfDay `gorm:"column:start_time;type:time;not null"`
	EndTime    types.TimeOfDay `gorm:"column:end_time;type:time;not null"`
	TotalHours decimal.Decimal `gorm:"column:total_hours;type:numeric(5,2);not null"`
	CartCost   decimal.Decimal `gorm:"column:cart_cost;type:numeric(12,2);not null"`
	Active     bool            `gorm:"column:active;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (b *BookingDate) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
