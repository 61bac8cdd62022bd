package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
)

// Repository reads the booked slot inventory for carts.
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

// ActiveSlots returns the active booked slots for a cart inside [from, to].
// A zero `to` leaves the range open-ended.
func (r *Repository) ActiveSlots(ctx context.Context, cartID uuid.UUID, from, to time.Time) ([]Slot, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BookingDate{}).
		Where("cart_id = ? AND active = ?", cartID, true)
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}

	var rows []models.BookingDate
	if err := query.Order("date ASC, start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return slotsFromRows(rows), nil
}

// ActiveSlotsOnDates returns the active booked slots for a cart on the given
// days only.
func (r *Repository) ActiveSlotsOnDates(ctx context.Context, cartID uuid.UUID, dates []time.Time) ([]Slot, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	var rows []models.BookingDate
	if err := r.db.WithContext(ctx).
		Model(&models.BookingDate{}).
		Where("cart_id = ? AND active = ? AND date IN ?", cartID, true, dates).
		Order("date ASC, start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return slotsFromRows(rows), nil
}

func slotsFromRows(rows []models.BookingDate) []Slot {
	slots := make([]Slot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, Slot{
			Date:  row.Date,
			Start: row.StartTime,
			End:   row.EndTime,
		})
	}
	return slots
}
