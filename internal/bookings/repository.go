package bookings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	"github.com/angelmondragon/packfinderz-backend/pkg/pagination"
)

// Repository persists bookings together with their date, item and service
// snapshot rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the booking with its associated rows in one statement
// batch. gorm cascades the Dates, Items and Services slices.
func (r *Repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

// FindByID loads a booking with all snapshot rows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Dates").
		Preload("Items").
		Preload("Services").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListFilter narrows the admin booking listing.
type ListFilter struct {
	Status        *enums.BookingStatus
	CartID        *uuid.UUID
	CustomerEmail string
}

// List returns bookings newest-first with cursor pagination. The returned
// cursor is nil on the last page.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Preload("Dates").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CartID != nil {
		query = query.Where("cart_id = ?", *filter.CartID)
	}
	if email := strings.TrimSpace(filter.CustomerEmail); email != "" {
		query = query.Where("lower(customer_email) = lower(?)", email)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

// UpdateStatus persists a status change plus its lifecycle columns. Only
// the supplied columns are written so concurrent slip uploads are not
// clobbered.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus, columns map[string]any) error {
	updates := map[string]any{"status": status}
	for key, value := range columns {
		updates[key] = value
	}
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AttachPaymentSlip stores the uploaded slip reference on the booking.
func (r *Repository) AttachPaymentSlip(ctx context.Context, id uuid.UUID, url, filename string) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_slip_url":      url,
			"payment_slip_filename": filename,
		}).Error
}

// SetPaymentReference records the external payment id reported by the
// provider webhook.
func (r *Repository) SetPaymentReference(ctx context.Context, id uuid.UUID, reference string) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("payment_reference", reference).Error
}

// DeactivateDates flips the booking's date rows inactive so the exclusion
// constraint stops protecting those slots.
func (r *Repository) DeactivateDates(ctx context.Context, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.BookingDate{}).
		Where("booking_id = ?", bookingID).
		Update("active", false).Error
}
