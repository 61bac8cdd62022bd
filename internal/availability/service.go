package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

type slotReader interface {
	ActiveSlots(ctx context.Context, cartID uuid.UUID, from, to time.Time) ([]Slot, error)
	ActiveSlotsOnDates(ctx context.Context, cartID uuid.UUID, dates []time.Time) ([]Slot, error)
}

type cartLoader interface {
	FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
}

// CheckResult reports the outcome of an availability check.
type CheckResult struct {
	Available bool   `json:"available"`
	Conflicts []Slot `json:"conflicts,omitempty"`
}

// Service answers availability questions for cart time slots.
type Service interface {
	BookedSlots(ctx context.Context, cartID uuid.UUID, from, to time.Time) ([]Slot, error)
	Check(ctx context.Context, cartID uuid.UUID, requested []Slot) (*CheckResult, error)
}

type service struct {
	slots slotReader
	carts cartLoader
}

// NewService builds an availability service backed by the provided stack.
func NewService(slots slotReader, carts cartLoader) (Service, error) {
	if slots == nil {
		return nil, fmt.Errorf("slot reader required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	return &service{slots: slots, carts: carts}, nil
}

// BookedSlots lists the occupied slots for a cart so calendars can render
// busy ranges.
func (s *service) BookedSlots(ctx context.Context, cartID uuid.UUID, from, to time.Time) ([]Slot, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}
	if _, err := s.loadCart(ctx, cartID); err != nil {
		return nil, err
	}

	booked, err := s.slots.ActiveSlots(ctx, cartID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booked slots")
	}
	return booked, nil
}

// Check validates the requested slots and reports every slot that collides
// with an existing booking or with another requested slot.
func (s *service) Check(ctx context.Context, cartID uuid.UUID, requested []Slot) (*CheckResult, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if err := ValidateSlots(requested); err != nil {
		return nil, err
	}
	if _, err := s.loadCart(ctx, cartID); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(requested))
	for _, slot := range requested {
		dates = append(dates, slot.Date)
	}
	booked, err := s.slots.ActiveSlotsOnDates(ctx, cartID, dates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booked slots")
	}

	conflicts := FindConflicts(requested, booked)
	return &CheckResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

func (s *service) loadCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.FindCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if !cart.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}

// ValidateSlots rejects malformed slot lists: empty input, zero dates,
// times that are not normalized "HH:MM", or ranges where the start does
// not precede the end.
func ValidateSlots(slots []Slot) error {
	if len(slots) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one slot is required")
	}
	for i, slot := range slots {
		if slot.Date.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot %d: date is required", i))
		}
		// Non-normalized times like "9:30" would break the lexicographic
		// ordering the overlap math relies on.
		if !slot.Start.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot %d: start time must be HH:MM", i))
		}
		if !slot.End.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot %d: end time must be HH:MM", i))
		}
		if !slot.Start.Before(slot.End) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("slot %d: start time must be before end time", i))
		}
	}
	return nil
}
