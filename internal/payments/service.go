package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/redis"
)

const idempotencyScope = "payment_webhook"

type bookingConfirmer interface {
	ConfirmByPaymentReference(ctx context.Context, id uuid.UUID, reference string) (*models.Booking, error)
}

// Event is the payment provider's webhook payload.
type Event struct {
	EventID string    `json:"event_id"`
	Type    string    `json:"type"`
	Data    EventData `json:"data"`
}

// EventData identifies the booking and the provider-side payment.
type EventData struct {
	BookingID        string `json:"booking_id"`
	PaymentReference string `json:"payment_reference"`
}

// IdempotencyGuard deduplicates webhook deliveries by event id.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	return &IdempotencyGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark reports whether the event was already processed, marking it
// as seen otherwise.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, fmt.Errorf("event id required")
	}
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release forgets the event so a failed handler run can be retried.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("event id required")
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(idempotencyScope, eventID))
}

// Service turns verified payment events into booking confirmations.
type Service struct {
	bookings bookingConfirmer
	guard    *IdempotencyGuard
	logg     *logger.Logger
}

func NewService(bookings bookingConfirmer, guard *IdempotencyGuard, logg *logger.Logger) (*Service, error) {
	if bookings == nil {
		return nil, fmt.Errorf("booking service required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{bookings: bookings, guard: guard, logg: logg}, nil
}

// ParseEvent decodes and sanity-checks a raw webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding webhook payload")
	}
	if strings.TrimSpace(event.EventID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_id is required")
	}
	if strings.TrimSpace(event.Type) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type is required")
	}
	return &event, nil
}

// HandleEvent processes one verified event. Unknown event types are
// acknowledged without action so the provider does not retry them; known
// types release the idempotency mark on failure so a retry can succeed.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}

	seen, err := s.guard.CheckAndMark(ctx, event.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking event idempotency")
	}
	if seen {
		s.logg.Info(ctx, fmt.Sprintf("payment event %s already processed", event.EventID))
		return nil
	}

	switch strings.ToLower(event.Type) {
	case "payment.succeeded":
		if hErr := s.handlePaymentSucceeded(ctx, event); hErr != nil {
			if rErr := s.guard.Release(ctx, event.EventID); rErr != nil {
				s.logg.Warn(ctx, fmt.Sprintf("releasing idempotency mark for %s: %v", event.EventID, rErr))
			}
			return hErr
		}
		return nil
	case "payment.failed":
		// logged only; the booking stays pending for a manual follow-up
		s.logg.Warn(ctx, fmt.Sprintf("payment failed for booking %s (ref %s)",
			event.Data.BookingID, event.Data.PaymentReference))
		return nil
	default:
		return nil
	}
}

func (s *Service) handlePaymentSucceeded(ctx context.Context, event *Event) error {
	bookingID, err := uuid.Parse(event.Data.BookingID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking_id is not a valid uuid")
	}
	if strings.TrimSpace(event.Data.PaymentReference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment_reference is required")
	}

	booking, err := s.bookings.ConfirmByPaymentReference(ctx, bookingID, event.Data.PaymentReference)
	if err != nil {
		return err
	}

	ctx = s.logg.WithBookingID(ctx, booking.ID.String())
	s.logg.Info(ctx, "booking confirmed by payment webhook")
	return nil
}
