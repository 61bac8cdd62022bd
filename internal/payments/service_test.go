package payments

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

type memIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{keys: map[string]string{}}
}

func (m *memIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *memIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = "1"
	return true, nil
}

func (m *memIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "gv:idempotency:" + scope + ":" + id
}

func (m *memIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.keys, key)
	}
	return nil
}

type stubConfirmer struct {
	calls []string
	err   error
}

func (s *stubConfirmer) ConfirmByPaymentReference(ctx context.Context, id uuid.UUID, reference string) (*models.Booking, error) {
	s.calls = append(s.calls, id.String()+"/"+reference)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Booking{ID: id, Status: enums.BookingStatusConfirmed}, nil
}

func newTestService(t *testing.T, confirmer *stubConfirmer) *Service {
	t.Helper()
	guard, err := NewIdempotencyGuard(newMemIdempotencyStore(), time.Hour)
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}
	logg := logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
	svc, err := NewService(confirmer, guard, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func paymentEvent(bookingID uuid.UUID) *Event {
	return &Event{
		EventID: "evt_" + uuid.NewString(),
		Type:    "payment.succeeded",
		Data: EventData{
			BookingID:        bookingID.String(),
			PaymentReference: "pay_42",
		},
	}
}

func TestHandleEventConfirmsBooking(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	svc := newTestService(t, confirmer)
	bookingID := uuid.New()

	if err := svc.HandleEvent(context.Background(), paymentEvent(bookingID)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(confirmer.calls) != 1 || confirmer.calls[0] != bookingID.String()+"/pay_42" {
		t.Fatalf("expected one confirmation call, got %v", confirmer.calls)
	}
}

func TestHandleEventDeduplicatesByEventID(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	svc := newTestService(t, confirmer)
	event := paymentEvent(uuid.New())

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(confirmer.calls) != 1 {
		t.Fatalf("expected redelivery to be skipped, got %d calls", len(confirmer.calls))
	}
}

func TestHandleEventReleasesMarkOnFailure(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	svc := newTestService(t, confirmer)
	event := paymentEvent(uuid.New())
	ctx := context.Background()

	if err := svc.HandleEvent(ctx, event); err == nil {
		t.Fatal("expected handler error")
	}

	// the retry must reach the confirmer again
	confirmer.err = nil
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(confirmer.calls) != 2 {
		t.Fatalf("expected 2 confirmation attempts, got %d", len(confirmer.calls))
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	svc := newTestService(t, confirmer)

	event := &Event{EventID: "evt_x", Type: "payout.created"}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(confirmer.calls) != 0 {
		t.Fatal("unknown event type must not touch bookings")
	}
}

func TestHandleEventRejectsBadBookingID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubConfirmer{})
	event := &Event{
		EventID: "evt_bad",
		Type:    "payment.succeeded",
		Data:    EventData{BookingID: "not-a-uuid", PaymentReference: "pay_1"},
	}

	err := svc.HandleEvent(context.Background(), event)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	t.Parallel()

	event, err := ParseEvent([]byte(`{"event_id":"evt_1","type":"payment.succeeded","data":{"booking_id":"b","payment_reference":"p"}}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if event.EventID != "evt_1" || event.Data.PaymentReference != "p" {
		t.Fatalf("unexpected event %+v", event)
	}

	bad := [][]byte{
		[]byte(`{`),
		[]byte(`{"type":"payment.succeeded"}`),
		[]byte(`{"event_id":"evt_2"}`),
	}
	for _, body := range bad {
		if _, err := ParseEvent(body); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}
