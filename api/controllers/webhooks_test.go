package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/packfinderz-backend/internal/payments"
	"github.com/angelmondragon/packfinderz-backend/pkg/config"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

type fakeEventStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{data: map[string]string{}}
}

func (s *fakeEventStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *fakeEventStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *fakeEventStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("idem:%s:%s", scope, id)
}

func (s *fakeEventStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

type recordingConfirmer struct {
	mu    sync.Mutex
	calls []string
}

func (c *recordingConfirmer) ConfirmByPaymentReference(ctx context.Context, id uuid.UUID, reference string) (*models.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, id.String()+"|"+reference)
	now := time.Now()
	return &models.Booking{
		ID:               id,
		Status:           enums.BookingStatusConfirmed,
		PaymentReference: &reference,
		ConfirmedAt:      &now,
	}, nil
}

func newWebhookHandler(t *testing.T, secret string) (http.HandlerFunc, *recordingConfirmer) {
	t.Helper()

	logg := logger.New(logger.Options{Output: io.Discard, Level: zerolog.ErrorLevel})
	guard, err := payments.NewIdempotencyGuard(newFakeEventStore(), time.Hour)
	require.NoError(t, err)
	confirmer := &recordingConfirmer{}
	svc, err := payments.NewService(confirmer, guard, logg)
	require.NoError(t, err)
	return PaymentWebhook(svc, config.WebhookConfig{PaymentSecret: secret}, logg), confirmer
}

func postWebhook(handler http.HandlerFunc, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(payments.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPaymentWebhookConfirmsBooking(t *testing.T) {
	handler, confirmer := newWebhookHandler(t, "secret")

	bookingID := uuid.New()
	body := fmt.Sprintf(`{"event_id":"evt_1","type":"payment.succeeded","data":{"booking_id":%q,"payment_reference":"ref-42"}}`, bookingID)
	rec := postWebhook(handler, body, payments.Sign("secret", []byte(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(confirmer.calls) != 1 || confirmer.calls[0] != bookingID.String()+"|ref-42" {
		t.Fatalf("unexpected confirm calls: %v", confirmer.calls)
	}
}

func TestPaymentWebhookDeduplicatesEvents(t *testing.T) {
	handler, confirmer := newWebhookHandler(t, "secret")

	bookingID := uuid.New()
	body := fmt.Sprintf(`{"event_id":"evt_dup","type":"payment.succeeded","data":{"booking_id":%q,"payment_reference":"ref-1"}}`, bookingID)
	sig := payments.Sign("secret", []byte(body))

	for i := 0; i < 2; i++ {
		if rec := postWebhook(handler, body, sig); rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: got %d, want 200", i, rec.Code)
		}
	}
	if len(confirmer.calls) != 1 {
		t.Fatalf("duplicate event reached the booking service: %v", confirmer.calls)
	}
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	handler, confirmer := newWebhookHandler(t, "secret")

	body := `{"event_id":"evt_2","type":"payment.succeeded","data":{"booking_id":"x","payment_reference":"ref"}}`
	rec := postWebhook(handler, body, payments.Sign("wrong-secret", []byte(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
	if len(confirmer.calls) != 0 {
		t.Fatalf("unverified event reached the booking service: %v", confirmer.calls)
	}
}

func TestPaymentWebhookIgnoresUnknownEventTypes(t *testing.T) {
	handler, confirmer := newWebhookHandler(t, "secret")

	body := `{"event_id":"evt_3","type":"payout.settled","data":{}}`
	rec := postWebhook(handler, body, payments.Sign("secret", []byte(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(confirmer.calls) != 0 {
		t.Fatalf("unknown event type should be acknowledged without action: %v", confirmer.calls)
	}
}
