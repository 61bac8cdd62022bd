package payments

import (
	"testing"

	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	secret := "whsec_test"
	payload := []byte(`{"event_id":"evt_1","type":"payment.succeeded"}`)
	signature := Sign(secret, payload)

	if err := VerifySignature(secret, payload, signature); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := VerifySignature(secret, payload, "sha256="+signature); err != nil {
		t.Fatalf("prefixed signature rejected: %v", err)
	}

	cases := []struct {
		name      string
		secret    string
		payload   []byte
		signature string
		wantCode  pkgerrors.Code
	}{
		{"wrong secret", "other", payload, signature, pkgerrors.CodeUnauthorized},
		{"tampered payload", secret, []byte(`{"event_id":"evt_2"}`), signature, pkgerrors.CodeUnauthorized},
		{"empty signature", secret, payload, "", pkgerrors.CodeUnauthorized},
		{"garbage signature", secret, payload, "zzzz", pkgerrors.CodeUnauthorized},
		{"no secret configured", "", payload, signature, pkgerrors.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(tc.secret, tc.payload, tc.signature)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}
