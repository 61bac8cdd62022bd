package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Payment-Signature"

// Sign computes the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the provider signature against the raw body. A
// "sha256=" prefix on the header value is accepted.
func VerifySignature(secret string, payload []byte, signature string) error {
	if secret == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "webhook secret not configured")
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing webhook signature")
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed webhook signature")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}
	return nil
}
