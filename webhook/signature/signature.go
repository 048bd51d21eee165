package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSignature is returned when the X-Shopify-Hmac-Sha256 header does not match the body
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign computes the Shopify webhook signature for body:
// the base64-encoded HMAC-SHA256 of the raw body keyed with the app secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks header against the signature of body using constant-time comparison
func Verify(secret string, body []byte, header string) error {
	if secret == "" {
		return fmt.Errorf("webhook secret is empty")
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return fmt.Errorf("%w: header is missing", ErrInvalidSignature)
	}

	got, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return fmt.Errorf("%w: decoding header: %v", ErrInvalidSignature, err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return ErrInvalidSignature
	}
	return nil
}
