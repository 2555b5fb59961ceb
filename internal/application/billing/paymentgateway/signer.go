package paymentgateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer computes the request authentication the gateway verifies: an
// HMAC-SHA-256 over the route path concatenated with the canonical JSON body,
// keyed by the per-merchant secret. The canonical body is the exact bytes
// sent on the wire — the body is marshaled once and those bytes are both
// signed and transmitted, so the signature is deterministic for a given
// route, body, and key.
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

// Sign returns the hex-encoded signature for a route path and body.
func (s *Signer) Sign(routePath string, body []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(routePath))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature in constant time. Used by tests and by the
// enrollment flow's callback verification.
func (s *Signer) Verify(routePath string, body []byte, signature string) bool {
	expected := s.Sign(routePath, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
