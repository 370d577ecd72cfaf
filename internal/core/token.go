package core

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

const redacted = "[REDACTED]"

// AccessToken is a service-identity bearer token issued by the identity provider.
// It is held in memory for a single operation only and must never be logged.
type AccessToken struct {
	// Value is the raw bearer string.
	Value string

	// ExpiresAt is the instant the identity provider reported for expiry.
	// It is zero if neither the response nor the token itself carried one.
	ExpiresAt time.Time

	// Strategy is the name of the strategy that acquired the token.
	Strategy string
}

// BearerHeader returns the value for an Authorization header.
func (t *AccessToken) BearerHeader() string {
	return "Bearer " + t.Value
}

// Fingerprint returns a non-reversible identifier safe to log.
func (t *AccessToken) Fingerprint() string {
	return Fingerprint(t.Value)
}

func (t *AccessToken) String() string {
	return redacted
}

func (t *AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fingerprint string    `json:"fingerprint"`
		ExpiresAt   time.Time `json:"expires_at"`
		Strategy    string    `json:"strategy"`
	}{t.Fingerprint(), t.ExpiresAt, t.Strategy})
}

// Fingerprint hashes a secret into a short identifier for logs and audit entries.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(hash[:12])
}
