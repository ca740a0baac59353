// Package credential mints the single-use QR tokens bound to registrations.
package credential

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

type randomIssuer struct{}

// NewRandomIssuer returns a CredentialIssuer producing tokens of the form
// "<uuid4>.<16 random bytes hex>". Neither half is derivable from the
// registration ID or any counter.
func NewRandomIssuer() domain.CredentialIssuer {
	return &randomIssuer{}
}

func (i *randomIssuer) Issue() (string, error) {
	suffix := make([]byte, 16)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate token suffix: %w", err)
	}
	return uuid.NewString() + "." + hex.EncodeToString(suffix), nil
}
