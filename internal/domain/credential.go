package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Sentinel errors for credential verification.
var (
	// ErrInvalidPayload is returned when a scanned payload cannot be decoded
	// into a well-formed QRPayload.
	ErrInvalidPayload = errors.New("malformed qr payload")
	// ErrInvalidToken is returned when the presented token does not match the
	// credential stored on the registration. Treated as a forged or stale
	// credential, not a soft warning.
	ErrInvalidToken = errors.New("invalid credential token")
)

// QRPayload is the opaque blob encoded into an attendee's QR code. It carries
// just enough to locate the registration; validity is decided solely by
// comparing Token against the credential stored on the registration row, so
// cancellation revokes a credential immediately.
type QRPayload struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	Token          string `json:"token"`
}

// Encode serializes the payload as base64url(JSON) for embedding in a QR code.
func (p QRPayload) Encode() string {
	raw, _ := json.Marshal(p)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeQRPayload parses a scanned payload. The input is untrusted: any
// decode failure or missing field yields ErrInvalidPayload.
func DecodeQRPayload(s string) (*QRPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidPayload
	}
	var p QRPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrInvalidPayload
	}
	if p.RegistrationID == "" || p.EventID == "" || p.Token == "" {
		return nil, ErrInvalidPayload
	}
	return &p, nil
}

// CredentialIssuer mints the single-use token bound to a registration at
// creation time. Tokens are unpredictable and never reissued.
type CredentialIssuer interface {
	Issue() (string, error)
}
