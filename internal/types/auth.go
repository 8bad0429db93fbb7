package types

import (
	"encoding/json"
	"time"
)

// ContactKind tells whether an OTP contact is an email address or a phone number.
type ContactKind string

const (
	ContactEmail ContactKind = "email"
	ContactPhone ContactKind = "phone"
)

// AuthSession is the per-client authentication state. An empty Token means
// the client is not authenticated.
type AuthSession struct {
	ID           string          `json:"id"`
	Token        string          `json:"-"`
	User         json.RawMessage `json:"user,omitempty"`
	Contact      string          `json:"contact,omitempty"`
	LastActivity time.Time       `json:"last_activity"`
}

// Authenticated reports whether the session holds a bearer token.
func (s *AuthSession) Authenticated() bool {
	return s != nil && s.Token != ""
}

// SendOTPRequest starts an OTP login.
type SendOTPRequest struct {
	Contact string `json:"contact"`
}

// VerifyOTPRequest completes an OTP login for the pending contact.
type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

// SessionView is what the session endpoint exposes to clients.
type SessionView struct {
	Authenticated bool            `json:"authenticated"`
	Contact       string          `json:"contact,omitempty"`
	User          json.RawMessage `json:"user,omitempty"`
	LastActivity  time.Time       `json:"last_activity"`
	Subject       string          `json:"subject,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}
