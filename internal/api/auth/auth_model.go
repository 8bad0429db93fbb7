package auth

import (
	"context"
	"encoding/json"

	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// OTPSender is the remote side of the OTP login flow.
type OTPSender interface {
	SendOTP(ctx context.Context, contact string) (json.RawMessage, error)
	VerifyOTP(ctx context.Context, contact, otp string) (json.RawMessage, error)
}

// SessionStore is the subset of the session store the auth service needs.
type SessionStore interface {
	Update(id string, fn func(*types.AuthSession)) (types.AuthSession, bool)
	Get(id string) (types.AuthSession, bool)
}

// Response is the body returned by the OTP endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
