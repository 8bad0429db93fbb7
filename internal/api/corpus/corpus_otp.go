package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/FACorreiaa/go-tourist-guide/config"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// OTPClient sends and verifies one-time passwords against the auth endpoints.
type OTPClient struct {
	client    *Client
	sendPath  string
	checkPath string
}

func NewOTPClient(c *Client, cfg config.CorpusConfig) *OTPClient {
	return &OTPClient{
		client:    c,
		sendPath:  cfg.Endpoints.SendOTP,
		checkPath: cfg.Endpoints.VerifyOTP,
	}
}

// contactPayload keys the contact as email when it contains "@", phone otherwise.
func contactPayload(contact string) map[string]string {
	if strings.Contains(contact, "@") {
		return map[string]string{"email": contact}
	}
	return map[string]string{"phone": contact}
}

func (o *OTPClient) SendOTP(ctx context.Context, contact string) (json.RawMessage, error) {
	if contact == "" {
		return nil, fmt.Errorf("%w: contact information is required", types.ErrInvalidArgument)
	}
	return o.client.Do(ctx, http.MethodPost, o.sendPath, "", nil, contactPayload(contact))
}

func (o *OTPClient) VerifyOTP(ctx context.Context, contact, otp string) (json.RawMessage, error) {
	if contact == "" || otp == "" {
		return nil, fmt.Errorf("%w: contact and OTP are required", types.ErrInvalidArgument)
	}
	payload := contactPayload(contact)
	payload["otp"] = otp
	return o.client.Do(ctx, http.MethodPost, o.checkPath, "", nil, payload)
}
