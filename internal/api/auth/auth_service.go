package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
	"github.com/FACorreiaa/go-tourist-guide/internal/validators"
)

var _ Service = (*ServiceImpl)(nil)

// ErrSessionNotFound is returned when the session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

type Service interface {
	SendOTP(ctx context.Context, sessionID, contact string) error
	VerifyOTP(ctx context.Context, sessionID, otp string) (types.SessionView, error)
	Session(ctx context.Context, sessionID string) (types.SessionView, error)
	Logout(ctx context.Context, sessionID string) error
}

type ServiceImpl struct {
	logger   *slog.Logger
	otp      OTPSender
	sessions SessionStore
}

func NewServiceImpl(otp OTPSender, sessions SessionStore, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, otp: otp, sessions: sessions}
}

// SendOTP checks the contact shape, asks the remote API to send a code and
// remembers the contact as pending for VerifyOTP.
func (s *ServiceImpl) SendOTP(ctx context.Context, sessionID, contact string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "SendOTP")
	defer span.End()

	contact = strings.TrimSpace(contact)
	kind, err := validators.ValidateContact(contact)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("auth.contact_kind", string(kind)))
	if _, ok := s.sessions.Get(sessionID); !ok {
		return ErrSessionNotFound
	}

	if _, err := s.otp.SendOTP(ctx, contact); err != nil {
		span.RecordError(err)
		return err
	}
	if _, ok := s.sessions.Update(sessionID, func(a *types.AuthSession) { a.Contact = contact }); !ok {
		return ErrSessionNotFound
	}
	s.logger.InfoContext(ctx, "OTP sent", slog.String("contact_kind", string(kind)))
	return nil
}

// VerifyOTP completes the login for the pending contact. The session keeps
// the returned token and the full response as the user payload.
func (s *ServiceImpl) VerifyOTP(ctx context.Context, sessionID, otp string) (types.SessionView, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "VerifyOTP")
	defer span.End()

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return types.SessionView{}, ErrSessionNotFound
	}
	otp = strings.TrimSpace(otp)
	if session.Contact == "" || otp == "" {
		return types.SessionView{}, fmt.Errorf("%w: contact and OTP are required, request an OTP first", types.ErrInvalidArgument)
	}

	resp, err := s.otp.VerifyOTP(ctx, session.Contact, otp)
	if err != nil {
		span.RecordError(err)
		return types.SessionView{}, err
	}
	token := corpus.ExtractToken(resp)
	if token == "" {
		s.logger.ErrorContext(ctx, "Login response missing token")
		return types.SessionView{}, fmt.Errorf("%w: login response did not contain access_token", types.ErrRequestFailed)
	}

	updated, ok := s.sessions.Update(sessionID, func(a *types.AuthSession) {
		a.Token = token
		a.User = json.RawMessage(resp)
	})
	if !ok {
		return types.SessionView{}, ErrSessionNotFound
	}
	s.logger.InfoContext(ctx, "User logged in successfully")
	return View(updated), nil
}

func (s *ServiceImpl) Session(ctx context.Context, sessionID string) (types.SessionView, error) {
	_, span := otel.Tracer("AuthService").Start(ctx, "Session", trace.WithAttributes(
		attribute.String("auth.session_id", sessionID),
	))
	defer span.End()

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return types.SessionView{}, ErrSessionNotFound
	}
	return View(session), nil
}

// Logout drops the token, user payload and pending contact.
func (s *ServiceImpl) Logout(ctx context.Context, sessionID string) error {
	_, span := otel.Tracer("AuthService").Start(ctx, "Logout")
	defer span.End()

	if _, ok := s.sessions.Update(sessionID, func(a *types.AuthSession) {
		a.Token = ""
		a.User = nil
		a.Contact = ""
	}); !ok {
		return ErrSessionNotFound
	}
	return nil
}

// View builds the client-facing view of a session. When the token is a JWT
// its subject and expiry are read without verifying the signature; the
// remote API remains the authority on the token.
func View(session types.AuthSession) types.SessionView {
	view := types.SessionView{
		Authenticated: session.Authenticated(),
		Contact:       session.Contact,
		User:          session.User,
		LastActivity:  session.LastActivity,
	}
	if session.Token == "" {
		return view
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.Token, claims); err != nil {
		return view
	}
	view.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		view.ExpiresAt = &exp
	}
	return view
}
