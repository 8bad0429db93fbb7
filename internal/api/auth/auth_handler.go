package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-tourist-guide/app/middleware"
	"github.com/FACorreiaa/go-tourist-guide/internal/api"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

type HandlerImpl struct {
	authService Service
	logger      *slog.Logger
}

func NewHandlerImpl(authService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{authService: authService, logger: logger}
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, ErrSessionNotFound) {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Session expired, reload to start a new one")
		return
	}
	api.WriteError(w, r, err, message)
}

func sessionID(r *http.Request) string {
	session, _ := appMiddleware.SessionFromContext(r.Context())
	return session.ID
}

func (h *HandlerImpl) SendOTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "SendOTP", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/auth/otp/send"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SendOTP"))

	var req types.SendOTPRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid request body")
		return
	}

	if err := h.authService.SendOTP(ctx, sessionID(r), req.Contact); err != nil {
		l.ErrorContext(ctx, "Send OTP failed", slog.Any("error", err))
		h.writeError(w, r, err, "Send OTP failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, Response{Success: true, Message: "OTP sent, check your SMS/email."})
}

func (h *HandlerImpl) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "VerifyOTP", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/auth/otp/verify"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "VerifyOTP"))

	var req types.VerifyOTPRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid request body")
		return
	}

	view, err := h.authService.VerifyOTP(ctx, sessionID(r), req.OTP)
	if err != nil {
		l.ErrorContext(ctx, "OTP verification failed", slog.Any("error", err))
		h.writeError(w, r, err, "OTP verification failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, view)
}

func (h *HandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "GetSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/auth/session"),
	))
	defer span.End()

	view, err := h.authService.Session(ctx, sessionID(r))
	if err != nil {
		h.writeError(w, r, err, "Failed to load session")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, view)
}

func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/auth/logout"),
	))
	defer span.End()

	if err := h.authService.Logout(ctx, sessionID(r)); err != nil {
		h.writeError(w, r, err, "Logout failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, Response{Success: true, Message: "Logged out"})
}
