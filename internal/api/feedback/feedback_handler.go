package feedback

import (
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
	feedbackService Service
	logger          *slog.Logger
}

func NewHandlerImpl(feedbackService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{feedbackService: feedbackService, logger: logger}
}

func (h *HandlerImpl) GetFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FeedbackHandler").Start(r.Context(), "GetFeedback", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/feedback"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetFeedback"))

	result, err := h.feedbackService.LoadFeedback(ctx, appMiddleware.TokenFromContext(ctx))
	if err != nil {
		l.ErrorContext(ctx, "Failed to load feedback", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to load feedback")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FeedbackHandler").Start(r.Context(), "CreateFeedback", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/feedback"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateFeedback"))

	var req types.Feedback
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid request body")
		return
	}

	result, err := h.feedbackService.SaveFeedback(ctx, appMiddleware.TokenFromContext(ctx), req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save feedback", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to save feedback")
		return
	}

	l.InfoContext(ctx, "Feedback saved", slog.String("place", result.Data.Place), slog.String("source", string(result.Source)))
	api.WriteJSONResponse(w, r, http.StatusCreated, result)
}
