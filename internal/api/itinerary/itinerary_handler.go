package itinerary

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
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{itineraryService: itineraryService, logger: logger}
}

func (h *HandlerImpl) GetItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItineraries", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItineraries"))

	result, err := h.itineraryService.LoadItineraries(ctx, appMiddleware.TokenFromContext(ctx))
	if err != nil {
		l.ErrorContext(ctx, "Failed to load itineraries", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to load itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// GenerateItinerary runs the generation chain and optionally saves the plan.
func (h *HandlerImpl) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	var req types.GenerateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid request body")
		return
	}

	result, err := h.itineraryService.Generate(ctx, appMiddleware.TokenFromContext(ctx), req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to generate itinerary")
		return
	}

	l.InfoContext(ctx, "Itinerary generated",
		slog.String("strategy", result.Strategy),
		slog.Bool("saved", result.Saved),
	)
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateItinerary"))

	var req types.Itinerary
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid request body")
		return
	}

	result, err := h.itineraryService.SaveItinerary(ctx, appMiddleware.TokenFromContext(ctx), req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to save itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, result)
}
