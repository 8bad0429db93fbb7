package poi

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-tourist-guide/app/middleware"
	"github.com/FACorreiaa/go-tourist-guide/internal/api"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
	"github.com/FACorreiaa/go-tourist-guide/internal/validators"
)

type HandlerImpl struct {
	poiService  Service
	logger      *slog.Logger
	maxFileSize int64
}

func NewHandlerImpl(poiService Service, maxFileSize int64, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		poiService:  poiService,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// GetPlaces lists places from the remote API or the local store.
func (h *HandlerImpl) GetPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "GetPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPlaces"))
	l.DebugContext(ctx, "Get places handler invoked")

	result, err := h.poiService.LoadPlaces(ctx, appMiddleware.TokenFromContext(ctx))
	if err != nil {
		l.ErrorContext(ctx, "Failed to load places", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to load places")
		return
	}

	l.InfoContext(ctx, "Places loaded", slog.Int("count", len(result.Data)), slog.String("source", string(result.Source)))
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// CreatePlace validates a raw place submission and saves it.
func (h *HandlerImpl) CreatePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "CreatePlace", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreatePlace"))
	l.DebugContext(ctx, "Create place handler invoked")

	var record map[string]any
	if err := api.DecodeJSONBody(w, r, &record); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid request body")
		return
	}

	if _, err := validators.ValidatePlaceData(record); err != nil {
		l.WarnContext(ctx, "Place submission rejected", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid place")
		return
	}

	result, err := h.poiService.SavePlace(ctx, appMiddleware.TokenFromContext(ctx), types.PlaceFromRecord(record))
	if err != nil {
		l.ErrorContext(ctx, "Failed to save place", slog.Any("error", err))
		api.WriteError(w, r, err, "Failed to save place")
		return
	}

	l.InfoContext(ctx, "Place saved", slog.String("id", result.Data.ID), slog.String("source", string(result.Source)))
	api.WriteJSONResponse(w, r, http.StatusCreated, result)
}

// UploadImage checks a base64 or data URL image against the size and
// format limits.
func (h *HandlerImpl) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "UploadImage", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places/image"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UploadImage"))

	// base64 inflates by 4/3; leave room for the data URL header and JSON
	limit := h.maxFileSize*4/3 + 4096
	var req types.ImageUploadRequest
	if err := api.DecodeJSONBodyLimit(w, r, &req, limit); err != nil {
		l.WarnContext(ctx, "Failed to decode image upload", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid image upload")
		return
	}

	info, err := h.poiService.InspectImage(req.Image)
	if err != nil {
		l.WarnContext(ctx, "Image rejected", slog.Any("error", err))
		api.WriteError(w, r, err, "Invalid image")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, info)
}
