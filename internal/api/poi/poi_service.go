package poi

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/fallback"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
	"github.com/FACorreiaa/go-tourist-guide/internal/validators"
)

var _ Service = (*ServiceImpl)(nil)

// Service loads and saves places, preferring the remote API.
type Service interface {
	LoadPlaces(ctx context.Context, token string) (types.Result[[]types.Place], error)
	SavePlace(ctx context.Context, token string, place types.Place) (types.Result[types.Place], error)
	InspectImage(encoded string) (types.ImageInfo, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	remote      corpus.API
	endpoint    string
	maxFileSize int64
}

// NewServiceImpl wires the place service. remote may be nil when the
// collections API is disabled.
func NewServiceImpl(repo Repository, remote corpus.API, endpoint string, maxFileSize int64, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		remote:      remote,
		endpoint:    endpoint,
		maxFileSize: maxFileSize,
	}
}

func (s *ServiceImpl) LoadPlaces(ctx context.Context, token string) (types.Result[[]types.Place], error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "LoadPlaces")
	defer span.End()

	var remote fallback.Op[[]types.Place]
	if s.remote != nil {
		remote = func(ctx context.Context) ([]types.Place, error) {
			raw, err := s.remote.Get(ctx, s.endpoint, token, nil)
			if err != nil {
				return nil, err
			}
			records := corpus.Records(raw)
			places := make([]types.Place, 0, len(records))
			for _, rec := range records {
				places = append(places, types.PlaceFromRecord(rec))
			}
			return places, nil
		}
	}

	return fallback.Run(ctx, s.logger, "load places", remote, s.loadLocal)
}

// loadLocal never fails: a broken local store reads as empty.
func (s *ServiceImpl) loadLocal(ctx context.Context) ([]types.Place, error) {
	places, err := s.repo.ListPlaces(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load local places data", slog.Any("error", err))
		return []types.Place{}, nil
	}
	return places, nil
}

// SavePlace validates the place before any I/O, then posts it to the
// remote API, falling back to the local store.
func (s *ServiceImpl) SavePlace(ctx context.Context, token string, place types.Place) (types.Result[types.Place], error) {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "SavePlace", trace.WithAttributes(
		attribute.String("place.name", place.Name),
	))
	defer span.End()

	if place.Season == "" {
		place.Season = types.DefaultSeason
	}
	if err := validators.ValidatePlace(place); err != nil {
		span.RecordError(err)
		return types.Result[types.Place]{}, err
	}

	var remote fallback.Op[types.Place]
	if s.remote != nil {
		remote = func(ctx context.Context) (types.Place, error) {
			if _, err := s.remote.Post(ctx, s.endpoint, token, place); err != nil {
				return types.Place{}, err
			}
			saved := place
			saved.ID = types.PlaceID(place)
			return saved, nil
		}
	}
	local := func(ctx context.Context) (types.Place, error) {
		return s.repo.SavePlace(ctx, place)
	}

	return fallback.Run(ctx, s.logger, "save place", remote, local)
}

// InspectImage validates an uploaded place photo and describes it.
func (s *ServiceImpl) InspectImage(encoded string) (types.ImageInfo, error) {
	data, err := validators.DecodeImageString(encoded)
	if err != nil {
		return types.ImageInfo{}, err
	}
	img, format, err := validators.ValidateImage(data, s.maxFileSize)
	if err != nil {
		return types.ImageInfo{}, err
	}
	b := img.Bounds()
	return types.ImageInfo{Width: b.Dx(), Height: b.Dy(), Format: format, Bytes: len(data)}, nil
}
