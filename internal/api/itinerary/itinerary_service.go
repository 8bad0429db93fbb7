package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/fallback"
	generativeAI "github.com/FACorreiaa/go-tourist-guide/internal/api/generative_ai"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
	"github.com/FACorreiaa/go-tourist-guide/internal/validators"
)

const (
	maxDays       = 30
	defaultBudget = "Moderate"
	defaultSeason = "any"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	LoadItineraries(ctx context.Context, token string) (types.Result[[]types.Itinerary], error)
	SaveItinerary(ctx context.Context, token string, it types.Itinerary) (types.Result[types.Itinerary], error)
	Generate(ctx context.Context, token string, req types.GenerateItineraryRequest) (types.GeneratedItinerary, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	remote   corpus.API
	endpoint string
	ai       generativeAI.Service
}

func NewServiceImpl(repo Repository, remote corpus.API, endpoint string, ai generativeAI.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		remote:   remote,
		endpoint: endpoint,
		ai:       ai,
	}
}

func (s *ServiceImpl) LoadItineraries(ctx context.Context, token string) (types.Result[[]types.Itinerary], error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "LoadItineraries")
	defer span.End()

	var remote fallback.Op[[]types.Itinerary]
	if s.remote != nil {
		remote = func(ctx context.Context) ([]types.Itinerary, error) {
			raw, err := s.remote.Get(ctx, s.endpoint, token, nil)
			if err != nil {
				return nil, err
			}
			records := corpus.Records(raw)
			out := make([]types.Itinerary, 0, len(records))
			for _, rec := range records {
				out = append(out, types.ItineraryFromRecord(rec))
			}
			return out, nil
		}
	}
	local := func(ctx context.Context) ([]types.Itinerary, error) {
		out, err := s.repo.ListItineraries(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to load local itineraries", slog.Any("error", err))
			return []types.Itinerary{}, nil
		}
		return out, nil
	}
	return fallback.Run(ctx, s.logger, "load itineraries", remote, local)
}

func (s *ServiceImpl) SaveItinerary(ctx context.Context, token string, it types.Itinerary) (types.Result[types.Itinerary], error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.String("itinerary.start", it.Start),
		attribute.Int("itinerary.days", it.Days),
	))
	defer span.End()

	if err := validators.ValidateItinerary(it); err != nil {
		span.RecordError(err)
		return types.Result[types.Itinerary]{}, err
	}

	var remote fallback.Op[types.Itinerary]
	if s.remote != nil {
		remote = func(ctx context.Context) (types.Itinerary, error) {
			if _, err := s.remote.Post(ctx, s.endpoint, token, it); err != nil {
				return types.Itinerary{}, err
			}
			return it, nil
		}
	}
	local := func(ctx context.Context) (types.Itinerary, error) {
		return s.repo.SaveItinerary(ctx, it)
	}
	return fallback.Run(ctx, s.logger, "save itinerary", remote, local)
}

// Generate runs the generation chain for the request and, when asked,
// saves the resulting plan. A failed save does not discard the plan.
func (s *ServiceImpl) Generate(ctx context.Context, token string, req types.GenerateItineraryRequest) (types.GeneratedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("itinerary.start", req.Start),
		attribute.Int("itinerary.days", req.Days),
		attribute.Bool("itinerary.save", req.Save),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Generate"))

	req.Start = strings.TrimSpace(req.Start)
	if req.Start == "" {
		return types.GeneratedItinerary{}, fmt.Errorf("%w: start location is required", types.ErrInvalidArgument)
	}
	if req.Days < 1 || req.Days > maxDays {
		return types.GeneratedItinerary{}, fmt.Errorf("%w: days must be between 1 and %d, got %d", types.ErrInvalidArgument, maxDays, req.Days)
	}
	if req.Budget == "" {
		req.Budget = defaultBudget
	}
	if req.Season == "" {
		req.Season = defaultSeason
	}

	gen, err := s.ai.GenerateItinerary(ctx, generativeAI.NewRequest(req.Start, req.Days, req.Interests, req.Budget, req.Season))
	if err != nil {
		span.RecordError(err)
		return types.GeneratedItinerary{}, err
	}

	out := types.GeneratedItinerary{
		Itinerary: types.Itinerary{
			Start:     req.Start,
			Days:      req.Days,
			Interests: req.Interests,
			Budget:    req.Budget,
			Plan:      gen.Text,
		},
		Strategy: gen.Strategy,
	}
	if out.Itinerary.Interests == nil {
		out.Itinerary.Interests = types.Interests{}
	}
	if !req.Save {
		return out, nil
	}

	// Plans without interests cannot be stored; keep the text and say so.
	saved, err := s.SaveItinerary(ctx, token, out.Itinerary)
	if err != nil {
		l.WarnContext(ctx, "Generated itinerary was not saved", slog.Any("error", err))
		out.Notice = "Itinerary generated but not saved: " + err.Error()
		return out, nil
	}
	out.Itinerary = saved.Data
	out.Saved = true
	out.Source = saved.Source
	if saved.Notice != "" {
		out.Notice = saved.Notice
	}
	return out, nil
}
