package feedback

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	"github.com/FACorreiaa/go-tourist-guide/internal/api/fallback"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
	"github.com/FACorreiaa/go-tourist-guide/internal/validators"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	LoadFeedback(ctx context.Context, token string) (types.Result[[]types.Feedback], error)
	SaveFeedback(ctx context.Context, token string, f types.Feedback) (types.Result[types.Feedback], error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	remote   corpus.API
	endpoint string
}

func NewServiceImpl(repo Repository, remote corpus.API, endpoint string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, remote: remote, endpoint: endpoint}
}

func (s *ServiceImpl) LoadFeedback(ctx context.Context, token string) (types.Result[[]types.Feedback], error) {
	ctx, span := otel.Tracer("FeedbackService").Start(ctx, "LoadFeedback")
	defer span.End()

	var remote fallback.Op[[]types.Feedback]
	if s.remote != nil {
		remote = func(ctx context.Context) ([]types.Feedback, error) {
			raw, err := s.remote.Get(ctx, s.endpoint, token, nil)
			if err != nil {
				return nil, err
			}
			records := corpus.Records(raw)
			out := make([]types.Feedback, 0, len(records))
			for _, rec := range records {
				out = append(out, types.FeedbackFromRecord(rec))
			}
			return out, nil
		}
	}
	local := func(ctx context.Context) ([]types.Feedback, error) {
		out, err := s.repo.ListFeedback(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to load local feedback", slog.Any("error", err))
			return []types.Feedback{}, nil
		}
		return out, nil
	}
	return fallback.Run(ctx, s.logger, "load feedback", remote, local)
}

func (s *ServiceImpl) SaveFeedback(ctx context.Context, token string, f types.Feedback) (types.Result[types.Feedback], error) {
	ctx, span := otel.Tracer("FeedbackService").Start(ctx, "SaveFeedback")
	defer span.End()

	if err := validators.ValidateFeedback(f); err != nil {
		return types.Result[types.Feedback]{}, err
	}
	if f.Sentiment == "" {
		f.Sentiment = types.DefaultSentiment
	}

	var remote fallback.Op[types.Feedback]
	if s.remote != nil {
		remote = func(ctx context.Context) (types.Feedback, error) {
			if _, err := s.remote.Post(ctx, s.endpoint, token, f); err != nil {
				return types.Feedback{}, err
			}
			return f, nil
		}
	}
	local := func(ctx context.Context) (types.Feedback, error) {
		return s.repo.SaveFeedback(ctx, f)
	}
	return fallback.Run(ctx, s.logger, "save feedback", remote, local)
}
