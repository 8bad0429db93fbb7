package generativeAI

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-tourist-guide/app/observability/metrics"
	"github.com/FACorreiaa/go-tourist-guide/config"
)

var _ Service = (*ServiceImpl)(nil)

// Generation is generated itinerary text and the strategy that produced it.
type Generation struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
}

type Service interface {
	GenerateItinerary(ctx context.Context, req Request) (Generation, error)
}

// ServiceImpl runs the strategies in order until one returns text. The
// template tier is appended when the configured chain lacks it. Each model
// tier runs under tierTimeout, which must stay below the request deadline.
type ServiceImpl struct {
	strategies  []Strategy
	cache       *cache.Cache
	tierTimeout time.Duration
	logger      *slog.Logger
}

const defaultTierTimeout = 20 * time.Second

func NewServiceImpl(strategies []Strategy, cacheTTL, tierTimeout time.Duration, logger *slog.Logger) *ServiceImpl {
	if len(strategies) == 0 || strategies[len(strategies)-1].Name() != StrategyTemplate {
		strategies = append(strategies, Template{})
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	if tierTimeout <= 0 {
		tierTimeout = defaultTierTimeout
	}
	return &ServiceImpl{
		strategies:  strategies,
		cache:       cache.New(cacheTTL, 2*cacheTTL),
		tierTimeout: tierTimeout,
		logger:      logger,
	}
}

// NewServiceFromConfig builds the chain: hosted inference and Gemini when
// enabled, then the local model when local_fallback is on, then the
// template. The local model is probed once here; if the probe fails it is
// left out of the chain.
func NewServiceFromConfig(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (*ServiceImpl, error) {
	var strategies []Strategy
	if cfg.UseHFInference {
		strategies = append(strategies, NewHostedInference(cfg.HFBaseURL, cfg.ModelName, cfg.HFAPIKey))
	}
	if cfg.UseGemini {
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, g)
	}
	if cfg.LocalFallback {
		local := NewLocalModel(cfg.LocalBaseURL, cfg.LocalModel)
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if local.Load(probeCtx, logger) {
			strategies = append(strategies, local)
		}
		cancel()
	}
	return NewServiceImpl(strategies, cfg.CacheTTL, cfg.TierTimeout, logger), nil
}

// Strategies lists the chain in the order it is tried.
func (s *ServiceImpl) Strategies() []string {
	names := make([]string, len(s.strategies))
	for i, st := range s.strategies {
		names[i] = st.Name()
	}
	return names
}

func (s *ServiceImpl) GenerateItinerary(ctx context.Context, req Request) (Generation, error) {
	ctx, span := otel.Tracer("GenerativeAIService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("itinerary.location", req.Location),
		attribute.Int("itinerary.days", req.Days),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateItinerary"))
	if req.Prompt == "" {
		req.Prompt = BuildPrompt(req.Location, req.Days, req.Interests, req.Budget, req.Season)
	}

	if cached, found := s.cache.Get(req.Prompt); found {
		if gen, ok := cached.(Generation); ok {
			l.DebugContext(ctx, "Serving cached itinerary", slog.String("strategy", gen.Strategy))
			span.SetAttributes(attribute.Bool("itinerary.cached", true))
			return gen, nil
		}
	}

	for _, strategy := range s.strategies {
		if strategy.Name() == StrategyTemplate {
			break
		}
		if ctx.Err() != nil {
			l.WarnContext(ctx, "Request context done, skipping to template", slog.Any("error", ctx.Err()))
			span.RecordError(ctx.Err())
			break
		}

		text, err := s.runTier(ctx, strategy, req)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				l.DebugContext(ctx, "Strategy unavailable, skipping", slog.String("strategy", strategy.Name()))
			} else {
				l.WarnContext(ctx, "Generation failed, trying next strategy",
					slog.String("strategy", strategy.Name()),
					slog.Any("error", err),
				)
				span.RecordError(err)
			}
			continue
		}

		gen := Generation{Text: text, Strategy: strategy.Name()}
		s.cache.Set(req.Prompt, gen, cache.DefaultExpiration)
		s.record(ctx, span, l, gen)
		return gen, nil
	}

	// The template ignores the context, so it still answers after a deadline.
	text, _ := Template{}.Generate(ctx, req)
	gen := Generation{Text: text, Strategy: StrategyTemplate}
	s.record(ctx, span, l, gen)
	return gen, nil
}

func (s *ServiceImpl) runTier(ctx context.Context, strategy Strategy, req Request) (string, error) {
	tierCtx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	defer cancel()
	return strategy.Generate(tierCtx, req)
}

func (s *ServiceImpl) record(ctx context.Context, span trace.Span, l *slog.Logger, gen Generation) {
	metrics.Get().ItineraryGenerationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", gen.Strategy)))
	span.SetAttributes(attribute.String("itinerary.strategy", gen.Strategy))
	span.SetStatus(codes.Ok, "")
	l.InfoContext(ctx, "Itinerary generated", slog.String("strategy", gen.Strategy))
}
