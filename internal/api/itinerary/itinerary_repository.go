package itinerary

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-tourist-guide/app/db"
	"github.com/FACorreiaa/go-tourist-guide/app/observability/metrics"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListItineraries(ctx context.Context) ([]types.Itinerary, error)
	SaveItinerary(ctx context.Context, it types.Itinerary) (types.Itinerary, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewRepositoryImpl(db *sql.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) ListItineraries(ctx context.Context) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "ListItineraries", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
	))
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start, days, interests, budget, plan, created_at
		FROM itineraries
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.recordError(ctx, span, "list itineraries", err)
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer rows.Close()

	out := []types.Itinerary{}
	for rows.Next() {
		var (
			it        types.Itinerary
			interests string
			created   database.Timestamp
		)
		if err := rows.Scan(&it.ID, &it.Start, &it.Days, &interests, &it.Budget, &it.Plan, &created); err != nil {
			r.recordError(ctx, span, "list itineraries", err)
			return nil, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		it.Interests = types.SplitInterests(interests)
		it.CreatedAt = created.Time
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		r.recordError(ctx, span, "list itineraries", err)
		return nil, fmt.Errorf("error iterating itinerary rows: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// SaveItinerary inserts the plan. Interests are stored comma-joined.
func (r *RepositoryImpl) SaveItinerary(ctx context.Context, it types.Itinerary) (types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("itinerary.start", it.Start),
	))
	defer span.End()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO itineraries (start, days, interests, budget, plan) VALUES (?, ?, ?, ?, ?)`,
		it.Start, it.Days, it.Interests.String(), it.Budget, it.Plan,
	)
	if err != nil {
		r.recordError(ctx, span, "save itinerary", err)
		return types.Itinerary{}, fmt.Errorf("%w: failed to save itinerary locally: %s", types.ErrPersistence, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		r.recordError(ctx, span, "save itinerary", err)
		return types.Itinerary{}, fmt.Errorf("%w: failed to read itinerary id: %s", types.ErrPersistence, err)
	}
	it.ID = id
	span.SetStatus(codes.Ok, "")
	r.logger.DebugContext(ctx, "Itinerary saved locally", slog.Int64("id", id))
	return it, nil
}

func (r *RepositoryImpl) recordError(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
	r.logger.ErrorContext(ctx, "Local storage error", slog.String("operation", op), slog.Any("error", err))
}
