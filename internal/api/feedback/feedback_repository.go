package feedback

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
	ListFeedback(ctx context.Context) ([]types.Feedback, error)
	SaveFeedback(ctx context.Context, f types.Feedback) (types.Feedback, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewRepositoryImpl(db *sql.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

// ListFeedback returns the newest feedback first.
func (r *RepositoryImpl) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	ctx, span := otel.Tracer("FeedbackRepository").Start(ctx, "ListFeedback", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
	))
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, place, feedback, COALESCE(sentiment, ''), created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.recordError(ctx, span, "list feedback", err)
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	out := []types.Feedback{}
	for rows.Next() {
		var (
			f       types.Feedback
			created database.Timestamp
		)
		if err := rows.Scan(&f.ID, &f.Place, &f.Feedback, &f.Sentiment, &created); err != nil {
			r.recordError(ctx, span, "list feedback", err)
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		f.CreatedAt = created.Time
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		r.recordError(ctx, span, "list feedback", err)
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// SaveFeedback inserts feedback and returns it with the assigned id.
func (r *RepositoryImpl) SaveFeedback(ctx context.Context, f types.Feedback) (types.Feedback, error) {
	ctx, span := otel.Tracer("FeedbackRepository").Start(ctx, "SaveFeedback", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
	))
	defer span.End()

	if f.Sentiment == "" {
		f.Sentiment = types.DefaultSentiment
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (place, feedback, sentiment) VALUES (?, ?, ?)`,
		f.Place, f.Feedback, f.Sentiment,
	)
	if err != nil {
		r.recordError(ctx, span, "save feedback", err)
		return types.Feedback{}, fmt.Errorf("%w: failed to save feedback locally: %s", types.ErrPersistence, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		r.recordError(ctx, span, "save feedback", err)
		return types.Feedback{}, fmt.Errorf("%w: failed to read feedback id: %s", types.ErrPersistence, err)
	}
	f.ID = id
	span.SetAttributes(attribute.Int64("feedback.id", id))
	span.SetStatus(codes.Ok, "")
	return f, nil
}

func (r *RepositoryImpl) recordError(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
	r.logger.ErrorContext(ctx, "Local storage error", slog.String("operation", op), slog.Any("error", err))
}
