package poi

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

// Repository is the local place store.
type Repository interface {
	ListPlaces(ctx context.Context) ([]types.Place, error)
	SavePlace(ctx context.Context, place types.Place) (types.Place, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewRepositoryImpl(db *sql.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

func (r *RepositoryImpl) ListPlaces(ctx context.Context) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlaceRepository").Start(ctx, "ListPlaces", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	query := `
		SELECT id, name, COALESCE(district, ''), COALESCE(category, ''), COALESCE(season, ''),
		       COALESCE(description, ''), lat, lon, COALESCE(image_url, ''), created_at
		FROM places
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.recordError(ctx, span, "select places", err)
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	places := []types.Place{}
	for rows.Next() {
		var (
			p        types.Place
			lat, lon sql.NullFloat64
			created  database.Timestamp
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.District, &p.Category, &p.Season,
			&p.Description, &lat, &lon, &p.ImageURL, &created); err != nil {
			r.recordError(ctx, span, "scan place", err)
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		if lat.Valid {
			p.Latitude = &lat.Float64
		}
		if lon.Valid {
			p.Longitude = &lon.Float64
		}
		p.CreatedAt = created.Time
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		r.recordError(ctx, span, "iterate places", err)
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}

	span.SetAttributes(attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "")
	return places, nil
}

// SavePlace inserts or replaces the place keyed by its id, deriving the id
// from the name when it is empty.
func (r *RepositoryImpl) SavePlace(ctx context.Context, place types.Place) (types.Place, error) {
	ctx, span := otel.Tracer("PlaceRepository").Start(ctx, "SavePlace", trace.WithAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT OR REPLACE"),
	))
	defer span.End()

	place.ID = types.PlaceID(place)
	if place.Season == "" {
		place.Season = types.DefaultSeason
	}

	query := `
		INSERT OR REPLACE INTO places
			(id, name, district, category, season, description, lat, lon, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		place.ID, place.Name, place.District, place.Category, place.Season,
		place.Description, nullFloat(place.Latitude), nullFloat(place.Longitude), place.ImageURL,
	)
	if err != nil {
		r.recordError(ctx, span, "save place", err)
		return types.Place{}, fmt.Errorf("%w: failed to save place locally: %s", types.ErrPersistence, err)
	}

	span.SetAttributes(attribute.String("place.id", place.ID))
	span.SetStatus(codes.Ok, "")
	r.logger.DebugContext(ctx, "Place saved locally", slog.String("id", place.ID))
	return place, nil
}

func (r *RepositoryImpl) recordError(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
	r.logger.ErrorContext(ctx, "Local storage error", slog.String("operation", op), slog.Any("error", err))
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
