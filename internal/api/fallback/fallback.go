package fallback

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-tourist-guide/app/observability/metrics"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// Op is one side of a storage operation.
type Op[T any] func(ctx context.Context) (T, error)

// Run executes remote and, when it fails, local for this call only. A nil
// remote means the remote API is disabled and local runs directly. Local
// errors are returned as is.
func Run[T any](ctx context.Context, logger *slog.Logger, op string, remote, local Op[T]) (types.Result[T], error) {
	ctx, span := otel.Tracer("Fallback").Start(ctx, op, trace.WithAttributes(
		attribute.Bool("fallback.remote_enabled", remote != nil),
	))
	defer span.End()

	if remote != nil {
		data, err := remote(ctx)
		if err == nil {
			span.SetAttributes(attribute.String("fallback.source", string(types.SourceRemote)))
			return types.Result[T]{Data: data, Source: types.SourceRemote}, nil
		}

		logger.WarnContext(ctx, "Remote API failed, using local store",
			slog.String("operation", op),
			slog.Any("error", err),
		)
		span.RecordError(err)
		metrics.Get().StorageFallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))

		data, err = local(ctx)
		if err != nil {
			return types.Result[T]{}, err
		}
		span.SetAttributes(attribute.String("fallback.source", string(types.SourceLocal)))
		return types.Result[T]{
			Data:   data,
			Source: types.SourceLocal,
			Notice: fmt.Sprintf("Remote API unavailable; %s used local data.", op),
		}, nil
	}

	data, err := local(ctx)
	if err != nil {
		return types.Result[T]{}, err
	}
	span.SetAttributes(attribute.String("fallback.source", string(types.SourceLocal)))
	return types.Result[T]{Data: data, Source: types.SourceLocal}, nil
}
