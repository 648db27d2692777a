package usecases

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/ports"
)

var tracer = otel.Tracer("github.com/marinewx/seatemp/internal/core/usecases")

// SeaTemperatureService streams sea surface temperatures matching a spatial filter.
type SeaTemperatureService struct {
	weather   ports.WeatherRepository
	batchSize int
}

// NewSeaTemperatureService creates a new SeaTemperatureService. A non-positive
// batchSize falls back to domain.DefaultBatchSize.
func NewSeaTemperatureService(weather ports.WeatherRepository, batchSize int) *SeaTemperatureService {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &SeaTemperatureService{weather: weather, batchSize: batchSize}
}

// BatchSize returns the number of points per emitted batch.
func (s *SeaTemperatureService) BatchSize() int { return s.batchSize }

// Stream pulls matching records in cursor order and hands each batch to emit.
// An emit error stops consumption and is returned unchanged. Store failures
// are returned as *domain.DataSourceError; batches already emitted stay emitted.
// The cursor is closed on every return path.
func (s *SeaTemperatureService) Stream(ctx context.Context, filter domain.SpatialFilter, emit func(domain.SeaTemperatureBatch) error) (err error) {
	ctx, span := tracer.Start(ctx, "SeaTemperatureService.Stream")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	pred := domain.CompilePredicate(filter)
	span.SetAttributes(
		attribute.Int("predicate.regions", len(pred.Regions)),
		attribute.Int("batch.size", s.batchSize),
	)

	cursor, err := s.weather.StreamSeaTemperatures(ctx, pred, s.batchSize)
	if err != nil {
		return asDataSourceError("open cursor", err)
	}
	defer cursor.Close()

	emitted := 0
	b := newBatcher(s.batchSize, func(batch domain.SeaTemperatureBatch) error {
		emitted++
		return emit(batch)
	})

	for cursor.Next(ctx) {
		if err := b.add(cursor.Record()); err != nil {
			span.SetAttributes(attribute.Int("batches", emitted))
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return asDataSourceError("fetch", err)
	}
	if err := b.flush(); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("batches", emitted))
	return nil
}

func asDataSourceError(op string, err error) error {
	var dse *domain.DataSourceError
	if errors.As(err, &dse) {
		return err
	}
	return &domain.DataSourceError{Op: op, Err: err}
}
