package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/ports"
	"github.com/marinewx/seatemp/internal/core/usecases"
)

func collect(batches *[]domain.SeaTemperatureBatch) func(domain.SeaTemperatureBatch) error {
	return func(b domain.SeaTemperatureBatch) error {
		*batches = append(*batches, b)
		return nil
	}
}

func TestSeaTemperatureService_Stream_Batches(t *testing.T) {
	cur := &mockCursor{}
	for i := 0; i < 23; i++ {
		cur.records = append(cur.records, rec(float64(i), 1, temp(float64(i))))
	}
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			if batchSize != 10 {
				t.Errorf("expected batch size 10, got %d", batchSize)
			}
			return cur, nil
		},
	}

	var batches []domain.SeaTemperatureBatch
	svc := usecases.NewSeaTemperatureService(repo, 0)
	if err := svc.Stream(context.Background(), nil, collect(&batches)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sizes := []int{10, 10, 3}
	if len(batches) != len(sizes) {
		t.Fatalf("expected %d batches, got %d", len(sizes), len(batches))
	}
	for i, n := range sizes {
		if len(batches[i]) != n {
			t.Errorf("batch %d: expected %d points, got %d", i, n, len(batches[i]))
		}
	}
	if batches[2][2].Lon != 22 {
		t.Errorf("expected cursor order preserved, last lon=%v", batches[2][2].Lon)
	}
	if cur.closed != 1 {
		t.Errorf("expected cursor closed once, got %d", cur.closed)
	}
}

func TestSeaTemperatureService_Stream_ExactMultipleHasNoTrailingBatch(t *testing.T) {
	cur := &mockCursor{}
	for i := 0; i < 20; i++ {
		cur.records = append(cur.records, rec(float64(i), 0, temp(1)))
	}
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			return cur, nil
		},
	}

	var batches []domain.SeaTemperatureBatch
	svc := usecases.NewSeaTemperatureService(repo, 10)
	if err := svc.Stream(context.Background(), nil, collect(&batches)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
}

func TestSeaTemperatureService_Stream_DedupeAndDropMissing(t *testing.T) {
	cur := &mockCursor{records: []domain.RawRecord{
		rec(1, 2, temp(10)),
		rec(1, 2, temp(99)),
		rec(3, 4, nil),
		rec(3, 4, temp(12)),
		rec(5, 6, temp(13)),
	}}
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			return cur, nil
		},
	}

	var batches []domain.SeaTemperatureBatch
	svc := usecases.NewSeaTemperatureService(repo, 10)
	if err := svc.Stream(context.Background(), nil, collect(&batches)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	want := domain.SeaTemperatureBatch{
		{Lon: 1, Lat: 2, Temp: 10},
		{Lon: 3, Lat: 4, Temp: 12},
		{Lon: 5, Lat: 6, Temp: 13},
	}
	for i := range want {
		if batches[0][i] != want[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], batches[0][i])
		}
	}
}

func TestSeaTemperatureService_Stream_Empty(t *testing.T) {
	repo := &mockWeatherRepo{}
	called := false
	svc := usecases.NewSeaTemperatureService(repo, 10)
	err := svc.Stream(context.Background(), nil, func(domain.SeaTemperatureBatch) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("emit must not be called for an empty result")
	}
}

func TestSeaTemperatureService_Stream_CompilesFilter(t *testing.T) {
	var got domain.CompiledPredicate
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			got = pred
			return &mockCursor{}, nil
		},
	}
	svc := usecases.NewSeaTemperatureService(repo, 10)
	box := domain.BoundingBox{North: 10, South: -10, East: -170, West: 170}
	if err := svc.Stream(context.Background(), box, collect(new([]domain.SeaTemperatureBatch))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Regions) != 2 {
		t.Errorf("expected split predicate with 2 regions, got %d", len(got.Regions))
	}
}

func TestSeaTemperatureService_Stream_OpenFailure(t *testing.T) {
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			return nil, errors.New("connection refused")
		},
	}
	called := false
	svc := usecases.NewSeaTemperatureService(repo, 10)
	err := svc.Stream(context.Background(), nil, func(domain.SeaTemperatureBatch) error {
		called = true
		return nil
	})

	var dse *domain.DataSourceError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if dse.Op != "open cursor" {
		t.Errorf("expected op 'open cursor', got %q", dse.Op)
	}
	if called {
		t.Error("no batch may be emitted when the cursor fails to open")
	}
}

func TestSeaTemperatureService_Stream_MidStreamFailure(t *testing.T) {
	cur := &mockCursor{failAfterErr: errors.New("connection reset")}
	for i := 0; i < 15; i++ {
		cur.records = append(cur.records, rec(float64(i), 0, temp(1)))
	}
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			return cur, nil
		},
	}

	var batches []domain.SeaTemperatureBatch
	svc := usecases.NewSeaTemperatureService(repo, 10)
	err := svc.Stream(context.Background(), nil, collect(&batches))

	var dse *domain.DataSourceError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if len(batches) != 1 {
		t.Errorf("expected the first full batch to stay emitted, got %d batches", len(batches))
	}
	if cur.closed != 1 {
		t.Errorf("expected cursor closed once, got %d", cur.closed)
	}
}

func TestSeaTemperatureService_Stream_EmitFailureStopsConsumption(t *testing.T) {
	cur := &mockCursor{}
	for i := 0; i < 100; i++ {
		cur.records = append(cur.records, rec(float64(i), 0, temp(1)))
	}
	repo := &mockWeatherRepo{
		streamFn: func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
			return cur, nil
		},
	}

	broken := errors.New("broken pipe")
	calls := 0
	svc := usecases.NewSeaTemperatureService(repo, 10)
	err := svc.Stream(context.Background(), nil, func(domain.SeaTemperatureBatch) error {
		calls++
		if calls == 2 {
			return broken
		}
		return nil
	})
	if !errors.Is(err, broken) {
		t.Fatalf("expected emit error to propagate, got %v", err)
	}
	if cur.pulled != 20 {
		t.Errorf("expected consumption to stop after 20 records, pulled %d", cur.pulled)
	}
	if cur.closed != 1 {
		t.Errorf("expected cursor closed once, got %d", cur.closed)
	}
}
