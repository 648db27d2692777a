package usecases_test

import (
	"context"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/ports"
)

// --- Mock WeatherRepository ---

type mockWeatherRepo struct {
	getReportFn     func(ctx context.Context, id string) (*domain.WeatherReport, error)
	listReportsFn   func(ctx context.Context, tr domain.TimeRange, page int) (*domain.ReportPage, error)
	streamFn        func(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error)
	insertReportsFn func(ctx context.Context, reports []domain.WeatherReport) (int, error)
}

func (m *mockWeatherRepo) GetReport(ctx context.Context, id string) (*domain.WeatherReport, error) {
	if m.getReportFn != nil {
		return m.getReportFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockWeatherRepo) ListReports(ctx context.Context, tr domain.TimeRange, page int) (*domain.ReportPage, error) {
	if m.listReportsFn != nil {
		return m.listReportsFn(ctx, tr, page)
	}
	return &domain.ReportPage{Reports: []domain.ReportSummary{}, Page: page}, nil
}

func (m *mockWeatherRepo) StreamSeaTemperatures(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
	if m.streamFn != nil {
		return m.streamFn(ctx, pred, batchSize)
	}
	return &mockCursor{}, nil
}

func (m *mockWeatherRepo) InsertReports(ctx context.Context, reports []domain.WeatherReport) (int, error) {
	if m.insertReportsFn != nil {
		return m.insertReportsFn(ctx, reports)
	}
	return len(reports), nil
}

// --- Mock cursor ---

// mockCursor yields records in order, then fails with failAfterErr if set.
type mockCursor struct {
	records      []domain.RawRecord
	failAfterErr error

	pos    int
	err    error
	closed int
	pulled int
}

func (c *mockCursor) Next(ctx context.Context) bool {
	if c.pos < len(c.records) {
		c.pos++
		c.pulled++
		return true
	}
	c.err = c.failAfterErr
	return false
}

func (c *mockCursor) Record() domain.RawRecord { return c.records[c.pos-1] }
func (c *mockCursor) Err() error               { return c.err }
func (c *mockCursor) Close()                   { c.closed++ }

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func temp(v float64) *float64 { return &v }

func rec(lon, lat float64, t *float64) domain.RawRecord {
	return domain.RawRecord{Longitude: lon, Latitude: lat, SeaSurfaceTemperature: t}
}
