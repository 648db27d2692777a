package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/ports"
)

// WeatherRepo implements ports.WeatherRepository with pgx on PostGIS. Every
// call goes through one circuit breaker, so a store outage fails fast.
type WeatherRepo struct {
	provider *Provider
	cb       *gobreaker.CircuitBreaker[any]
}

// NewWeatherRepo creates a new WeatherRepo.
func NewWeatherRepo(provider *Provider) *WeatherRepo {
	return &WeatherRepo{provider: provider, cb: newStoreBreaker("weather_reports")}
}

// GetReport returns the stored document for id.
func (r *WeatherRepo) GetReport(ctx context.Context, id string) (*domain.WeatherReport, error) {
	return guarded(r.cb, func() (*domain.WeatherReport, error) { return r.getReport(ctx, id) })
}

// ListReports computes the total count and the requested page in one
// statement, so both come from the same snapshot.
func (r *WeatherRepo) ListReports(ctx context.Context, tr domain.TimeRange, page int) (*domain.ReportPage, error) {
	return guarded(r.cb, func() (*domain.ReportPage, error) { return r.listReports(ctx, tr, page) })
}

// StreamSeaTemperatures opens a server-side cursor over the matching records.
// Only opening the cursor is guarded; fetch errors surface through the cursor.
func (r *WeatherRepo) StreamSeaTemperatures(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
	return guarded(r.cb, func() (ports.SeaTemperatureCursor, error) { return r.openCursor(ctx, pred, batchSize) })
}

// InsertReports inserts many reports using pgx.Batch. Existing ids are skipped.
func (r *WeatherRepo) InsertReports(ctx context.Context, reports []domain.WeatherReport) (int, error) {
	return guarded(r.cb, func() (int, error) { return r.insertReports(ctx, reports) })
}

func (r *WeatherRepo) getReport(ctx context.Context, id string) (*domain.WeatherReport, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, &domain.DataSourceError{Op: "connect", Err: err}
	}

	var doc []byte
	err = db.Pool.QueryRow(ctx, `SELECT doc FROM weather_reports WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}

	var report domain.WeatherReport
	if err := json.Unmarshal(doc, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	report.ID = id
	return &report, nil
}

func (r *WeatherRepo) listReports(ctx context.Context, tr domain.TimeRange, page int) (*domain.ReportPage, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, &domain.DataSourceError{Op: "connect", Err: err}
	}

	rows, err := db.Pool.Query(ctx, `
		WITH matched AS (
			SELECT id, ts, sea_surface_temperature, air_temperature
			FROM weather_reports
			WHERE ($1::timestamptz IS NULL OR ts >= $1)
			  AND ($2::timestamptz IS NULL OR ts <= $2)
		), page AS (
			SELECT * FROM matched ORDER BY id OFFSET $3 LIMIT $4
		)
		SELECT t.total, page.id, page.ts, page.sea_surface_temperature, page.air_temperature
		FROM (SELECT count(*) AS total FROM matched) t
		LEFT JOIN page ON true
		ORDER BY page.id
	`, tr.From, tr.To, page*domain.ReportPageSize, domain.ReportPageSize)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var total int64
	reports := make([]domain.ReportSummary, 0, domain.ReportPageSize)
	for rows.Next() {
		var (
			id  *string
			ts  *time.Time
			sst *float64
			air *float64
		)
		if err := rows.Scan(&total, &id, &ts, &sst, &air); err != nil {
			return nil, fmt.Errorf("scan report summary: %w", err)
		}
		if id == nil {
			continue
		}
		s := domain.ReportSummary{ID: *id, SeaSurfaceTemperature: sst, AirTemperature: air}
		if ts != nil {
			s.TS = *ts
		}
		reports = append(reports, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return &domain.ReportPage{
		Reports:    reports,
		Page:       page,
		TotalPages: domain.TotalPages(int(total), domain.ReportPageSize),
	}, nil
}

func (r *WeatherRepo) openCursor(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (ports.SeaTemperatureCursor, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, &domain.DataSourceError{Op: "connect", Err: err}
	}
	cur, err := openSeaTemperatureCursor(ctx, db.Pool, pred, batchSize)
	if err != nil {
		return nil, &domain.DataSourceError{Op: "open cursor", Err: err}
	}
	return cur, nil
}

func (r *WeatherRepo) insertReports(ctx context.Context, reports []domain.WeatherReport) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return 0, &domain.DataSourceError{Op: "connect", Err: err}
	}

	batch := &pgx.Batch{}
	for i := range reports {
		rep := &reports[i]
		doc, err := json.Marshal(rep)
		if err != nil {
			return 0, fmt.Errorf("encode report %s: %w", rep.ID, err)
		}
		var lon, lat *float64
		if x, ok := rep.Position.Lon(); ok {
			y, _ := rep.Position.Lat()
			lon, lat = &x, &y
		}
		batch.Queue(`
			INSERT INTO weather_reports (id, ts, position, sea_surface_temperature, air_temperature, doc)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3::float8, $4::float8), 4326), $5, $6, $7::jsonb)
			ON CONFLICT (id) DO NOTHING
		`, rep.ID, rep.TS, lon, lat,
			domain.MeasurementValue(rep.SeaSurfaceTemperature),
			domain.MeasurementValue(rep.AirTemperature),
			string(doc))
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	inserted := 0
	for range reports {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
