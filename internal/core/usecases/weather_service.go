package usecases

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/ports"
	"github.com/marinewx/seatemp/internal/pkg/metrics"
)

// reportCacheTTL is how long a report document stays cached. Reports are
// immutable once stored.
const reportCacheTTL = 600

// WeatherService serves individual reports and paginated summaries.
type WeatherService struct {
	weather ports.WeatherRepository
	cache   ports.CacheService
}

// NewWeatherService creates a new WeatherService. cache may be nil.
func NewWeatherService(weather ports.WeatherRepository, cache ports.CacheService) *WeatherService {
	return &WeatherService{weather: weather, cache: cache}
}

// GetReport returns the full report document.
func (s *WeatherService) GetReport(ctx context.Context, id string) (*domain.WeatherReport, error) {
	if id == "" {
		return nil, &domain.ValidationError{Message: "id must not be empty."}
	}

	ctx, span := tracer.Start(ctx, "WeatherService.GetReport")
	defer span.End()

	cacheKey := "weather:report:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var r domain.WeatherReport
			if err := json.Unmarshal(data, &r); err == nil {
				metrics.CacheHits.WithLabelValues("report").Inc()
				return &r, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("report").Inc()
	}

	r, err := s.weather.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(r); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, reportCacheTTL)
		}
	}
	return r, nil
}

// ListReports returns one page of report summaries, ReportPageSize per page.
func (s *WeatherService) ListReports(ctx context.Context, tr domain.TimeRange, page int) (*domain.ReportPage, error) {
	if page < 0 {
		return nil, &domain.ValidationError{Message: "page must not be negative."}
	}
	if page > domain.MaxReportPage {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("page must not be greater than %d.", domain.MaxReportPage)}
	}
	if tr.From != nil && tr.To != nil && tr.From.After(*tr.To) {
		return nil, &domain.ValidationError{Message: "from must not be after to."}
	}

	ctx, span := tracer.Start(ctx, "WeatherService.ListReports")
	defer span.End()

	p, err := s.weather.ListReports(ctx, tr, page)
	if err != nil {
		return nil, fmt.Errorf("list reports page %d: %w", page, err)
	}
	return p, nil
}
