package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/ports"
	"github.com/marinewx/seatemp/internal/pkg/metrics"
)

// IngestBatchSize is the number of reports written per store round trip.
const IngestBatchSize = 500

// IngestService loads reports into the store, directly or through the broker.
type IngestService struct {
	weather ports.WeatherRepository
	pub     ports.ReportPublisher
	sub     ports.ReportSubscriber
}

// NewIngestService creates a new IngestService. pub and sub may be nil when
// the broker path is not used.
func NewIngestService(weather ports.WeatherRepository, pub ports.ReportPublisher, sub ports.ReportSubscriber) *IngestService {
	return &IngestService{weather: weather, pub: pub, sub: sub}
}

// Load writes reports in batches of IngestBatchSize. Reports without an id
// are skipped; existing ids are left untouched.
func (s *IngestService) Load(ctx context.Context, reports []domain.WeatherReport) (int, error) {
	valid := make([]domain.WeatherReport, 0, len(reports))
	for _, r := range reports {
		if r.ID == "" {
			continue
		}
		valid = append(valid, r)
	}

	inserted := 0
	for start := 0; start < len(valid); start += IngestBatchSize {
		end := min(start+IngestBatchSize, len(valid))
		n, err := s.weather.InsertReports(ctx, valid[start:end])
		if err != nil {
			return inserted, fmt.Errorf("insert reports %d-%d: %w", start, end, err)
		}
		metrics.ReportsIngested.WithLabelValues("file").Add(float64(n))
		inserted += n
	}
	return inserted, nil
}

// Publish sends every report with an id to the broker.
func (s *IngestService) Publish(ctx context.Context, reports []domain.WeatherReport) (int, error) {
	if s.pub == nil {
		return 0, fmt.Errorf("no report publisher configured")
	}
	sent := 0
	for i := range reports {
		if reports[i].ID == "" {
			continue
		}
		if err := s.pub.PublishReport(ctx, &reports[i]); err != nil {
			return sent, fmt.Errorf("publish report %s: %w", reports[i].ID, err)
		}
		sent++
	}
	return sent, nil
}

// Consume registers a handler that stores reports delivered by the broker.
// Delivery continues in the background until the subscriber is closed.
func (s *IngestService) Consume(ctx context.Context) error {
	if s.sub == nil {
		return fmt.Errorf("no report subscriber configured")
	}
	return s.sub.SubscribeReports(ctx, func(ctx context.Context, r *domain.WeatherReport) error {
		if r.ID == "" {
			slog.Warn("dropping report without id")
			return nil
		}
		n, err := s.weather.InsertReports(ctx, []domain.WeatherReport{*r})
		if err != nil {
			return fmt.Errorf("store report %s: %w", r.ID, err)
		}
		metrics.ReportsIngested.WithLabelValues("nats").Add(float64(n))
		return nil
	})
}
