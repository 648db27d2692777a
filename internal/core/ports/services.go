package ports

import (
	"context"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// ReportPublisher publishes incoming reports to a message broker.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *domain.WeatherReport) error
}

// ReportSubscriber delivers reports from a message broker. A handler error
// leaves the message unacknowledged for redelivery.
type ReportSubscriber interface {
	SubscribeReports(ctx context.Context, handler func(ctx context.Context, report *domain.WeatherReport) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
