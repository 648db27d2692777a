package ports

import (
	"context"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// WeatherRepository reads and writes weather report documents.
type WeatherRepository interface {
	// GetReport returns domain.ErrNotFound when no report has the id.
	GetReport(ctx context.Context, id string) (*domain.WeatherReport, error)
	// ListReports returns one page of summaries and the total page count,
	// computed from a single snapshot.
	ListReports(ctx context.Context, tr domain.TimeRange, page int) (*domain.ReportPage, error)
	// StreamSeaTemperatures opens a forward-only cursor over the records that
	// satisfy pred. The caller must Close the cursor.
	StreamSeaTemperatures(ctx context.Context, pred domain.CompiledPredicate, batchSize int) (SeaTemperatureCursor, error)
	// InsertReports stores reports, skipping ids that already exist. It
	// returns the number of rows inserted.
	InsertReports(ctx context.Context, reports []domain.WeatherReport) (int, error)
}

// SeaTemperatureCursor is a lazy, finite, single-pass sequence of projected
// records. Next returns false at exhaustion or on failure; Err tells them apart.
type SeaTemperatureCursor interface {
	Next(ctx context.Context) bool
	Record() domain.RawRecord
	Err() error
	Close()
}
