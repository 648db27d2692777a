package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/usecases"
)

type mockPublisher struct {
	publishFn func(ctx context.Context, r *domain.WeatherReport) error
}

func (m *mockPublisher) PublishReport(ctx context.Context, r *domain.WeatherReport) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, r)
	}
	return nil
}

type mockSubscriber struct {
	deliver []*domain.WeatherReport
	errs    []error
}

func (m *mockSubscriber) SubscribeReports(ctx context.Context, handler func(ctx context.Context, r *domain.WeatherReport) error) error {
	for _, r := range m.deliver {
		m.errs = append(m.errs, handler(ctx, r))
	}
	return nil
}

func reports(n int) []domain.WeatherReport {
	out := make([]domain.WeatherReport, n)
	for i := range out {
		out[i].ID = fmt.Sprintf("r%04d", i)
	}
	return out
}

func TestIngestService_Load_Batches(t *testing.T) {
	var sizes []int
	repo := &mockWeatherRepo{
		insertReportsFn: func(ctx context.Context, rs []domain.WeatherReport) (int, error) {
			sizes = append(sizes, len(rs))
			return len(rs), nil
		},
	}
	in := reports(1201)
	in[7].ID = ""

	svc := usecases.NewIngestService(repo, nil, nil)
	n, err := svc.Load(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1200 {
		t.Errorf("expected 1200 inserted, got %d", n)
	}
	if len(sizes) != 3 || sizes[0] != 500 || sizes[1] != 500 || sizes[2] != 200 {
		t.Errorf("unexpected batch sizes %v", sizes)
	}
}

func TestIngestService_Load_Error(t *testing.T) {
	repo := &mockWeatherRepo{
		insertReportsFn: func(ctx context.Context, rs []domain.WeatherReport) (int, error) {
			return 0, errors.New("disk full")
		},
	}
	svc := usecases.NewIngestService(repo, nil, nil)
	if _, err := svc.Load(context.Background(), reports(3)); err == nil {
		t.Fatal("expected error")
	}
}

func TestIngestService_Publish(t *testing.T) {
	var ids []string
	pub := &mockPublisher{publishFn: func(ctx context.Context, r *domain.WeatherReport) error {
		ids = append(ids, r.ID)
		return nil
	}}
	svc := usecases.NewIngestService(&mockWeatherRepo{}, pub, nil)
	n, err := svc.Publish(context.Background(), reports(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 || ids[3] != "r0003" {
		t.Errorf("unexpected publish result n=%d ids=%v", n, ids)
	}
}

func TestIngestService_Publish_NoPublisher(t *testing.T) {
	svc := usecases.NewIngestService(&mockWeatherRepo{}, nil, nil)
	if _, err := svc.Publish(context.Background(), reports(1)); err == nil {
		t.Fatal("expected error without publisher")
	}
}

func TestIngestService_Consume(t *testing.T) {
	var stored []string
	repo := &mockWeatherRepo{
		insertReportsFn: func(ctx context.Context, rs []domain.WeatherReport) (int, error) {
			for _, r := range rs {
				stored = append(stored, r.ID)
			}
			return len(rs), nil
		},
	}
	sub := &mockSubscriber{deliver: []*domain.WeatherReport{{ID: "a"}, {}, {ID: "b"}}}
	svc := usecases.NewIngestService(repo, nil, sub)
	if err := svc.Consume(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 2 || stored[0] != "a" || stored[1] != "b" {
		t.Errorf("unexpected stored ids %v", stored)
	}
	for i, err := range sub.errs {
		if err != nil {
			t.Errorf("delivery %d: unexpected handler error %v", i, err)
		}
	}
}
