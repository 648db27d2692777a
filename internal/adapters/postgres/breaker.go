package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/pkg/metrics"
)

const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 10 * time.Second
)

// newStoreBreaker trips after breakerFailureThreshold consecutive store
// failures. Missing documents and cancelled requests are not failures.
func newStoreBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("store circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.StoreBreakerState.Set(float64(to))
		},
	})
}

// guarded runs fn through cb. A rejected call is reported as a
// *domain.DataSourceError without running fn.
func guarded[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, &domain.DataSourceError{Op: "store unavailable", Err: err}
		}
		return zero, err
	}
	return v.(T), nil
}
