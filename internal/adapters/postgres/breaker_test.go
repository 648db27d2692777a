package postgres

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
)

func TestGuarded_PassesThrough(t *testing.T) {
	cb := newStoreBreaker("test")

	n, err := guarded(cb, func() (int, error) { return 42, nil })
	if err != nil || n != 42 {
		t.Fatalf("expected 42, got %d, %v", n, err)
	}

	_, err = guarded(cb, func() (int, error) { return 0, domain.ErrNotFound })
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGuarded_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := newStoreBreaker("test")
	boom := errors.New("connection refused")

	for i := 0; i < breakerFailureThreshold; i++ {
		if _, err := guarded(cb, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected the store error, got %v", i, err)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", cb.State())
	}

	called := false
	_, err := guarded(cb, func() (int, error) { called = true; return 0, nil })
	if called {
		t.Error("an open breaker must not run the call")
	}
	var dse *domain.DataSourceError
	if !errors.As(err, &dse) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected DataSourceError wrapping ErrOpenState, got %v", err)
	}
}

func TestGuarded_IgnoresNotFoundAndCancellation(t *testing.T) {
	cb := newStoreBreaker("test")

	for i := 0; i < 2*breakerFailureThreshold; i++ {
		_, _ = guarded(cb, func() (int, error) { return 0, domain.ErrNotFound })
		_, _ = guarded(cb, func() (int, error) { return 0, context.Canceled })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed breaker, got %s", cb.State())
	}
}
