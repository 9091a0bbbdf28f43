package shared_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/shared"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	r := &shared.Retry{Name: "db", Attempts: 10, Delay: time.Millisecond}
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if calls != 3 || r.Attempt() != 3 {
		t.Fatalf("expected 3 attempts, got calls=%d attempt=%d", calls, r.Attempt())
	}
}

func TestRetry_GivesUpAfterBudget(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	r := &shared.Retry{Name: "db", Attempts: 4, Delay: time.Millisecond}
	err := r.Run(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &shared.Retry{Name: "db", Attempts: 10, Delay: time.Hour}
	err := r.Run(ctx, func(context.Context) error {
		cancel()
		return errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.Attempt() != 1 {
		t.Fatalf("expected 1 attempt, got %d", r.Attempt())
	}
}
