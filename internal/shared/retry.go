package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Retry runs an operation up to Attempts times with a fixed Delay between
// failures. It is used once at startup, before the listener opens.
type Retry struct {
	Name     string
	Attempts int
	Delay    time.Duration

	attempt int
	lastErr error
}

// Attempt reports how many times the operation has been tried.
func (r *Retry) Attempt() int { return r.attempt }

// Run calls op until it succeeds, the attempt budget is spent, or ctx ends.
func (r *Retry) Run(ctx context.Context, op func(context.Context) error) error {
	if r.Attempts < 1 {
		r.Attempts = 1
	}
	for r.attempt < r.Attempts {
		r.attempt++
		if r.lastErr = op(ctx); r.lastErr == nil {
			log.Info().Str("op", r.Name).Int("attempt", r.attempt).Msg("startup step ok")
			return nil
		}
		log.Warn().Err(r.lastErr).
			Str("op", r.Name).
			Int("attempt", r.attempt).
			Int("max", r.Attempts).
			Dur("retry_in", r.Delay).
			Msg("startup step failed")
		if r.attempt == r.Attempts {
			break
		}
		t := time.NewTimer(r.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", r.Name, r.attempt, r.lastErr)
}
