package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/events"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
)

// notifier consumes booking.confirmed and logs one line per confirmation.
func main() {
	cfg, err := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if err != nil && !errors.Is(err, shared.ErrMissingSecret) {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.RabbitURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", events.BookingConfirmedQueue).Msg("notifier starting")
	err = events.ConsumeBookings(ctx, cfg.RabbitURL, func(ctx context.Context, ev domain.BookingConfirmedEvent) error {
		log.Info().
			Str("booking_id", ev.BookingID).
			Str("email", ev.Email).
			Str("room", ev.RoomType).
			Str("check_in", ev.CheckIn).
			Str("check_out", ev.CheckOut).
			Int("nights", ev.Nights).
			Int("total", ev.TotalPrice).
			Msg("booking confirmed")
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("notifier stopped")
}
