package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const BookingConfirmedQueue = "booking.confirmed"

// Publisher sends booking events to a durable RabbitMQ queue over one
// long-lived connection. Channels are not goroutine-safe, so publishes are
// serialized on a single channel that is reopened after failures.
type Publisher struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	p := &Publisher{conn: conn}
	if err := p.open(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) open() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := DeclareQueues(ch); err != nil {
		_ = ch.Close()
		return err
	}
	p.ch = ch
	return nil
}

// DeclareQueues idempotently declares every queue the service uses.
func DeclareQueues(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", BookingConfirmedQueue, err)
	}
	return nil
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev domain.BookingConfirmedEvent) error {
	err := p.publish(ctx, BookingConfirmedQueue, ev.EventID, ev)
	observability.ObservePublish(BookingConfirmedQueue, err)
	return err
}

func (p *Publisher) publish(ctx context.Context, queue, messageID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		if err := p.open(); err != nil {
			return err
		}
	}
	err = p.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}

// Nop drops events; used when no broker is configured.
type Nop struct{}

func (Nop) PublishBookingConfirmed(ctx context.Context, ev domain.BookingConfirmedEvent) error {
	log.Debug().Str("booking_id", ev.BookingID).Msg("event publishing disabled; dropping booking.confirmed")
	return nil
}
