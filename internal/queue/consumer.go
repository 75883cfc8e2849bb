package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
)

// Consumer delivers queued emails through a mail.Sender.
type Consumer struct {
	url     string
	queue   string
	deliver mail.Sender
}

func NewConsumer(url, queue string, deliver mail.Sender) *Consumer {
	return &Consumer{url: url, queue: queue, deliver: deliver}
}

// Run connects to the broker and consumes until ctx is cancelled. Lost
// connections are re-dialled with a doubling delay capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	log := logging.FromContext(ctx).WithField("queue", c.queue)

	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.WithError(err).Warnf("email-consumer: failed to dial broker, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.WithError(err).Warn("email-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("email-consumer: set QoS failed")
	}
	if err := declare(ch, c.queue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				logging.FromContext(ctx).WithError(err).Error("email-consumer: handle message failed")
				// Reject without requeue to avoid a tight redelivery loop.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message and delivers its email.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev EmailQueued
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, ev.CorrelationID)
		ctx = logging.ToContext(ctx, logging.FromContext(ctx).WithField("correlation_id", ev.CorrelationID))
	}
	if len(ev.Email.To) == 0 {
		return errors.New("email has no recipients")
	}
	if err := c.deliver.SendEmail(ctx, ev.Email); err != nil {
		return fmt.Errorf("deliver email: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
