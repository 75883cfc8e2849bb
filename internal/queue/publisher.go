package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
)

// Publisher is a mail.Sender that enqueues emails instead of sending them.
// A nil error means the broker accepted the message.
type Publisher struct {
	url   string
	queue string
	now   func() time.Time
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{url: url, queue: queue, now: time.Now}
}

// SendEmail publishes e to the email queue. The connection is opened per
// message; clash emails are rare.
func (p *Publisher) SendEmail(ctx context.Context, e mail.Email) error {
	log := logging.FromContext(ctx)

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.queue); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(EmailQueued{
		Email:         e,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
		QueuedAt:      p.now().UTC(),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     p.now().UTC(),
		CorrelationId: logging.CorrelationIDFromContext(ctx),
		Body:          body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// declare makes sure the durable queue exists.
func declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}
