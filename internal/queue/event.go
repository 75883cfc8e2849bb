// Package queue carries clash notification emails over RabbitMQ so a slow
// mail provider never holds up a booking request.
package queue

import (
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
)

// EmailQueued is published for each clash email. It holds everything the
// consumer needs to deliver the email without touching the store.
type EmailQueued struct {
	Email         mail.Email `json:"email"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	QueuedAt      time.Time  `json:"queued_at"`
}
