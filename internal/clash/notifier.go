package clash

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// DefaultTemplate is the provider template used for clash emails.
const DefaultTemplate = "booking-clash"

// Snapshotter reads the bookings of a time range from the store.
type Snapshotter interface {
	ListInRange(ctx context.Context, startMs, endMs int64) ([]model.Booking, error)
}

// Config controls how clash emails are addressed and formatted.
type Config struct {
	From         mail.Recipient
	TemplateName string
	Location     *time.Location
}

// Notifier checks a booking's day for clashes after a mutation and emails
// every press contact involved. Failures never propagate: a clash check is
// best-effort and must not block the booking write.
type Notifier struct {
	store  Snapshotter
	sender mail.Sender
	cfg    Config
}

// NewNotifier constructs a Notifier.
func NewNotifier(store Snapshotter, sender mail.Sender, cfg Config) *Notifier {
	if cfg.TemplateName == "" {
		cfg.TemplateName = DefaultTemplate
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Notifier{store: store, sender: sender, cfg: cfg}
}

// checkTimeout bounds a clash check once it is detached from its caller.
const checkTimeout = 30 * time.Second

// Check runs clash detection for candidate, which must already be stored.
// previous is the booking as it was before an edit, or nil for a create;
// edits only trigger when the booking moved to another calendar day.
// The booking is committed by the time Check runs, so the check and its
// emails outlive a cancelled caller context.
func (n *Notifier) Check(ctx context.Context, candidate model.Booking, previous *model.Booking) Result {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), checkTimeout)
	defer cancel()
	logger := logging.FromContext(ctx).WithField("booking_id", candidate.ID)
	key := model.DateKey(candidate.Date, n.cfg.Location)

	if previous != nil && model.DateKey(previous.Date, n.cfg.Location) == key {
		return noClash()
	}

	start, end := model.DayBounds(candidate.Date, n.cfg.Location)
	snapshot, err := n.store.ListInRange(ctx, start, end)
	if err != nil {
		logger.WithError(err).Warn("clash check skipped: could not read bookings for date")
		return noClash()
	}
	if len(snapshot) == 0 {
		logger.WithField("date", key).Warn("clash check skipped: no bookings returned for date")
		return noClash()
	}

	res := Detect(candidate, snapshot)
	if !res.HasClash {
		return res
	}

	emails, err := BuildEmails(candidate, res, n.cfg)
	if err != nil {
		logger.WithError(err).Error("building clash emails")
		return res
	}
	for _, e := range emails {
		to := e.To[0].Email
		if err := n.sender.SendEmail(ctx, e); err != nil {
			logger.WithError(err).WithField("to", to).Error("sending clash email")
			continue
		}
		logger.WithField("to", to).Info("clash email sent")
	}
	return res
}

// BuildEmails produces one email per contact in res.NotifyContacts.
func BuildEmails(candidate model.Booking, res Result, cfg Config) ([]mail.Email, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	snapshot, err := json.Marshal(res.Bookings)
	if err != nil {
		return nil, fmt.Errorf("marshalling bookings snapshot: %w", err)
	}

	date := model.DateKey(candidate.Date, loc)
	emails := make([]mail.Email, 0, len(res.NotifyContacts))
	for _, contact := range res.NotifyContacts {
		emails = append(emails, mail.Email{
			To:           []mail.Recipient{{Email: contact, Name: contact}},
			Subject:      fmt.Sprintf("Booking clash on %s", date),
			TemplateName: cfg.TemplateName,
			Sender:       cfg.From,
			Params: map[string]any{
				"date":          date,
				"rawDate":       model.RawDate(candidate.Date, loc),
				"venue":         candidate.ResolveVenue(),
				"titleOfShow":   candidate.DisplayTitle(),
				"isSeasonGala":  candidate.IsSeasonGala,
				"isOperaDance":  candidate.IsOperaDance,
				"otherContacts": strings.Join(others(res.NotifyContacts, contact), ", "),
				"bookings":      string(snapshot),
			},
		})
	}
	return emails, nil
}

func noClash() Result {
	return Result{NotifyContacts: []string{}}
}
