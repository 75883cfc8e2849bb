package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/retry"
)

// HTTPSender posts templated emails to a transactional email API. Server
// errors and throttling are retried; other 4xx responses are not.
type HTTPSender struct {
	url    string
	apiKey string
	client *http.Client
	policy config.RetryConfig
}

func NewHTTPSender(cfg config.MailConfig, policy config.RetryConfig) *HTTPSender {
	return &HTTPSender{
		url:    cfg.APIURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
		policy: policy,
	}
}

func (s *HTTPSender) SendEmail(ctx context.Context, e Email) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	return retry.Do(ctx, s.policy, func() error {
		return s.post(ctx, body)
	})
}

func (s *HTTPSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		req.Header.Set(logging.HeaderCorrelationID, cid)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("mail api: status %d", resp.StatusCode)
	default:
		return retry.Permanent(fmt.Errorf("mail api: status %d", resp.StatusCode))
	}
}

// LogSender logs emails instead of sending them. It backs
// NOTIFY_TRANSPORT=log.
type LogSender struct{}

func (LogSender) SendEmail(ctx context.Context, e Email) error {
	to := make([]string, 0, len(e.To))
	for _, r := range e.To {
		to = append(to, r.Email)
	}
	logging.FromContext(ctx).
		WithField("to", to).
		WithField("subject", e.Subject).
		WithField("template", e.TemplateName).
		Info("Email not sent, log transport")
	return nil
}

