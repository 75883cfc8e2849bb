package mail_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
)

type mailAPI struct {
	lock     sync.Mutex
	statuses []int
	received []mail.Email
	headers  []http.Header
}

func (m *mailAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var e mail.Email
	_ = json.NewDecoder(r.Body).Decode(&e)
	m.received = append(m.received, e)
	m.headers = append(m.headers, r.Header.Clone())

	status := http.StatusOK
	if len(m.statuses) > 0 {
		status = m.statuses[0]
		m.statuses = m.statuses[1:]
	}
	w.WriteHeader(status)
}

func newSender(url string) *mail.HTTPSender {
	return mail.NewHTTPSender(
		config.MailConfig{APIURL: url, APIKey: "key-1", Timeout: time.Second},
		config.RetryConfig{MaxAttempts: 3, Strategy: config.RetryConstant, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1},
	)
}

func sampleEmail() mail.Email {
	return mail.Email{
		To:           []mail.Recipient{{Email: "a@x.com"}},
		Subject:      "Booking clash on 15/06/2025",
		TemplateName: "booking-clash",
		Sender:       mail.Recipient{Email: "no-reply@x.com", Name: "Calendar"},
		Params:       map[string]any{"date": "15/06/2025"},
	}
}

func TestHTTPSender_Success(t *testing.T) {
	api := &mailAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	ctx := logging.ContextWithCorrelationID(context.Background(), "cid-1")
	require.NoError(t, newSender(srv.URL).SendEmail(ctx, sampleEmail()))

	require.Len(t, api.received, 1)
	assert.Equal(t, "a@x.com", api.received[0].To[0].Email)
	assert.Equal(t, "15/06/2025", api.received[0].Params["date"])
	assert.Equal(t, "key-1", api.headers[0].Get("api-key"))
	assert.Equal(t, "cid-1", api.headers[0].Get(logging.HeaderCorrelationID))
}

func TestHTTPSender_RetriesServerErrors(t *testing.T) {
	api := &mailAPI{statuses: []int{http.StatusBadGateway, http.StatusTooManyRequests}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	require.NoError(t, newSender(srv.URL).SendEmail(context.Background(), sampleEmail()))
	assert.Len(t, api.received, 3)
}

func TestHTTPSender_ClientErrorIsFinal(t *testing.T) {
	api := &mailAPI{statuses: []int{http.StatusBadRequest}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	err := newSender(srv.URL).SendEmail(context.Background(), sampleEmail())
	assert.EqualError(t, err, "mail api: status 400")
	assert.Len(t, api.received, 1)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, mail.LogSender{}.SendEmail(context.Background(), sampleEmail()))
}
