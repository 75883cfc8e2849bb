package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking-calendar/internal/clash"
	"github.com/iliyamo/theatre-booking-calendar/internal/handler"
	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
	"github.com/iliyamo/theatre-booking-calendar/internal/middleware"
	"github.com/iliyamo/theatre-booking-calendar/internal/model"
	"github.com/iliyamo/theatre-booking-calendar/internal/repository"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

type MockSender struct {
	lock sync.Mutex
	Sent []mail.Email
}

func (m *MockSender) SendEmail(_ context.Context, e mail.Email) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.Sent = append(m.Sent, e)
	return nil
}

type brokenStore struct{}

func (brokenStore) ListInRange(context.Context, int64, int64) ([]model.Booking, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) Get(context.Context, string) (model.Booking, error) {
	return model.Booking{}, errors.New("connection refused")
}
func (brokenStore) Insert(context.Context, model.Booking) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenStore) Update(context.Context, string, model.BookingPatch) error {
	return errors.New("connection refused")
}
func (brokenStore) Delete(context.Context, string) error { return errors.New("connection refused") }

func newServer(t *testing.T, store service.BookingStore) (*echo.Echo, *MockSender) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	sender := &MockSender{}
	var snap clash.Snapshotter = repository.NewMemoryStore()
	if s, ok := store.(clash.Snapshotter); ok {
		snap = s
	}
	notifier := clash.NewNotifier(snap, sender, clash.Config{Location: loc})
	svc := service.NewBookingService(store, validation.New(), notifier, nil, loc)

	b := handler.NewBookingHandler(svc)
	cal := handler.NewCalendarHandler(svc)

	e := echo.New()
	e.Use(middleware.Identity(""))
	e.GET("/health", cal.Health)
	e.GET("/v1/calendar/:year", cal.GetYear)
	e.GET("/v1/calendar/:year/groups", cal.GetGroups)
	e.GET("/v1/calendar/:year/export", cal.Export)
	e.GET("/v1/clash", cal.Clash)
	e.GET("/v1/bookings", b.List)
	e.GET("/v1/bookings/:id", b.Get)
	e.POST("/v1/bookings", b.Create, middleware.RequireIdentity())
	e.POST("/v1/bookings/import", b.Import, middleware.RequireIdentity())
	e.PATCH("/v1/bookings/:id", b.Update, middleware.RequireIdentity())
	e.DELETE("/v1/bookings/:id", b.Delete, middleware.RequireIdentity())
	e.GET("/v1/ops", b.ListOps)
	e.POST("/v1/ops/:name", b.Op)
	return e, sender
}

func do(e *echo.Echo, method, target, identity, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if identity != "" {
		req.Header.Set(middleware.HeaderUserToken, identity)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func bookingBody(date, contact string) string {
	return `{"dateKey":"` + date + `","titleOfShow":"Hamlet","venue":"The Globe","producer":"RSC","pressContact":"` + contact + `"}`
}

type mutation struct {
	Booking struct {
		ID      string `json:"id"`
		DateKey string `json:"dateKey"`
		Day     string `json:"day"`
		UserID  string `json:"userId"`
		Title   string `json:"titleOfShow"`
	} `json:"booking"`
	Clash clash.Result `json:"clash"`
}

func TestHealth(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())

	rec := do(e, http.MethodGet, "/health?year=2024", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		OK      bool `json:"ok"`
		Year    int  `json:"year"`
		Days    int  `json:"days"`
		Entries int  `json:"entries"`
	}
	decode(t, rec, &body)
	assert.True(t, body.OK)
	assert.Equal(t, 2024, body.Year)
	assert.Equal(t, 366, body.Days)
	assert.Equal(t, 0, body.Entries)

	for _, q := range []string{"abc", "1800"} {
		rec = do(e, http.MethodGet, "/health?year="+q, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), `"ok":false`)
	}

	broken, _ := newServer(t, brokenStore{})
	rec = do(broken, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestBookingLifecycle(t *testing.T) {
	e, sender := newServer(t, repository.NewMemoryStore())

	rec := do(e, http.MethodPost, "/v1/bookings", "user-a", bookingBody("15/06/2025", "a@x.com"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a mutation
	decode(t, rec, &a)
	assert.NotEmpty(t, a.Booking.ID)
	assert.Equal(t, "15/06/2025", a.Booking.DateKey)
	assert.Equal(t, "Sunday", a.Booking.Day)
	assert.Equal(t, "user-a", a.Booking.UserID)
	assert.False(t, a.Clash.HasClash)

	rec = do(e, http.MethodPost, "/v1/bookings", "user-b", bookingBody("15/06/2025", "b@x.com"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b mutation
	decode(t, rec, &b)
	assert.True(t, b.Clash.HasClash)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, b.Clash.NotifyContacts)
	assert.Len(t, sender.Sent, 2)

	rec = do(e, http.MethodGet, "/v1/bookings?from=15/06/2025&to=15/06/2025", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	decode(t, rec, &listed)
	assert.Len(t, listed, 2)

	rec = do(e, http.MethodGet, "/v1/bookings?from=16/06/2025&to=30/06/2025", "", "")
	decode(t, rec, &listed)
	assert.Empty(t, listed)

	rec = do(e, http.MethodPatch, "/v1/bookings/"+a.Booking.ID, "user-b", `{"titleOfShow":"Macbeth"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPatch, "/v1/bookings/"+a.Booking.ID, "user-a", `{"titleOfShow":"Macbeth"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var edited mutation
	decode(t, rec, &edited)
	assert.Equal(t, "Macbeth", edited.Booking.Title)
	assert.False(t, edited.Clash.HasClash)

	rec = do(e, http.MethodDelete, "/v1/bookings/"+a.Booking.ID, "user-b", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(e, http.MethodDelete, "/v1/bookings/"+a.Booking.ID, "user-a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/v1/bookings/"+a.Booking.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreate_Rejections(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())

	rec := do(e, http.MethodPost, "/v1/bookings", "", bookingBody("15/06/2025", "a@x.com"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/v1/bookings", "user-a", `{"dateKey":"15/06/2025","pressContact":"a@x.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "producer")

	rec = do(e, http.MethodPost, "/v1/bookings", "user-a", bookingBody("31/02/2025", "a@x.com"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/bookings", "user-a", `{"venue":"The Globe","producer":"RSC","pressContact":"a@x.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "is required", body.Fields["date"])

	rec = do(e, http.MethodGet, "/v1/bookings?from=20/06/2025&to=10/06/2025", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_DateBeforeEpoch(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())

	rec := do(e, http.MethodPost, "/v1/bookings", "user-a", `{"date":-3600000,"venue":"The Globe","producer":"RSC","pressContact":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Booking struct {
			Date    int64  `json:"date"`
			DateKey string `json:"dateKey"`
		} `json:"booking"`
	}
	decode(t, rec, &created)
	assert.Equal(t, int64(-3_600_000), created.Booking.Date)
	assert.Equal(t, "01/01/1970", created.Booking.DateKey)

	rec = do(e, http.MethodPost, "/v1/bookings", "user-a", bookingBody("15/06/1965", "a@x.com"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &created)
	assert.Equal(t, "15/06/1965", created.Booking.DateKey)
}

func TestStoreFailureIsGeneric(t *testing.T) {
	e, _ := newServer(t, brokenStore{})

	rec := do(e, http.MethodPost, "/v1/bookings", "user-a", bookingBody("15/06/2025", "a@x.com"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "please try again")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCalendarViews(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/bookings", "u", bookingBody("02/03/2024", "a@x.com")).Code)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/bookings", "u", bookingBody("01/01/2024", "b@x.com")).Code)

	rec := do(e, http.MethodGet, "/v1/calendar/2024", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.YearView
	decode(t, rec, &view)
	assert.Len(t, view.Dates, 366)
	assert.Equal(t, 2, view.Entries)
	assert.Len(t, view.Dates["02/03/2024"], 1)

	rec = do(e, http.MethodGet, "/v1/calendar/2024/groups", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []struct {
		Date string `json:"date"`
	}
	decode(t, rec, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "01/01/2024", groups[0].Date)
	assert.Equal(t, "02/03/2024", groups[1].Date)

	rec = do(e, http.MethodGet, "/v1/calendar/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/bookings", "u", bookingBody("15/03/2023", "a@x.com")).Code)

	rec := do(e, http.MethodGet, "/v1/calendar/2023/export?format=csv", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "bookings-2023.csv")
	assert.Contains(t, rec.Body.String(), "15/03/2023")
	assert.Contains(t, rec.Body.String(), "Hamlet")

	rec = do(e, http.MethodGet, "/v1/calendar/2023/export?format=xlsx", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(e, http.MethodGet, "/v1/calendar/2023/export?format=ics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")

	rec = do(e, http.MethodGet, "/v1/calendar/2023/export?format=pdf", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImport(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", "bookings.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Date,Title Of Show,Venue,Producer,Press Contact\n" +
		"15/03/2023,Hamlet,The Globe,RSC,a@x.com\n" +
		"16/03/2023,Lear,The Globe,,b@x.com\n"))
	require.NoError(t, err)
	part, err = w.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/import", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(middleware.HeaderUserToken, "user-a")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Reports []service.ImportReport `json:"reports"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Reports, 2)
	assert.Equal(t, 1, body.Reports[0].Imported)
	require.Len(t, body.Reports[0].Errors, 1)
	assert.Equal(t, 3, body.Reports[0].Errors[0].Row)
	assert.Equal(t, "producer", body.Reports[0].Errors[0].Field)
	assert.NotEmpty(t, body.Reports[1].Error)

	rec = do(e, http.MethodPost, "/v1/bookings/import", "user-a", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClashPreview(t *testing.T) {
	e, sender := newServer(t, repository.NewMemoryStore())
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/bookings", "u", bookingBody("15/06/2025", "a@x.com")).Code)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/bookings", "v", bookingBody("15/06/2025", "b@x.com")).Code)
	sent := len(sender.Sent)

	rec := do(e, http.MethodGet, "/v1/clash?date=15/06/2025", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.ClashView
	decode(t, rec, &view)
	assert.True(t, view.HasClash)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, view.NotifyContacts)
	assert.Len(t, sender.Sent, sent)

	rec = do(e, http.MethodGet, "/v1/clash?date=tomorrow", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOps(t *testing.T) {
	e, _ := newServer(t, repository.NewMemoryStore())

	rec := do(e, http.MethodGet, "/v1/ops", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "createBooking")

	rec = do(e, http.MethodPost, "/v1/ops/createBooking", "", bookingBody("15/06/2025", "a@x.com"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/v1/ops/createBooking", "user-a", bookingBody("15/06/2025", "a@x.com"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/v1/ops/listYear", "", `{"year":2025}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Operation string           `json:"operation"`
		Result    service.YearView `json:"result"`
	}
	decode(t, rec, &out)
	assert.Equal(t, "listYear", out.Operation)
	assert.Equal(t, 1, out.Result.Entries)

	rec = do(e, http.MethodPost, "/v1/ops/dropTables", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/v1/ops/listYear", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
