package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking-calendar/internal/config"
	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/utils"
)

func serve(t *testing.T, mw []echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/probe", func(c echo.Context) error {
		seen = IdentityFrom(c)
		return c.String(http.StatusOK, "ok")
	}, mw...)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestIdentity_OpaqueToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderUserToken, "user-42")

	rec, seen := serve(t, []echo.MiddlewareFunc{Identity("")}, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", seen)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer abc")
	_, seen = serve(t, []echo.MiddlewareFunc{Identity("")}, req)
	assert.Equal(t, "abc", seen)
}

func TestIdentity_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)

	rec, seen := serve(t, []echo.MiddlewareFunc{Identity("")}, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, seen)

	rec, _ = serve(t, []echo.MiddlewareFunc{Identity(""), RequireIdentity()}, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentity_VerifiedJWT(t *testing.T) {
	secret := "s3cret"
	tok, err := utils.NewIdentityToken(secret, "user-7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec, seen := serve(t, []echo.MiddlewareFunc{Identity(secret)}, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", seen)

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderUserToken, "not-a-jwt")
	rec, _ = serve(t, []echo.MiddlewareFunc{Identity(secret)}, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrong, err := utils.NewIdentityToken("other", "user-7", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderUserToken, wrong.Token)
	rec, _ = serve(t, []echo.MiddlewareFunc{Identity(secret)}, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger_CorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(logging.HeaderCorrelationID, "cid-9")
	rec, _ := serve(t, []echo.MiddlewareFunc{RequestLogger()}, req)
	assert.Equal(t, "cid-9", rec.Header().Get(logging.HeaderCorrelationID))

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec, _ = serve(t, []echo.MiddlewareFunc{RequestLogger()}, req)
	assert.Regexp(t, `^gen_`, rec.Header().Get(logging.HeaderCorrelationID))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/calendar/:year")
		return cacheKeyFrom(cfg, c)
	}

	a := key("/v1/calendar/2024")
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, a)
	assert.Equal(t, a, key("/v1/calendar/2024"))
	assert.NotEqual(t, a, key("/v1/calendar/2025"))
	assert.NotEqual(t, a, key("/v1/calendar/2024?x=1"))
}

func TestResponseCache_DisabledPassesThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	assert.NoError(t, rc.Invalidate(httptest.NewRequest(http.MethodGet, "/", nil).Context()))

	rec, _ := serve(t, []echo.MiddlewareFunc{rc.Middleware()}, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/bookings")
	c.Set(identityKey, "user-1")

	assert.Equal(t, "rl:ip:10.0.0.1:user:user-1:route:POST /v1/bookings",
		buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	assert.Equal(t, "rl:user:user-1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}
