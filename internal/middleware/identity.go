package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
)

// HeaderUserToken carries the caller's opaque identity token.
const HeaderUserToken = "X-User-Token"

const identityKey = "identity"

// Identity extracts the caller's identity from X-User-Token or an
// Authorization: Bearer header. Without a secret the token itself is the
// identity and is only ever compared for equality. With a secret the token
// must be an HS256 JWT signed with it, and its sub claim is the identity.
// Requests without a token continue anonymously.
func Identity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				return next(c)
			}
			if secret == "" {
				c.Set(identityKey, raw)
				return next(c)
			}

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				logging.FromContext(c.Request().Context()).WithError(err).Debug("identity token rejected")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			sub, err := tok.Claims.GetSubject()
			if err != nil || sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			c.Set(identityKey, sub)
			return next(c)
		}
	}
}

// RequireIdentity rejects anonymous requests with 401. It must run after
// Identity.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity token"})
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity set by Identity, or "".
func IdentityFrom(c echo.Context) string {
	s, _ := c.Get(identityKey).(string)
	return s
}

func tokenFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(HeaderUserToken)); v != "" {
		return v
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
