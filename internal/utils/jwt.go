package utils // package utils issues identity tokens for deployments that verify them

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityToken is a signed HS256 JWT naming one booking submitter, along
// with its expiry.
type IdentityToken struct {
	Token string
	Exp   time.Time
}

// NewIdentityToken signs a token whose sub claim is subject. The server
// accepts it when IDENTITY_JWT_SECRET matches secret. A ttl of zero yields
// a token without exp.
func NewIdentityToken(secret, subject string, ttl time.Duration) (IdentityToken, error) {
	if secret == "" {
		return IdentityToken{}, errors.New("empty signing secret")
	}
	if strings.TrimSpace(subject) == "" {
		return IdentityToken{}, errors.New("empty subject")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
		claims["exp"] = exp.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return IdentityToken{}, err
	}
	return IdentityToken{Token: signed, Exp: exp}, nil
}
