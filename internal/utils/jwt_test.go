package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityToken(t *testing.T) {
	tok, err := NewIdentityToken("s3cret", "box-office", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, time.Minute)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "box-office", sub)

	forever, err := NewIdentityToken("s3cret", "box-office", 0)
	require.NoError(t, err)
	assert.True(t, forever.Exp.IsZero())
}

func TestNewIdentityToken_Rejects(t *testing.T) {
	_, err := NewIdentityToken("", "box-office", time.Hour)
	assert.Error(t, err)
	_, err = NewIdentityToken("s3cret", "  ", time.Hour)
	assert.Error(t, err)
}
