package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", "user-1", time.Minute)
	require.NoError(t, err)

	sub, exp, err := ParseAccessToken("secret", at.Token)
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)
	require.WithinDuration(t, at.Exp, exp, time.Second)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	expired, err := NewAccessToken("secret", "user-1", -time.Minute)
	require.NoError(t, err)
	good, err := NewAccessToken("secret", "user-1", time.Minute)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"expired":    {"secret", expired.Token},
		"wrong key":  {"other", good.Token},
		"no expiry":  {"secret", noExp},
		"no subject": {"secret", noSub},
		"alg none":   {"secret", unsigned},
		"garbage":    {"secret", "not.a.jwt"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseAccessToken(tc.secret, tc.raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(time.Hour)
	require.NoError(t, err)
	b, err := NewRefreshToken(time.Hour)
	require.NoError(t, err)
	require.Len(t, a.Raw, 96)
	require.NotEqual(t, a.Raw, b.Raw)
	require.Len(t, HashRefreshRaw(a.Raw), 64)
	require.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pw123", 4)
	require.NoError(t, err)
	require.NotEqual(t, "pw123", hash)
	require.True(t, VerifyPassword(hash, "pw123"))
	require.False(t, VerifyPassword(hash, "wrong"))
}

func TestValidationMessage(t *testing.T) {
	type req struct {
		Email  string `json:"email" validate:"required,email"`
		Status string `json:"status" validate:"omitempty,oneof=a b"`
	}
	overrides := map[string]string{"email.email": "bad email", "status.oneof": "bad status"}

	err := Validate.Struct(req{})
	require.Error(t, err)
	require.Equal(t, "missing", ValidationMessage(err, "missing", overrides))
	require.Equal(t, []string{"email"}, FailedFields(err))

	err = Validate.Struct(req{Email: "nope"})
	require.Equal(t, "bad email", ValidationMessage(err, "missing", overrides))

	err = Validate.Struct(req{Email: "a@x.com", Status: "c"})
	require.Equal(t, "bad status", ValidationMessage(err, "missing", overrides))

	require.NoError(t, Validate.Struct(req{Email: "a@x.com", Status: "b"}))
}
