package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/pkg/auth"
)

const secret = "test-secret"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := auth.NewVerifier("  ")
	require.ErrorIs(t, err, auth.ErrNotConfigured)
}

func TestVerify_Accepts(t *testing.T) {
	v, err := auth.NewVerifier(secret, auth.WithIssuer("salesops-auth"), auth.WithNow(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"id claim", jwt.MapClaims{"id": "sp-1", "iss": "salesops-auth", "exp": fixedNow.Add(time.Hour).Unix()}, "sp-1"},
		{"sub fallback", jwt.MapClaims{"sub": "sp-2", "iss": "salesops-auth"}, "sp-2"},
		{"id wins over sub", jwt.MapClaims{"id": "sp-3", "sub": "other", "iss": "salesops-auth"}, "sp-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(secret), tt.claims))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestVerify_Rejects(t *testing.T) {
	v, err := auth.NewVerifier(secret, auth.WithIssuer("salesops-auth"), auth.WithNow(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	valid := jwt.MapClaims{"id": "sp-1", "iss": "salesops-auth"}
	expired := jwt.MapClaims{"id": "sp-1", "iss": "salesops-auth", "exp": fixedNow.Add(-time.Minute).Unix()}
	notYet := jwt.MapClaims{"id": "sp-1", "iss": "salesops-auth", "nbf": fixedNow.Add(time.Hour).Unix()}
	foreignIssuer := jwt.MapClaims{"id": "sp-1", "iss": "elsewhere"}
	noID := jwt.MapClaims{"iss": "salesops-auth"}

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"empty", "", "token is empty"},
		{"garbage", "not.a.jwt", "token is malformed"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), valid), "token signature is invalid"},
		{"wrong alg", sign(t, jwt.SigningMethodHS512, []byte(secret), valid), "token signature is invalid"},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), expired), "token is expired"},
		{"not yet valid", sign(t, jwt.SigningMethodHS256, []byte(secret), notYet), "token is not valid yet"},
		{"issuer", sign(t, jwt.SigningMethodHS256, []byte(secret), foreignIssuer), "token issuer mismatch"},
		{"no id", sign(t, jwt.SigningMethodHS256, []byte(secret), noID), "no salesperson id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, domain.ErrUnauthenticated)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}
