// Пакет auth — проверка bearer-токенов продавцов.
// Токены выпускает внешний сервис; здесь только подпись, срок и issuer.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Gunvolt24/salesops/internal/domain"
)

// ErrNotConfigured — секрет не задан, проверять токены нечем.
var ErrNotConfigured = errors.New("auth: jwt secret is not configured")

// claims — полезная нагрузка токена. ID продавца — в "id", иначе в "sub".
type claims struct {
	jwt.RegisteredClaims
	ID string `json:"id,omitempty"`
}

// salespersonID — идентификатор владельца токена.
func (c *claims) salespersonID() string {
	if id := strings.TrimSpace(c.ID); id != "" {
		return id
	}
	return strings.TrimSpace(c.Subject)
}

// Verifier — проверка HS256-токенов общим секретом.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// VerifierOption — настройка Verifier.
type VerifierOption func(*Verifier)

// WithIssuer — требовать совпадения claim "iss".
func WithIssuer(issuer string) VerifierOption {
	return func(v *Verifier) { v.issuer = strings.TrimSpace(issuer) }
}

// WithNow — источник времени для проверки exp/nbf.
func WithNow(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier — конструктор. Пустой секрет — ErrNotConfigured.
func NewVerifier(secret string, opts ...VerifierOption) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNotConfigured
	}
	v := &Verifier{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify — проверить токен и вернуть ID продавца.
// Все отказы оборачивают domain.ErrUnauthenticated.
func (v *Verifier) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: token is empty", domain.ErrUnauthenticated)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	var parsed claims
	if _, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnauthenticated, describe(err))
	}

	id := parsed.salespersonID()
	if id == "" {
		return "", fmt.Errorf("%w: token has no salesperson id", domain.ErrUnauthenticated)
	}
	return id, nil
}

// describe — короткое описание отказа без деталей токена.
func describe(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token is expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token is not valid yet"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer mismatch"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	default:
		return "token is invalid"
	}
}
