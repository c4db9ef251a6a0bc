// Package auth verifies creator bearer tokens issued by the identity
// service. Partners never authenticate: the share token is their key.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing authentication token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type contextKey string

const creatorKey contextKey = "creator"

// Verifier checks HS256 tokens and yields the subject as creator id.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// Verify parses a token, with or without its Bearer prefix.
func (v *Verifier) Verify(raw string) (string, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return "", ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Issue signs a token for creatorID. Used by the dev login and tests.
func (v *Verifier) Issue(creatorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   creatorID,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// CreatorID returns the authenticated creator, if any.
func CreatorID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(creatorKey).(string)
	return id, ok && id != ""
}

// WithCreator stores id in ctx as the authenticated creator.
func WithCreator(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, creatorKey, id)
}

// Require rejects requests without a valid bearer token. A nil verifier
// rejects everything: creator routes are closed when auth is unconfigured.
func Require(v *Verifier, onError func(w http.ResponseWriter, status int, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				onError(w, http.StatusServiceUnavailable, "creator accounts are not configured")
				return
			}
			id, err := v.Verify(r.Header.Get("Authorization"))
			if err != nil {
				msg := "unauthorized"
				if errors.Is(err, ErrExpiredToken) {
					msg = "token expired"
				}
				onError(w, http.StatusUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCreator(r.Context(), id)))
		})
	}
}
