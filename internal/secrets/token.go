// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned when the configured token is a JWT whose exp
// claim has passed.
var ErrTokenExpired = errors.New("listing api token expired")

// TokenProvider supplies the bearer token sent to the listing API. Opaque
// tokens are passed through; JWTs are checked for expiry without verifying
// the signature, which only the backend can do.
type TokenProvider struct {
	token string

	// Now is the clock used for expiry checks. Tests override it.
	Now func() time.Time
}

// NewTokenProvider returns a provider for token. An empty token means
// anonymous requests.
func NewTokenProvider(token string) *TokenProvider {
	return &TokenProvider{token: strings.TrimSpace(token), Now: time.Now}
}

// FromSecrets picks the listing token out of a Load result, preferring an
// explicit override when it is not empty.
func FromSecrets(loaded map[string]string, override string) *TokenProvider {
	if override != "" {
		return NewTokenProvider(override)
	}
	return NewTokenProvider(loaded[ListingTokenKey])
}

// Token returns the token, or "" for anonymous access.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p == nil || p.token == "" {
		return "", nil
	}
	if strings.Count(p.token, ".") != 2 {
		return p.token, nil
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.token, &claims); err != nil {
		return "", fmt.Errorf("parsing listing api token: %w", err)
	}
	if claims.ExpiresAt != nil && !p.Now().Before(claims.ExpiresAt.Time) {
		return "", fmt.Errorf("%w at %s", ErrTokenExpired, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}
	return p.token, nil
}

// Subject returns the sub claim of a JWT token, or "" for opaque tokens.
func (p *TokenProvider) Subject() string {
	if p == nil || strings.Count(p.token, ".") != 2 {
		return ""
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.token, &claims); err != nil {
		return ""
	}
	return claims.Subject
}
