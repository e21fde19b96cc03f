// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenProvider(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr error
	}{
		{name: "anonymous", token: "", want: ""},
		{name: "opaque token passes through", token: "  tok_abc123 ", want: "tok_abc123"},
		{name: "valid jwt", token: signedToken(t, "user-1", now.Add(time.Hour))},
		{name: "expired jwt", token: signedToken(t, "user-1", now.Add(-time.Minute)), wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTokenProvider(tt.token)
			p.Now = func() time.Time { return now }

			got, err := p.Token(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			if tt.want != "" || tt.token == "" {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, tt.token, got)
			}
		})
	}
}

func TestTokenProviderMalformedJWT(t *testing.T) {
	_, err := NewTokenProvider("not.a.jwt").Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing listing api token")
}

func TestTokenProviderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTokenProvider("tok").Token(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenProviderSubject(t *testing.T) {
	p := NewTokenProvider(signedToken(t, "agent-42", time.Now().Add(time.Hour)))
	assert.Equal(t, "agent-42", p.Subject())
	assert.Empty(t, NewTokenProvider("opaque").Subject())
}

func TestFromSecrets(t *testing.T) {
	loaded := map[string]string{ListingTokenKey: "from-file"}
	ctx := context.Background()

	got, err := FromSecrets(loaded, "").Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	got, err = FromSecrets(loaded, "from-flag").Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", got)
}
