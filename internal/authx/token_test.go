package authx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/common"
	"postboard/internal/models"
)

var testSecret = []byte("test-secret")

func makeToken(t *testing.T, subject, display string, ttl time.Duration, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Display: display,
	})
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestTokenProvider_SignIn(t *testing.T) {
	p := NewTokenProvider(testSecret)

	_, ok := p.Current()
	require.False(t, ok, "fresh provider must be signed out")

	err := p.SignIn(makeToken(t, "u1", "Alice", time.Hour, testSecret))
	require.NoError(t, err)

	id, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, models.Identity{Subject: "u1", Display: "Alice"}, id)
}

func TestTokenProvider_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong key", makeToken(t, "u1", "Alice", time.Hour, []byte("other"))},
		{"expired", makeToken(t, "u1", "Alice", -time.Hour, testSecret)},
		{"no subject", makeToken(t, "", "Alice", time.Hour, testSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTokenProvider(testSecret)
			err := p.SignIn(tt.token)
			require.ErrorIs(t, err, common.ErrIdentityMissing)
			_, ok := p.Current()
			assert.False(t, ok)
		})
	}
}

func TestTokenProvider_SignOut(t *testing.T) {
	p := NewTokenProvider(testSecret)
	require.NoError(t, p.SignIn(makeToken(t, "u1", "", time.Hour, testSecret)))

	p.SignOut()
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(models.Identity{Subject: "u1", Display: "Alice"})
	id, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", id.Subject)

	p.SignOut()
	_, ok = p.Current()
	assert.False(t, ok)

	empty := NewStaticProvider(models.Identity{})
	_, ok = empty.Current()
	assert.False(t, ok, "identity without subject is absent")
}
