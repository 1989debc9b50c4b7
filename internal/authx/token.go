package authx

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"postboard/internal/common"
	"postboard/internal/models"
)

// Claims carries the standard claims plus the human-readable display name.
// The subject claim is the opaque identity key.
type Claims struct {
	jwt.RegisteredClaims
	Display string `json:"name,omitempty"`
}

// TokenProvider derives the current identity from an HS256 ID token issued
// by the external identity service. An invalid or expired token leaves the
// provider signed out.
type TokenProvider struct {
	secretKey []byte

	mu       sync.Mutex
	identity models.Identity
	signedIn bool
}

// NewTokenProvider returns a signed-out provider that verifies tokens with
// secretKey.
func NewTokenProvider(secretKey []byte) *TokenProvider {
	return &TokenProvider{secretKey: secretKey}
}

// SignIn verifies tokenString and, on success, installs the identity it
// carries. Returns common.ErrIdentityMissing when the token is invalid,
// expired, or carries no subject.
func (p *TokenProvider) SignIn(tokenString string) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secretKey, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return common.ErrIdentityMissing
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = models.Identity{Subject: claims.Subject, Display: claims.Display}
	p.signedIn = true
	return nil
}

func (p *TokenProvider) Current() (models.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return models.Identity{}, false
	}
	return p.identity, true
}

func (p *TokenProvider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = models.Identity{}
	p.signedIn = false
}
