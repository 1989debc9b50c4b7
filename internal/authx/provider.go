// Package authx supplies the current user identity. The board treats
// authentication as an opaque external concern: it only reacts to the
// presence or absence of an identity and to sign-out.
package authx

import "postboard/internal/models"

// Provider exposes the current identity, or absence thereof.
type Provider interface {
	// Current returns the signed-in identity and true, or a zero identity
	// and false when nobody is signed in.
	Current() (models.Identity, bool)

	// SignOut discards the current identity.
	SignOut()
}

// StaticProvider holds a fixed identity. Useful in tests and demos.
type StaticProvider struct {
	identity models.Identity
	signedIn bool
}

// NewStaticProvider returns a provider already signed in as id.
func NewStaticProvider(id models.Identity) *StaticProvider {
	return &StaticProvider{identity: id, signedIn: id.Present()}
}

func (p *StaticProvider) Current() (models.Identity, bool) {
	if !p.signedIn {
		return models.Identity{}, false
	}
	return p.identity, true
}

func (p *StaticProvider) SignOut() {
	p.signedIn = false
	p.identity = models.Identity{}
}
