// Package models defines the domain types shared across postboard
// components: posts, author identities, and feed snapshots.
package models

import (
	"time"

	"postboard/internal/common"
)

// Post is a single feed entry.
//
// CreatedAt is assigned by the backend at commit time and is nil until the
// backend confirms the write. It is never set from a client clock, so the
// feed ordering stays consistent across clients regardless of clock skew.
// Once set it never changes.
type Post struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Content       string     `json:"content" db:"content"`
	CoverImageURL string     `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	AuthorID      string     `json:"authorId" db:"author_id"`
	AuthorDisplay string     `json:"authorDisplay" db:"author_display"`
	CreatedAt     *time.Time `json:"createdAt" db:"created_at"`
}

// DisplayAuthor returns the human-readable author label, falling back to
// the anonymous label when the author has no display text.
func (p *Post) DisplayAuthor() string {
	if p.AuthorDisplay == "" {
		return common.AnonymousLabel
	}
	return p.AuthorDisplay
}

// Committed reports whether the backend has confirmed the post and
// assigned its timestamp.
func (p *Post) Committed() bool {
	return p.CreatedAt != nil
}

// Identity is the opaque author identity supplied by the auth provider.
type Identity struct {
	Subject string
	Display string
}

// Present reports whether the identity carries a subject. An upload or
// write attempted without one fails before any network I/O.
func (id Identity) Present() bool {
	return id.Subject != ""
}

// Snapshot is the full ordered sequence of posts as currently known.
// It is replaced wholesale on every backend notification, never patched.
type Snapshot []Post
