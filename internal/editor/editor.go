// Package editor defines the contract for the rich-text authoring surface.
// The surface itself is an external collaborator: it emits serialized
// markup and asks for inline-image insertion at a cursor position. This
// package specifies the interface the composer programs against and ships
// a minimal text-based implementation for the CLI and tests.
package editor

import "fmt"

// EmptyDocument is the canonical serialized form of an empty document.
// Content equal to this value fails the composer's validation gate the
// same way an empty string does.
const EmptyDocument = "<p><br></p>"

// Surface is the authoring surface consumed by the composer.
//
// Contract:
//   - Content returns the current serialized markup.
//   - EmbedImage inserts an image reference at the given cursor position.
//     Implementations must leave the document unchanged when they return
//     an error.
type Surface interface {
	Content() string
	EmbedImage(pos int, url string) error
}

// TextSurface is a plain in-memory Surface over a serialized document.
type TextSurface struct {
	doc string
}

// NewTextSurface returns a surface seeded with the given markup.
func NewTextSurface(doc string) *TextSurface {
	return &TextSurface{doc: doc}
}

func (s *TextSurface) Content() string {
	return s.doc
}

// EmbedImage splices an <img> tag into the document at pos. Positions past
// either end are clamped to the document bounds, matching how a cursor
// behaves at the edges of a document.
func (s *TextSurface) EmbedImage(pos int, url string) error {
	if url == "" {
		return fmt.Errorf("embed image: empty url")
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.doc) {
		pos = len(s.doc)
	}
	s.doc = s.doc[:pos] + fmt.Sprintf(`<img src=%q>`, url) + s.doc[pos:]
	return nil
}
