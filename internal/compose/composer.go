// Package compose orchestrates post creation: validation, cover-image
// upload, inline-image embedding, and the single record write. A call
// either creates one complete record or changes nothing.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postboard/internal/common"
	"postboard/internal/docstore"
	"postboard/internal/editor"
	"postboard/internal/logging"
	"postboard/internal/media"
	"postboard/internal/models"
)

// Composer builds and writes posts.
type Composer struct {
	store   docstore.Store
	uploads *media.Uploader
	log     logging.Logger
}

// New constructs a Composer over the given document store and uploader.
func New(store docstore.Store, uploads *media.Uploader, log logging.Logger) *Composer {
	return &Composer{store: store, uploads: uploads, log: log}
}

// Input carries one post-creation request. Cover is optional; Progress
// (optional) receives cover upload percentages.
type Input struct {
	Title    string
	Content  string
	Cover    *media.File
	Author   models.Identity
	Progress media.ProgressFunc
}

// CreatePost validates the input, uploads the cover if present, and
// issues exactly one record insert.
//
// The validation gate runs before any network I/O: an empty trimmed
// title, empty content, or content equal to the editor's canonical empty
// document makes the whole call a no-op returning common.ErrValidation.
// Validation failures are control flow for the caller, never a
// user-facing error.
//
// A cover upload failure aborts the call before the insert, classified
// as common.ErrTransfer with the original cause still attached; no post
// is ever created with a missing image.
func (c *Composer) CreatePost(ctx context.Context, in Input) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Content == "" || in.Content == editor.EmptyDocument {
		return common.ErrValidation
	}

	post := models.Post{
		Title:         title,
		Content:       in.Content,
		AuthorID:      in.Author.Subject,
		AuthorDisplay: in.Author.Display,
	}

	if in.Cover != nil {
		url, err := c.uploads.Upload(ctx, *in.Cover, in.Author, in.Progress)
		if err != nil {
			if errors.Is(err, common.ErrIdentityMissing) {
				return err
			}
			return errors.Join(common.ErrTransfer, err)
		}
		post.CoverImageURL = url
	}

	id, err := c.store.InsertPost(ctx, post)
	if err != nil {
		c.log.Error(ctx, "post insert failed", "error", err)
		return fmt.Errorf("create post: %w", err)
	}

	c.log.Info(ctx, "post created", "id", id, "title", title)
	return nil
}

// InsertInlineImage uploads one image and embeds its URL into the editor
// surface at the requested cursor position. The surface stays paused (the
// call is synchronous) until the URL resolves or the upload fails; on
// failure the surface is left unmodified and no draft state changes.
func (c *Composer) InsertInlineImage(ctx context.Context, surface editor.Surface, pos int, f media.File, author models.Identity) error {
	url, err := c.uploads.Upload(ctx, f, author, nil)
	if err != nil {
		if errors.Is(err, common.ErrIdentityMissing) {
			return err
		}
		return errors.Join(common.ErrTransfer, err)
	}
	return surface.EmbedImage(pos, url)
}
