package cli

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/common"
	"postboard/internal/editor"
	"postboard/internal/media"
)

// Post interactively composes and submits a new post. An inline image can
// be embedded into the body and a cover image attached; both are
// optional. Upload progress for the cover is echoed as it happens.
func (a *App) Post(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		a.log.Error(ctx, "input failed", "error", err)
		return err
	}

	content, err := GetMultiline(a.reader, "Enter post body", a.out)
	if err != nil {
		a.log.Error(ctx, "input failed", "error", err)
		return err
	}

	surface := editor.NewTextSurface(content)
	if err := a.insertInlineImage(ctx, surface); err != nil {
		return err
	}
	content = surface.Content()

	coverPath, err := GetSimpleText(a.reader, "Cover image path (empty for none)", a.out)
	if err != nil {
		a.log.Error(ctx, "input failed", "error", err)
		return err
	}

	var cover *media.File
	if coverPath != "" {
		file, closeFn, err := media.Open(coverPath)
		if err != nil {
			fmt.Fprintf(a.out, "Cannot read cover image: %s\n", err)
			return err
		}
		defer func() { _ = closeFn() }()
		cover = &file
	}

	// Print each whole percent once; the uploader already guarantees the
	// sequence never goes backwards.
	lastPct := -1
	progress := func(pct float64) {
		if p := int(pct); p > lastPct {
			lastPct = p
			fmt.Fprintf(a.out, "\rUploading cover: %3d%%", p)
			if p == 100 {
				fmt.Fprintln(a.out)
			}
		}
	}

	submitCtx, cancel := context.WithTimeout(ctx, a.config.SubmitTimeout)
	defer cancel()

	if err := a.ctrl.Submit(submitCtx, title, content, cover, progress); err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			fmt.Fprintln(a.out, "A post needs both a title and some content.")
		case errors.Is(err, common.ErrBusy):
			fmt.Fprintln(a.out, "A submission is already in progress.")
		case errors.Is(err, common.ErrIdentityMissing):
			fmt.Fprintln(a.out, "Sign in before posting.")
		case errors.Is(err, common.ErrTransfer):
			fmt.Fprintf(a.out, "Cover upload failed: %s\n", err)
		default:
			fmt.Fprintf(a.out, "Posting failed: %s\n", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Posted.")
	return nil
}

// insertInlineImage optionally uploads one image and embeds its URL at
// the end of the body. A failed upload leaves the body untouched.
func (a *App) insertInlineImage(ctx context.Context, surface editor.Surface) error {
	path, err := GetSimpleText(a.reader, "Inline image path (empty for none)", a.out)
	if err != nil {
		a.log.Error(ctx, "input failed", "error", err)
		return err
	}
	if path == "" {
		return nil
	}

	file, closeFn, err := media.Open(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot read inline image: %s\n", err)
		return err
	}
	defer func() { _ = closeFn() }()

	author, ok := a.auth.Current()
	if !ok {
		fmt.Fprintln(a.out, "Sign in before posting.")
		return common.ErrIdentityMissing
	}

	if err := a.composer.InsertInlineImage(ctx, surface, len(surface.Content()), file, author); err != nil {
		fmt.Fprintf(a.out, "Inline image upload failed: %s\n", err)
		return err
	}
	return nil
}
