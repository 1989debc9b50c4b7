package cli

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/common"
)

// Delete asks for a post id, confirms, and issues the delete. Ownership
// is enforced by the backend; a rejection is reported distinctly.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter post id to delete", a.out)
	if err != nil {
		a.log.Error(ctx, "input failed", "error", err)
		return err
	}

	if err := a.ctrl.DeletePost(ctx, id); err != nil {
		switch {
		case errors.Is(err, common.ErrIdentityMissing):
			fmt.Fprintln(a.out, "Sign in before deleting.")
		case errors.Is(err, common.ErrNotPermitted):
			fmt.Fprintln(a.out, "You can only delete your own posts.")
		case errors.Is(err, common.ErrNotFound):
			fmt.Fprintln(a.out, "No such post.")
		default:
			fmt.Fprintf(a.out, "Delete failed: %s\n", err)
		}
		return err
	}
	return nil
}
