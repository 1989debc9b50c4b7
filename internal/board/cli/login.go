package cli

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/board"
)

// Login reads an access token from the terminal, verifies it, and mounts
// the live feed view for the session.
func (a *App) Login(ctx context.Context) error {
	token, err := GetSecret("Paste access token", a.out)
	if err != nil {
		a.log.Error(ctx, "token entry failed", "error", err)
		return err
	}

	if err := a.auth.SignIn(string(token)); err != nil {
		fmt.Fprintln(a.out, "Sign-in failed: token is invalid or expired")
		return err
	}

	if err := a.ctrl.Mount(ctx); err != nil && !errors.Is(err, board.ErrAlreadyMounted) {
		fmt.Fprintf(a.out, "Feed unavailable: %s\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Signed in %s\n", a.getStatus())
	return nil
}

// Logout releases the feed view and discards the identity.
func (a *App) Logout(ctx context.Context) error {
	a.ctrl.Unmount()
	a.auth.SignOut()
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
