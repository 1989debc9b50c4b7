// Package common defines shared constants and sentinel errors used across
// postboard components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors. A failed validation gate is a local no-op and is
	// never surfaced to the user as an error.
	ErrValidation = errors.New("validation error")

	// Identity errors.
	ErrIdentityMissing = errors.New("identity missing")

	// Backend access errors. ErrPermissionDenied covers read denial
	// (standing query rejected); ErrNotPermitted covers a rejected write
	// or delete, e.g. deleting a post the requester does not own.
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotPermitted     = errors.New("not permitted")

	// Transfer errors. Wraps the underlying upload failure; the original
	// cause stays reachable through errors.Is/As.
	ErrTransfer = errors.New("transfer failed")

	// Feed errors. The standing query channel broke; the feed stops
	// updating until the view is reloaded.
	ErrConnectivity = errors.New("connectivity lost")

	// Controller errors.
	ErrBusy = errors.New("submission already in flight")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
