// Package common contains shared constants, sentinel errors, and small
// helpers used across FileKeeper components. Callers should use errors.Is
// to match the sentinel values.
package common

import "errors"

var (
	// Repository/filesystem-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Path resolution errors.
	ErrorInvalidUser = errors.New("invalid user")
	ErrorPathEscape  = errors.New("path escapes user root")
	ErrorInvalidName = errors.New("invalid name")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInternal     = errors.New("internal error")
)
