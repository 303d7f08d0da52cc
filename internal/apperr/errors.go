// Package apperr defines the error taxonomy shared by the store, the resolver,
// the planner and the presentation layers.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrCycle          = errors.New("alias cycle")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotImplemented = errors.New("not implemented")
	ErrUnavailable    = errors.New("unavailable")
)
