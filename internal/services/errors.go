package services

import (
	"context"
	"errors"

	"github.com/cartify/api/internal/remote"
)

// Shared sentinel errors. Each service wraps these with its own context so
// handlers can map them onto the wire taxonomy without inspecting messages.
var (
	// ErrInvalidInput indicates the caller supplied input that failed validation.
	ErrInvalidInput = errors.New("services: invalid input")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("services: not found")
	// ErrUnavailable indicates a dependency could not fulfil the request.
	ErrUnavailable = errors.New("services: unavailable")
	// ErrNoSession indicates the operation requires a signed-in user.
	ErrNoSession = errors.New("services: no active session")
)

// translateStoreError maps collaborator failures onto service sentinels.
// Context cancellations pass through untouched.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if remote.IsNotFound(err) {
		return ErrNotFound
	}
	return errors.Join(ErrUnavailable, err)
}

func isStoreNotFound(err error) bool {
	return remote.IsNotFound(err)
}
