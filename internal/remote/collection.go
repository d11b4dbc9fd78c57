// Package remote defines the abstract collaborators the core depends on:
// the hosted document store and the authentication provider. The core never
// blocks inside its own operations; implementations of these interfaces own
// all I/O, timeouts and cancellation.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is an opaque stored record: an identifier plus a field map.
type Document struct {
	ID   string
	Data map[string]any
}

// StoreError categorises failures raised by ItemCollection implementations.
// Collaborator errors are passed through verbatim; the core does not
// reclassify them.
type StoreError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether the error describes a missing document.
func IsNotFound(err error) bool {
	var storeErr StoreError
	return errors.As(err, &storeErr) && storeErr.IsNotFound()
}

// IsUnavailable reports whether the error describes a transient outage.
func IsUnavailable(err error) bool {
	var storeErr StoreError
	return errors.As(err, &storeErr) && storeErr.IsUnavailable()
}

// ItemCollection is the hosted document store boundary: list/query by field
// equality, upsert/update/delete by identifier, and a change subscription
// that replays the current set before emitting updates.
type ItemCollection interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Query(ctx context.Context, collection, field string, equals any) ([]Document, error)
	Upsert(ctx context.Context, collection string, doc Document) error
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Listen subscribes to the collection. onChange receives the full
	// current set first and again after every change; onError receives
	// terminal subscription failures. The returned stop function cancels
	// the subscription.
	Listen(ctx context.Context, collection string, onChange func([]Document), onError func(error)) (stop func(), err error)
}

// SessionSource is the authentication provider boundary. The current user
// identifier is empty when nobody is signed in.
type SessionSource interface {
	CurrentUserID(ctx context.Context) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
}

// Encode converts a JSON-encodable value into a Document with the given
// identifier.
func Encode(id string, value any) (Document, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Document{}, fmt.Errorf("remote: encode document %s: %w", id, err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Document{}, fmt.Errorf("remote: encode document %s: %w", id, err)
	}
	return Document{ID: id, Data: data}, nil
}

// Decode unmarshals a document's field map into the target value.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("remote: decode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("remote: decode document %s: %w", doc.ID, err)
	}
	return nil
}
