package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cartify/api/internal/remote"
)

// Collection implements remote.ItemCollection on top of Firestore.
type Collection struct {
	provider *Provider
}

// NewCollection constructs a Collection backed by the given Provider.
func NewCollection(provider *Provider) (*Collection, error) {
	if provider == nil {
		return nil, errors.New("firestore: provider is required")
	}
	return &Collection{provider: provider}, nil
}

// List returns every document in the named collection.
func (c *Collection) List(ctx context.Context, collection string) ([]remote.Document, error) {
	op := fmt.Sprintf("firestore: list %s", collection)
	ref, err := c.ref(ctx, collection, op)
	if err != nil {
		return nil, err
	}

	snaps, err := ref.Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapError(op, err)
	}
	return toDocuments(snaps), nil
}

// Query returns the documents whose field equals the given value.
func (c *Collection) Query(ctx context.Context, collection, field string, equals any) ([]remote.Document, error) {
	op := fmt.Sprintf("firestore: query %s by %s", collection, field)
	if strings.TrimSpace(field) == "" {
		return nil, wrapError(op, status.Error(codes.InvalidArgument, "field is required"))
	}
	ref, err := c.ref(ctx, collection, op)
	if err != nil {
		return nil, err
	}

	snaps, err := ref.Where(field, "==", equals).Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapError(op, err)
	}
	return toDocuments(snaps), nil
}

// Upsert writes the document, replacing any existing document with the same id.
func (c *Collection) Upsert(ctx context.Context, collection string, doc remote.Document) error {
	op := fmt.Sprintf("firestore: upsert %s/%s", collection, doc.ID)
	if strings.TrimSpace(doc.ID) == "" {
		return wrapError(op, status.Error(codes.InvalidArgument, "document id is required"))
	}
	ref, err := c.ref(ctx, collection, op)
	if err != nil {
		return err
	}

	if _, err := ref.Doc(doc.ID).Set(ctx, doc.Data); err != nil {
		return wrapError(op, err)
	}
	return nil
}

// Update applies a partial field patch to an existing document.
func (c *Collection) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	op := fmt.Sprintf("firestore: update %s/%s", collection, id)
	if strings.TrimSpace(id) == "" {
		return wrapError(op, status.Error(codes.InvalidArgument, "document id is required"))
	}
	if len(patch) == 0 {
		return nil
	}
	ref, err := c.ref(ctx, collection, op)
	if err != nil {
		return err
	}

	updates := make([]firestore.Update, 0, len(patch))
	for path, value := range patch {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := ref.Doc(id).Update(ctx, updates); err != nil {
		return wrapError(op, err)
	}
	return nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (c *Collection) Delete(ctx context.Context, collection, id string) error {
	op := fmt.Sprintf("firestore: delete %s/%s", collection, id)
	if strings.TrimSpace(id) == "" {
		return wrapError(op, status.Error(codes.InvalidArgument, "document id is required"))
	}
	ref, err := c.ref(ctx, collection, op)
	if err != nil {
		return err
	}

	if _, err := ref.Doc(id).Delete(ctx); err != nil {
		return wrapError(op, err)
	}
	return nil
}

// Listen subscribes to the collection via Firestore snapshots. The callback
// receives the full document set on every change, starting with the current
// contents. The returned stop function cancels the subscription.
func (c *Collection) Listen(ctx context.Context, collection string, onChange func([]remote.Document), onError func(error)) (func(), error) {
	op := fmt.Sprintf("firestore: listen %s", collection)
	if onChange == nil {
		return nil, wrapError(op, status.Error(codes.InvalidArgument, "onChange callback is required"))
	}
	ref, err := c.ref(ctx, collection, op)
	if err != nil {
		return nil, err
	}

	listenCtx, stop := context.WithCancel(ctx)
	iter := ref.Snapshots(listenCtx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if listenCtx.Err() != nil {
					return
				}
				if onError != nil {
					onError(wrapError(op, err))
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				if listenCtx.Err() != nil {
					return
				}
				if onError != nil {
					onError(wrapError(op, err))
				}
				return
			}
			onChange(toDocuments(snaps))
		}
	}()

	return stop, nil
}

func (c *Collection) ref(ctx context.Context, collection, op string) (*firestore.CollectionRef, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, wrapError(op, status.Error(codes.InvalidArgument, "collection is required"))
	}
	client, err := c.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(collection), nil
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []remote.Document {
	docs := make([]remote.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, remote.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs
}
