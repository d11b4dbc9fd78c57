package services

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/cartify/api/internal/remote"
)

// fakeStoreError implements remote.StoreError for failure injection.
type fakeStoreError struct {
	msg         string
	notFound    bool
	unavailable bool
}

func (e *fakeStoreError) Error() string       { return e.msg }
func (e *fakeStoreError) IsNotFound() bool    { return e.notFound }
func (e *fakeStoreError) IsConflict() bool    { return false }
func (e *fakeStoreError) IsUnavailable() bool { return e.unavailable }

func notFoundErr() error    { return &fakeStoreError{msg: "missing", notFound: true} }
func unavailableErr() error { return &fakeStoreError{msg: "backend down", unavailable: true} }

// fakeCollection is an in-memory remote.ItemCollection. Set failWith to make
// every call fail.
type fakeCollection struct {
	mu       sync.Mutex
	data     map[string]map[string]remote.Document
	failWith error
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{data: map[string]map[string]remote.Document{}}
}

func (f *fakeCollection) seed(collection string, docs ...remote.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[collection] == nil {
		f.data[collection] = map[string]remote.Document{}
	}
	for _, doc := range docs {
		f.data[collection][doc.ID] = doc
	}
}

func (f *fakeCollection) get(collection, id string) (remote.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.data[collection][id]
	return doc, ok
}

func (f *fakeCollection) List(_ context.Context, collection string) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]remote.Document, 0, len(f.data[collection]))
	for _, doc := range f.data[collection] {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeCollection) Query(_ context.Context, collection, field string, equals any) ([]remote.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []remote.Document
	for _, doc := range f.data[collection] {
		if reflect.DeepEqual(doc.Data[field], equals) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeCollection) Upsert(_ context.Context, collection string, doc remote.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if f.data[collection] == nil {
		f.data[collection] = map[string]remote.Document{}
	}
	f.data[collection][doc.ID] = doc
	return nil
}

func (f *fakeCollection) Update(_ context.Context, collection, id string, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	doc, ok := f.data[collection][id]
	if !ok {
		return notFoundErr()
	}
	for k, v := range patch {
		doc.Data[k] = v
	}
	f.data[collection][id] = doc
	return nil
}

func (f *fakeCollection) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.data[collection][id]; !ok {
		return notFoundErr()
	}
	delete(f.data[collection], id)
	return nil
}

func (f *fakeCollection) Listen(context.Context, string, func([]remote.Document), func(error)) (func(), error) {
	return func() {}, nil
}

// fakeAuth is an in-memory remote.SessionSource keyed by email.
type fakeAuth struct {
	mu          sync.Mutex
	accounts    map[string]string // email -> password
	uids        map[string]string // email -> uid
	currentUID  string
	signInErr   error
	signUpErr   error
	resetErr    error
	resetEmails []string
	nextUID     string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{accounts: map[string]string{}, uids: map[string]string{}, nextUID: "u1"}
}

func (f *fakeAuth) CurrentUserID(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentUID, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return "", f.signInErr
	}
	stored, ok := f.accounts[email]
	if !ok || stored != password {
		return "", errors.New("invalid credentials")
	}
	f.currentUID = f.uids[email]
	return f.currentUID, nil
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	if _, ok := f.accounts[email]; ok {
		return "", errors.New("email in use")
	}
	f.accounts[email] = password
	f.uids[email] = f.nextUID
	f.currentUID = f.nextUID
	return f.nextUID, nil
}

func (f *fakeAuth) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetEmails = append(f.resetEmails, email)
	return nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUID = ""
	return nil
}
