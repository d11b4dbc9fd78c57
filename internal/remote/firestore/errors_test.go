package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cartify/api/internal/remote"
)

func TestWrapErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		code        codes.Code
		notFound    bool
		unavailable bool
	}{
		{"not found", codes.NotFound, true, false},
		{"unavailable", codes.Unavailable, false, true},
		{"resource exhausted", codes.ResourceExhausted, false, true},
		{"internal", codes.Internal, false, true},
		{"permission denied", codes.PermissionDenied, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapError("firestore: list items", status.Error(tt.code, "boom"))
			if got := remote.IsNotFound(wrapped); got != tt.notFound {
				t.Fatalf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := remote.IsUnavailable(wrapped); got != tt.unavailable {
				t.Fatalf("IsUnavailable = %v, want %v", got, tt.unavailable)
			}
		})
	}
}

func TestWrapErrorConflictCodes(t *testing.T) {
	for _, code := range []codes.Code{codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted} {
		wrapped := wrapError("firestore: upsert", status.Error(code, "boom"))
		var storeErr remote.StoreError
		if !errors.As(wrapped, &storeErr) || !storeErr.IsConflict() {
			t.Fatalf("code %v: expected a conflict store error, got %v", code, wrapped)
		}
	}
}

func TestWrapErrorPassesContextErrors(t *testing.T) {
	if got := wrapError("op", context.Canceled); got != context.Canceled {
		t.Fatalf("context.Canceled rewrapped as %v", got)
	}
	if got := wrapError("op", status.Error(codes.DeadlineExceeded, "late")); got != context.DeadlineExceeded {
		t.Fatalf("grpc deadline = %v, want context.DeadlineExceeded", got)
	}
	if got := wrapError("op", nil); got != nil {
		t.Fatalf("nil error wrapped as %v", got)
	}
}

func TestWrapErrorKeepsExistingStoreError(t *testing.T) {
	original := classify("firestore: delete carts", status.Error(codes.NotFound, "missing"))
	wrapped := wrapError("firestore: outer", original)
	if wrapped != error(original) {
		t.Fatalf("existing store error replaced: %v", wrapped)
	}
	if !remote.IsNotFound(wrapped) {
		t.Fatalf("classification lost on rewrap")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := classify("firestore: list items", errors.New("boom"))
	if got := err.Error(); got != "firestore: list items: boom" {
		t.Fatalf("Error() = %q", got)
	}
}
