package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cartify/api/internal/platform/requestctx"
)

func TestRequestLoggerRecordsResolvedUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A handler resolves the session mid-request and records the user.
		requestctx.WithUserID(r.Context(), "u1")
		w.WriteHeader(http.StatusOK)
	})
	chain := InjectLoggerMiddleware(logger)(RequestLoggerMiddleware("cartify-dev")(handler))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me/cart", nil))

	var completed *observer.LoggedEntry
	for _, entry := range logs.All() {
		if entry.Message == "request completed" {
			e := entry
			completed = &e
		}
	}
	if completed == nil {
		t.Fatalf("no completion entry logged")
	}
	fields := completed.ContextMap()
	if fields["user_id"] != "u1" {
		t.Fatalf("user_id = %v", fields["user_id"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Fatalf("status = %v", fields["status"])
	}
}

func TestRequestLoggerOmitsUserWhenUnresolved(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	chain := InjectLoggerMiddleware(logger)(RequestLoggerMiddleware("")(handler))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	for _, entry := range logs.All() {
		if entry.Message != "request completed" {
			continue
		}
		if _, ok := entry.ContextMap()["user_id"]; ok {
			t.Fatalf("user_id logged for an anonymous request")
		}
	}
}

func TestSanitizeLogFields(t *testing.T) {
	if got := SanitizeRoute(""); got != "/" {
		t.Fatalf("SanitizeRoute(\"\") = %q", got)
	}
	if got := SanitizeRoute("/v1/products\n{id}"); got != "/v1/products{id}" {
		t.Fatalf("SanitizeRoute = %q", got)
	}
	if got := SanitizeMethod("GE\x00T"); got != "GET" {
		t.Fatalf("SanitizeMethod = %q", got)
	}

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizeUserID(string(long)); len(got) != 64 {
		t.Fatalf("SanitizeUserID kept %d characters", len(got))
	}
	if got := SanitizeUserID(""); got != "" {
		t.Fatalf("SanitizeUserID(\"\") = %q", got)
	}
}
