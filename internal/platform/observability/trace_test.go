package observability

import (
	"testing"
)

func TestParseTraceHeader(t *testing.T) {
	traceID := "105445aa7843bc8bf206b12000100000"

	tests := []struct {
		name    string
		header  string
		ok      bool
		spanID  string
		sampled bool
	}{
		{
			name:   "decimal span id",
			header: traceID + "/1;o=1",
			ok:     true, spanID: "0000000000000001", sampled: true,
		},
		{
			name:   "large decimal span id",
			header: traceID + "/4660;o=0",
			ok:     true, spanID: "0000000000001234", sampled: false,
		},
		{
			name:   "hex span id",
			header: traceID + "/00f067aa0ba902b7",
			ok:     true, spanID: "00f067aa0ba902b7", sampled: false,
		},
		{name: "missing span", header: traceID, ok: false},
		{name: "bad trace id", header: "zzz/1;o=1", ok: false},
		{name: "zero span id", header: traceID + "/0", ok: false},
		{name: "empty", header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spanCtx, ok := parseTraceHeader(tt.header)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got := spanCtx.TraceID().String(); got != traceID {
				t.Fatalf("trace id = %s", got)
			}
			if got := spanCtx.SpanID().String(); got != tt.spanID {
				t.Fatalf("span id = %s, want %s", got, tt.spanID)
			}
			if spanCtx.IsSampled() != tt.sampled {
				t.Fatalf("sampled = %v, want %v", spanCtx.IsSampled(), tt.sampled)
			}
			if !spanCtx.IsRemote() {
				t.Fatalf("span context should be remote")
			}
		})
	}
}
