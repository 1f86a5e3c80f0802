// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kryptoslab/kryptos/internal/telemetry"
)

func setupNoopProvider(t *testing.T) {
	t.Helper()
	_, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:     false,
		ServiceName: "test",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
}

// setupSpanRecorder installs a recording tracer provider for the duration of
// the test and returns the recorder.
func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
	})
	return sr
}

func TestTracing_Success(t *testing.T) {
	setupNoopProvider(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if span := trace.SpanFromContext(r.Context()); span == nil {
			t.Error("expected span in context")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	tracedHandler := OTelHTTP("test-tracer")(Tracing()(handler))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	tracedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("expected body 'OK', got %s", rec.Body.String())
	}
}

func TestTracing_ServerError(t *testing.T) {
	setupNoopProvider(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tracedHandler := OTelHTTP("test-tracer")(Tracing()(handler))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crack", nil)
	rec := httptest.NewRecorder()
	tracedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestStackEmitsServerSpans(t *testing.T) {
	sr := setupSpanRecorder(t)

	r := NewRouter(StackConfig{TracingService: "kryptosd"})
	r.Method(http.MethodGet, "/api/v1/ciphers", okHandler())
	r.Method(http.MethodGet, "/healthz", okHandler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ciphers", nil))

	// Health endpoints are filtered and must not produce spans.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "kryptosd /api/v1/ciphers" {
		t.Errorf("unexpected span name %q", span.Name())
	}

	var gotStatus int64 = -1
	for _, attr := range span.Attributes() {
		if string(attr.Key) == telemetry.HTTPStatusCodeKey {
			gotStatus = attr.Value.AsInt64()
		}
	}
	if gotStatus != http.StatusOK {
		t.Errorf("expected %s attribute 200, got %d", telemetry.HTTPStatusCodeKey, gotStatus)
	}
}

func TestShouldTrace(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/healthz", false},
		{"/readyz", false},
		{"/metrics", false},
		{"/api/v1/crack", true},
		{"/api/v1/jobs", true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := shouldTrace(r); got != tt.want {
			t.Errorf("shouldTrace(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
