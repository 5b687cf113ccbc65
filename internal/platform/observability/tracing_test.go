package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer() (*tracetest.SpanRecorder, trace.Tracer) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, tp.Tracer("test")
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestHTTPTracingNamesSpanAfterRoute(t *testing.T) {
	sr, tracer := setupTestTracer()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/campaigns/{campaign_id}/workflow/state", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	HTTPTracing(tracer, mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/campaigns/c1/workflow/state", nil))

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "GET /v1/campaigns/{campaign_id}/workflow/state" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}
	status, ok := attrValue(spans[0].Attributes(), "http.response.status_code")
	if !ok || status.AsInt64() != http.StatusNotFound {
		t.Fatalf("expected status attribute 404, got %v", status)
	}
	if spans[0].Status().Code == codes.Error {
		t.Fatalf("4xx must not mark the span as failed")
	}
}

func TestHTTPTracingMarksServerErrors(t *testing.T) {
	sr, tracer := setupTestTracer()
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	HTTPTracing(tracer, handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Fatalf("expected one failed span, got %+v", spans)
	}
}

func TestTraceOperationRecordsError(t *testing.T) {
	sr, tracer := setupTestTracer()
	err := TraceOperation(context.Background(), tracer, "workflow.outbox.relay", func(context.Context) error {
		return errors.New("publish failed")
	}, attribute.String("relay", "workflow"))
	if err == nil {
		t.Fatalf("expected error to pass through")
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error || len(spans[0].Events()) == 0 {
		t.Fatalf("expected error status and recorded event")
	}
	if value, ok := attrValue(spans[0].Attributes(), "relay"); !ok || value.AsString() != "workflow" {
		t.Fatalf("expected relay attribute")
	}
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	for _, tc := range []struct {
		endpoint string
		enabled  bool
	}{
		{"", true},
		{"http://192.0.2.1:4318", false},
	} {
		shutdown, err := Setup(context.Background(), "test-service", tc.endpoint, tc.enabled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown error: %v", err)
		}
	}
}
