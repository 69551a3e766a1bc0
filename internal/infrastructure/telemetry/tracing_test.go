package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/purchase/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)
	lineID := uuid.New()

	_, span := telemetry.StartServiceSpan(context.Background(), "purchase_order", "update_line",
		telemetry.WithAttribute("line_id", lineID),
		telemetry.WithAttribute("moves", 3),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "purchase_order.update_line", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, lineID.String(), attrs["line_id"].AsString())
	assert.Equal(t, int64(3), attrs["moves"].AsInt64())
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, errors.New("boom"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestSetAttributesAndEvents(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.SetAttributes(span, "qty_to_remove", "2.5", 42, "skipped", "ok", true)
	telemetry.AddEvent(span, "moves_reduced", "count", int64(2))
	span.End()

	s := sr.Ended()[0]
	attrs := attrMap(s.Attributes())
	assert.Equal(t, "2.5", attrs["qty_to_remove"].AsString())
	assert.True(t, attrs["ok"].AsBool())
	_, hasSkipped := attrs["skipped"]
	assert.False(t, hasSkipped)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "moves_reduced", s.Events()[0].Name)
}

func TestHelpers_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.AddEvent(nil, "e")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
	})
}
