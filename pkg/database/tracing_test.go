package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// traceExporter installs an in-memory exporter as the global provider for the
// duration of one test.
func traceExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

// slowQueryLog captures everything the slow-query logger writes during the
// test and restores the disabled state afterwards.
func slowQueryLog(t *testing.T, threshold time.Duration) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetSlowQueryLogging(threshold, slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })
	return &buf
}

func TestTraceQuery_SpanAttributes(t *testing.T) {
	exporter := traceExporter(t)

	const stmt = "SELECT id, title, slug FROM products WHERE id = $1"
	_, end := TraceQuery(context.Background(), "GetProduct", stmt)
	end(nil)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	span := spans[0]
	assert.Equal(t, "db.GetProduct", span.Name)
	assert.Equal(t, codes.Unset, span.Status.Code)

	attrs := make(map[string]string, len(span.Attributes))
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, "GetProduct", attrs["db.operation"])
	assert.Equal(t, stmt, attrs["db.statement"])
}

func TestTraceQuery_ErrorRecordedOnSpan(t *testing.T) {
	exporter := traceExporter(t)

	_, end := TraceQuery(context.Background(), "UpdateProduct", "UPDATE products SET title = $1 WHERE id = $2")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "the error should appear as a span event")
}

func TestTraceQuery_ChildOfAmbientSpan(t *testing.T) {
	exporter := traceExporter(t)

	ctx, parent := otel.Tracer("handler").Start(context.Background(), "ListOrders")
	_, end := TraceQuery(ctx, "ListOrders", "SELECT * FROM orders ORDER BY created_at DESC")
	end(nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
}

func TestSlowQueryLogging_LogsPastThreshold(t *testing.T) {
	traceExporter(t)
	buf := slowQueryLog(t, time.Nanosecond)

	_, end := TraceQuery(context.Background(), "ComputeProfit", "SELECT SUM(total) FROM orders")
	end(nil)

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "ComputeProfit")
	assert.Contains(t, out, "SELECT SUM(total) FROM orders")
}

func TestSlowQueryLogging_QuietUnderThreshold(t *testing.T) {
	traceExporter(t)
	buf := slowQueryLog(t, time.Hour)

	_, end := TraceQuery(context.Background(), "GetCategory", "SELECT 1")
	end(nil)

	assert.Empty(t, buf.String())
}

func TestSlowQueryLogging_Disabled(t *testing.T) {
	traceExporter(t)
	SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "GetCategory", "SELECT 1")
	end(nil) // must not panic with no logger configured
}

func TestSlowQueryLogging_IncludesError(t *testing.T) {
	traceExporter(t)
	buf := slowQueryLog(t, time.Nanosecond)

	_, end := TraceQuery(context.Background(), "CreateProduct", "INSERT INTO products (title) VALUES ($1)")
	end(errors.New("unique constraint violation"))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "unique constraint violation")
}

func TestSetSlowQueryLogging_ConcurrentWithQueries(t *testing.T) {
	traceExporter(t)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()

	for i := 0; i < 100; i++ {
		_, end := TraceQuery(context.Background(), "GetCategory", "SELECT 1")
		end(nil)
	}

	<-done
}
