package tracing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestStartClientAndEnd(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	saved := tracer
	tracer = tp.Tracer("test")
	t.Cleanup(func() { tracer = saved })

	_, ok := StartClient(context.Background(), "booksapi.fetch", attribute.String("books.query", "go"))
	End(ok, nil)
	_, failed := StartClient(context.Background(), "imagecache.download")
	End(failed, errors.New("HTTP 503"))
	_, cancelled := StartClient(context.Background(), "booksapi.fetch")
	End(cancelled, fmt.Errorf("superseded: %w", context.Canceled))

	spans := rec.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.String("books.query", "go"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "HTTP 503", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1)

	assert.Equal(t, codes.Unset, spans[2].Status().Code)
}
