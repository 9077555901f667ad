package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("kaiten", "test", exporter))

	ctx, visit := StartSpan(context.Background(), "group.visit", "INTERNAL")
	visit.WithAttributes(map[string]string{"group.id": "7"})
	active, ok := SpanFromContext(ctx)
	assert.True(t, ok)
	assert.NotNil(t, active)

	_, cook := StartSpan(ctx, "kitchen.cook", "PRODUCER")
	cook.AddEvent("placed", map[string]string{"slot": "3"})
	EndSpan(cook, nil)
	EndSpan(visit, errors.New("evacuated"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "kitchen.cook", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, "evacuated", spans[1].Status.Description)

	_, ok = SpanFromContext(context.Background())
	assert.False(t, ok)
	EndSpan(nil, nil)
}
