package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	svc, _, _ := newTestService(t, WithTracer(provider.Tracer("test")))
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", 10)
	require.NoError(t, err)
	_, err = svc.UpdateSchool(ctx, "", 11)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "registration.register", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	assert.Equal(t, "registration.update_school", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	var kind string
	for _, kv := range spans[1].Attributes {
		if kv.Key == "registration.error_kind" {
			kind = kv.Value.AsString()
		}
	}
	assert.Equal(t, "UNAUTHENTICATED", kind)
}
