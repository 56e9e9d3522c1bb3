package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "throttlelab", cfg.ServiceName)
	assert.Equal(t, "http://localhost:14268/api/traces", cfg.JaegerURL)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInit_Disabled(t *testing.T) {
	tp, err := Init(DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSpansWithoutProvider(t *testing.T) {
	ctx, span := TraceActivation(context.Background(), 7)
	require.NotNil(t, span)
	defer span.End()

	AddSpanAttributes(ctx, attribute.Int("test.number", 42))
	RecordError(ctx, errors.New("boom"))

	_, storeSpan := TraceStoreWrite(ctx, "settings", 5)
	storeSpan.End()

	_, httpSpan := TraceHTTPRequest(ctx, "POST", "/api/v1/experiments")
	httpSpan.End()
}
