package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/iliyamo/skillswap/internal/config"
)

func TestNewLogger_JSONWithTraceIDs(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	log := NewLogger("prod", &buf)

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello", "k", "v")
	span.End()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "v", rec["k"])
	require.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
}

func TestNewLogger_Level(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	log := NewLogger("dev", &buf)
	log.Info("dropped")
	require.Zero(t, buf.Len())
	log.Warn("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{ServiceName: "skillswap-test"}, "test")
	require.NoError(t, err)
	require.NotNil(t, Tracer)
	require.NoError(t, shutdown(context.Background()))
}
