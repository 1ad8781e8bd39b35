package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func Test_ContextHandler_Handle(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	testCases := []struct {
		name          string
		ctx           context.Context
		expectReqID   any
		expectTraceID any
		expectSpanID  any
	}{
		{
			name: "No context values",
			ctx:  context.Background(),
		},
		{
			name:        "Request ID only",
			ctx:         context.WithValue(context.Background(), middleware.RequestIDKey, "req-1"),
			expectReqID: "req-1",
		},
		{
			name:          "Request and trace IDs",
			ctx:           trace.ContextWithSpanContext(context.WithValue(context.Background(), middleware.RequestIDKey, "req-2"), spanCtx),
			expectReqID:   "req-2",
			expectTraceID: traceID.String(),
			expectSpanID:  spanID.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))
			// when
			logger.InfoContext(tc.ctx, "hello")
			// then
			record := decode(t, &buf)
			assert.Equal(t, tc.expectReqID, record["request_id"])
			assert.Equal(t, tc.expectTraceID, record["trace_id"])
			assert.Equal(t, tc.expectSpanID, record["span_id"])
		})
	}
}

func Test_ContextHandler_WithAttrsKeepsEnrichment(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "rest").WithGroup("g")
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-3")
	// when
	logger.InfoContext(ctx, "hello", "k", "v")
	// then
	record := decode(t, &buf)
	assert.Equal(t, "rest", record["component"])
	group, ok := record["g"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v", group["k"])
	assert.Equal(t, "req-3", group["request_id"])
}
