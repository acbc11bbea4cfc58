package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTracer, prevEnabled := tracer, enabled
	tracer, enabled = tp.Tracer("test"), true
	t.Cleanup(func() {
		tracer, enabled = prevTracer, prevEnabled
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrs(kvs []attribute.KeyValue) map[attribute.Key]string {
	out := make(map[attribute.Key]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestEndHorizonRecordsOutlook(t *testing.T) {
	sr := recordSpans(t)

	ctx, span := StartSymbolSpan(context.Background(), "evidence.horizon.long", "005930.KS", HorizonKey.String("long"))
	EndHorizon(span, "favorable", "")

	traceID, spanID, ok := GetTraceFields(ctx)
	assert.True(t, ok)
	assert.NotEmpty(t, traceID)
	assert.NotEmpty(t, spanID)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	got := attrs(ended[0].Attributes())
	assert.Equal(t, "005930.KS", got[SymbolKey])
	assert.Equal(t, "long", got[HorizonKey])
	assert.Equal(t, "favorable", got[OutlookKey])
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
}

func TestEndHorizonRecordsError(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartSymbolSpan(context.Background(), "evidence.horizon.mid", "AAPL", HorizonKey.String("mid"))
	EndHorizon(span, "", "insufficient data for mid horizon: no price history")

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "insufficient data for mid horizon: no price history", ended[0].Status().Description)
	_, hasOutlook := attrs(ended[0].Attributes())[OutlookKey]
	assert.False(t, hasOutlook)
}

func TestStartSpanDisabledReturnsParent(t *testing.T) {
	prev := enabled
	enabled = false
	t.Cleanup(func() { enabled = prev })

	ctx := context.Background()
	got, span := StartSymbolSpan(ctx, "feed.IssuerInfo", "AAPL")
	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
	_, _, ok := GetTraceFields(got)
	assert.False(t, ok)
}
