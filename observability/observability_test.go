package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordOperation(ctx, "mediagen", "dalle", "ok", 50*time.Millisecond)
	metrics.RecordError(ctx, "TIMEOUT", "prodia")
	metrics.RecordPollCheck(ctx, "prodia", "pending")
	metrics.RecordArtifact(ctx, "prodia", 1024)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordOperation(ctx, "svc", "op", "ok", time.Millisecond)
	m.RecordError(ctx, "x", "y")
	m.RecordPollCheck(ctx, "p", "running")
	m.RecordArtifact(ctx, "p", 1)
}

func TestMetrics_PollChecksCollected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	metrics.RecordPollCheck(ctx, "leonardo", "pending")
	metrics.RecordPollCheck(ctx, "leonardo", "pending")
	metrics.RecordPollCheck(ctx, "leonardo", "succeeded")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "poll.checks" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("expected int64 sum, got %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 3 {
		t.Errorf("expected 3 poll checks, got %d", total)
	}
}

func TestStartSpan_Recorded(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), "mediagen.prodia")
	SetSpanAttribute(ctx, AttrProvider, "prodia")
	SetSpanAttribute(ctx, AttrBytes, int64(10))
	SetSpanAttribute(ctx, "unsupported", struct{}{})
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "mediagen.prodia" {
		t.Errorf("expected span name mediagen.prodia, got %q", spans[0].Name)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestSpanHelpers_NoSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span"))
	AddSpanEvent(ctx, "checked")
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "mediagen", "dev", "development", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
}

func TestSampler(t *testing.T) {
	for _, rate := range []float64{0, 0.5, 1} {
		if sampler(rate) == nil {
			t.Errorf("expected sampler for rate %f", rate)
		}
	}
}
