package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/typedflow/config"
	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/logger"
	"github.com/kbukum/typedflow/observability"
)

func installTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestRunSpan(t *testing.T) {
	exporter := installTracer(t)

	f := mustFlow(t, Sum[int]()).With(WithName("totals"), WithTracing(true))
	if _, err := f.Call(context.Background(), ints(4)); err != nil {
		t.Fatalf("Call: %v", err)
	}
	_, err := f.Call(context.Background(), []int{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	_, err = mustFlow(t, NewFold(add)).With(WithTracing(true)).Call(context.Background(), []int{})
	wantCode(t, err, errors.ErrCodeEmptyStream)

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	first := spans[0]
	if first.Name != observability.SpanFlowRun {
		t.Errorf("span name = %q", first.Name)
	}
	got := make(map[string]string)
	for _, kv := range first.Attributes {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got[observability.AttrOutputs] != `["total"]` {
		t.Errorf("outputs attribute = %q", got[observability.AttrOutputs])
	}
	if got[observability.AttrFlowName] != "totals" {
		t.Errorf("flow name attribute = %q", got[observability.AttrFlowName])
	}
	if got[observability.AttrItems] != "4" {
		t.Errorf("items attribute = %q", got[observability.AttrItems])
	}
	if got[observability.AttrRunID] == "" {
		t.Error("expected a run id attribute")
	}
	if spans[2].Status.Code != codes.Error {
		t.Errorf("expected failed run span to carry error status, got %v", spans[2].Status)
	}
}

func TestOpenPipeSpan(t *testing.T) {
	exporter := installTracer(t)
	p, err := Open(square)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := p.With(WithTracing(true), WithName("sq")).Call(3); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if _, err := p.Call(3); err != nil {
		t.Fatalf("Call: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != observability.SpanFlowCall {
		t.Fatalf("expected one %s span, got %v", observability.SpanFlowCall, spans)
	}
}

func TestRunMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	f := mustFlow(t, Sum[int]()).With(WithMetrics(metrics))
	for range 2 {
		if _, err := f.Call(context.Background(), ints(3)); err != nil {
			t.Fatalf("Call: %v", err)
		}
	}
	if _, err := f.Call(context.Background(), "bad input"); err == nil {
		t.Fatal("expected bad input to fail")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	want := map[string]int64{
		observability.MetricRuns:       3,
		observability.MetricItems:      6,
		observability.MetricErrors:     1,
		observability.MetricRunsActive: 0,
	}
	diff(t, want, sums)
}

func TestRunLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	f := mustFlow(t, square, NewSink(func(int) {})).With(WithLogger(log), WithName("squares"))
	if _, err := f.Call(context.Background(), ints(2), Bind("extra", 1)); err != nil {
		t.Fatalf("Call: %v", err)
	}

	var completed map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if entry["message"] == "flow run completed" {
			completed = entry
		}
	}
	if completed == nil {
		t.Fatalf("no completion entry in:\n%s", buf.String())
	}
	if completed[logger.FieldFlow] != "squares" {
		t.Errorf("flow = %v", completed[logger.FieldFlow])
	}
	if id, _ := completed[logger.FieldRunID].(string); id == "" {
		t.Error("expected run id on the completion entry")
	}
	if completed[logger.FieldItems] != float64(2) {
		t.Errorf("items = %v", completed[logger.FieldItems])
	}
	if !strings.Contains(buf.String(), "ignoring bindings that match no slot") {
		t.Error("expected the unused binding to be logged")
	}
}

func TestWithConfig(t *testing.T) {
	f := mustFlow(t, NewFold(add)).With(WithConfig(config.EngineConfig{EmptyFold: config.EmptyFoldAbsent}))
	res, err := f.Call(context.Background(), []int{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Len() != 0 {
		t.Errorf("expected no outputs, got %v", res.Names())
	}
}

func TestWithDoesNotModifyFlow(t *testing.T) {
	base := mustFlow(t, NewFold(add))
	_ = base.With(WithEmptyFold(EmptyFoldAbsent))
	_, err := base.Call(context.Background(), []int{})
	wantCode(t, err, errors.ErrCodeEmptyStream)
}
