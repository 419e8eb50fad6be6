package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/baysim/core/metrics"
)

func TestPromSink_RecordStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	ev := coremetrics.StepEvent{Policy: "fcfs", Trucks: 2, Cars: 1, Empty: 7, PowerMW: 4.62, Arrivals: 4, Assigned: 3, QueueLen: 1}
	for i := 0; i < 2; i++ {
		if err := sink.RecordStep(ev); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}

	expected := `
# HELP baysim_arrivals_total Vehicles that arrived
# TYPE baysim_arrivals_total counter
baysim_arrivals_total{policy="fcfs"} 8
`
	if err := testutil.CollectAndCompare(sink.arrivals, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.occupied.WithLabelValues("fcfs", "truck")); v != 2 {
		t.Errorf("expected 2 trucks, got %v", v)
	}
	if v := testutil.ToFloat64(sink.queue.WithLabelValues("fcfs")); v != 1 {
		t.Errorf("expected queue 1, got %v", v)
	}
	if c := testutil.CollectAndCount(sink.stepMW); c != 1 {
		t.Errorf("histogram not recorded")
	}

	if err := sink.RecordRun(coremetrics.RunEvent{Policy: "fcfs", Failed: true}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if v := testutil.ToFloat64(sink.runs.WithLabelValues("fcfs", "failed")); v != 1 {
		t.Errorf("expected 1 failed run, got %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
	if a.(*PromSink).arrivals != b.(*PromSink).arrivals {
		t.Fatalf("expected shared counter")
	}
}
