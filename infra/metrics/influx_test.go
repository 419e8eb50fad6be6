package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/baysim/core/metrics"
)

type influxRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *influxRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, strings.TrimSpace(string(data)))
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func stepEvent(t int, at time.Time) coremetrics.StepEvent {
	return coremetrics.StepEvent{
		RunID:     "run1",
		Policy:    "fcfs",
		TimeIndex: t,
		Bucket:    "winter_weekday_nighttime",
		Trucks:    1,
		Cars:      2,
		Empty:     7,
		PowerMW:   2.64,
		Arrivals:  3,
		Assigned:  3,
		Time:      at,
	}
}

func TestInfluxSink_RecordStepBatches(t *testing.T) {
	rec := &influxRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket").WithBatchSize(2)
	now := time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		if err := sink.RecordStep(stepEvent(i, now.Add(time.Duration(i)*15*time.Minute))); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}
	rec.mu.Lock()
	if len(rec.bodies) != 1 || strings.Count(rec.bodies[0], "\n") != 1 {
		t.Fatalf("expected one batch of two points, got %#v", rec.bodies)
	}
	rec.mu.Unlock()

	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	ev := stepEvent(3, now.Add(45*time.Minute))
	p := write.NewPointWithMeasurement("bay_step").
		AddTag("run_id", "run1").
		AddTag("policy", "fcfs").
		AddTag("bucket", "winter_weekday_nighttime").
		AddField("time_index", 3).
		AddField("trucks", 1).
		AddField("cars", 2).
		AddField("empty", 7).
		AddField("power_mw", 2.64).
		AddField("arrivals", 3).
		AddField("assigned", 3).
		AddField("queue_len", 0).
		AddField("dropped", 0).
		SetTime(ev.Time)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.bodies) != 2 || rec.bodies[1] != expected {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordRunFlushes(t *testing.T) {
	rec := &influxRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	if err := sink.RecordStep(stepEvent(1, time.Now())); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunEvent{RunID: "run1", Policy: "fcfs", Steps: 1, Bays: 10}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.bodies) != 2 {
		t.Fatalf("expected step batch and run point, got %#v", rec.bodies)
	}
	if !strings.HasPrefix(rec.bodies[0], "bay_step,") || !strings.HasPrefix(rec.bodies[1], "bay_run,") {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
