package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/baysim/core/metrics"
	"github.com/kilianp07/baysim/infra/logger"
)

const defaultInfluxBatch = 500

// InfluxSink writes step events to an InfluxDB instance using the official
// client. Points are buffered and written in batches.
type InfluxSink struct {
	client    influxdb2.Client
	writeAPI  api.WriteAPIBlocking
	log       logger.Logger
	batchSize int

	mu      sync.Mutex
	pending []*write.Point
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:    client,
		writeAPI:  client.WriteAPIBlocking(org, bucket),
		log:       logger.New("influx-sink"),
		batchSize: defaultInfluxBatch,
	}
}

// WithBatchSize sets how many points are buffered before a write.
func (s *InfluxSink) WithBatchSize(n int) *InfluxSink {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep buffers the step as a bay_step point.
func (s *InfluxSink) RecordStep(ev coremetrics.StepEvent) error {
	p := write.NewPointWithMeasurement("bay_step").
		AddTag("run_id", ev.RunID).
		AddTag("policy", ev.Policy).
		AddTag("bucket", ev.Bucket).
		AddField("time_index", ev.TimeIndex).
		AddField("trucks", ev.Trucks).
		AddField("cars", ev.Cars).
		AddField("empty", ev.Empty).
		AddField("power_mw", round3(ev.PowerMW)).
		AddField("arrivals", ev.Arrivals).
		AddField("assigned", ev.Assigned).
		AddField("queue_len", ev.QueueLen).
		AddField("dropped", ev.Dropped).
		SetTime(ev.Time)
	s.mu.Lock()
	s.pending = append(s.pending, p)
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()
	if full {
		return s.Flush()
	}
	return nil
}

// RecordRun writes the run summary and flushes buffered points.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	if err := s.Flush(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("bay_run").
		AddTag("run_id", ev.RunID).
		AddTag("policy", ev.Policy).
		AddField("steps", ev.Steps).
		AddField("bays", ev.Bays).
		AddField("pending", ev.Pending).
		AddField("in_flight", ev.InFlight).
		AddField("dropped", ev.Dropped).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		AddField("failed", ev.Failed).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Flush writes buffered points.
func (s *InfluxSink) Flush() error {
	s.mu.Lock()
	pts := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(pts) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, pts...)
}

// Close flushes and releases the client.
func (s *InfluxSink) Close() error {
	err := s.Flush()
	s.client.Close()
	return err
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
