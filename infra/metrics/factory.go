package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/baysim/core/factory"
	coremetrics "github.com/kilianp07/baysim/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL       string `json:"url"`
			Token     string `json:"token"`
			Org       string `json:"org"`
			Bucket    string `json:"bucket"`
			BatchSize int    `json:"batch_size"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		sink := NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket)
		if is, ok := sink.(*InfluxSink); ok {
			is.WithBatchSize(c.BatchSize)
		}
		return sink, nil
	})

	_ = coremetrics.RegisterMetricsSink("energy", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			EmissionFactor float64 `json:"emission_factor"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewEnergySink(nil, c.EmissionFactor, prometheus.DefaultRegisterer)
	})
}
