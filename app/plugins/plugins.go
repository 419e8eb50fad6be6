// Package plugins links the built-in metrics sinks and record outputs into
// the binary so their registrations run.
package plugins

import (
	coremetrics "github.com/kilianp07/baysim/core/metrics"
	"github.com/kilianp07/baysim/core/recordlog"
	_ "github.com/kilianp07/baysim/infra/kafka"
	_ "github.com/kilianp07/baysim/infra/metrics"
	_ "github.com/kilianp07/baysim/infra/mqtt"
	_ "github.com/kilianp07/baysim/infra/postgres"
)

// MetricsSinks lists the available metrics sink types.
func MetricsSinks() []string { return coremetrics.SinkTypes() }

// Outputs lists the available record output types.
func Outputs() []string { return recordlog.WriterTypes() }
