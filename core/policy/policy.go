// Package policy decides which vehicles take the free bays of a step.
//
// Two policies are provided. FCFS pools arrivals in a shared queue and serves
// them strictly in arrival order. Independent lets every free bay draw its own
// arrival and never queues.
package policy

import (
	"fmt"

	"github.com/kilianp07/baysim/core/bay"
	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/model"
)

// Kind names a policy in configuration.
type Kind string

const (
	KindFCFS        Kind = "fcfs"
	KindIndependent Kind = "independent"
)

// ParseKind validates a policy name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFCFS, KindIndependent:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown policy %q", model.ErrConfiguration, s)
	}
}

// Assignment is one request installed in one bay.
type Assignment struct {
	Bay     int
	Request model.Request
}

// Outcome summarises one allocation step.
type Outcome struct {
	Arrivals    int
	Assignments []Assignment
	QueueLen    int // requests still waiting after allocation
	Dropped     int // requests discarded by a bounded queue this step
}

// Policy allocates demand to free bays. Implementations own any state that
// carries across steps, such as a waiting queue.
type Policy interface {
	Name() string
	// Separator joins bucket parts in the record's timestep type.
	Separator() string
	Allocate(t int, b calendar.Bucket, pool *bay.Pool) (Outcome, error)
	// Pending returns requests that arrived but were never served.
	Pending() []model.Request
}
