package policy

import (
	"fmt"

	"github.com/kilianp07/baysim/core/bay"
	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/demand"
	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/queue"
)

// FCFS serves a shared queue in arrival order, lowest bay index first.
type FCFS struct {
	model SharedModel
	src   demand.Source
	queue *queue.Queue
	seq   int
	sep   string
}

// SharedModel generates the arrivals of one step.
type SharedModel interface {
	Arrivals(t int, b calendar.Bucket, src demand.Source) []model.Request
}

// NewFCFS builds the policy. A nil queue means unbounded.
func NewFCFS(m SharedModel, src demand.Source, q *queue.Queue) *FCFS {
	if q == nil {
		q = queue.New()
	}
	return &FCFS{model: m, src: src, queue: q, sep: "-"}
}

// WithSeparator overrides the timestep type separator.
func (f *FCFS) WithSeparator(sep string) *FCFS {
	f.sep = sep
	return f
}

func (f *FCFS) Name() string      { return string(KindFCFS) }
func (f *FCFS) Separator() string { return f.sep }

// Allocate enqueues this step's arrivals, then fills free bays from the head
// of the queue until either runs out.
func (f *FCFS) Allocate(t int, b calendar.Bucket, pool *bay.Pool) (Outcome, error) {
	arrivals := f.model.Arrivals(t, b, f.src)
	out := Outcome{Arrivals: len(arrivals)}
	for _, r := range arrivals {
		f.seq++
		r.Seq = f.seq
		if _, dropped := f.queue.Push(r); dropped {
			out.Dropped++
		}
	}
	for _, i := range pool.Free() {
		if f.queue.Len() == 0 {
			break
		}
		r, err := f.queue.Pop()
		if err != nil {
			return out, err
		}
		if err := pool.Assign(i, r); err != nil {
			return out, fmt.Errorf("assign queued request %d: %w", r.Seq, err)
		}
		out.Assignments = append(out.Assignments, Assignment{Bay: i, Request: r})
	}
	out.QueueLen = f.queue.Len()
	return out, nil
}

// Pending returns the waiting requests, head first.
func (f *FCFS) Pending() []model.Request { return f.queue.Items() }
