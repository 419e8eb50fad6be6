// Package queue holds vehicles waiting for a free bay in arrival order.
package queue

import (
	"fmt"

	"github.com/kilianp07/baysim/core/model"
)

// DropPolicy selects which request is discarded when a bounded queue is full.
type DropPolicy string

const (
	DropNewest DropPolicy = "drop_newest"
	DropOldest DropPolicy = "drop_oldest"
)

// ParseDropPolicy validates a drop policy name. Empty means DropNewest.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch DropPolicy(s) {
	case "", DropNewest:
		return DropNewest, nil
	case DropOldest:
		return DropOldest, nil
	default:
		return "", fmt.Errorf("%w: unknown drop policy %q", model.ErrConfiguration, s)
	}
}

// Queue is a FIFO of requests. A zero capacity means unbounded.
type Queue struct {
	items    []model.Request
	capacity int
	policy   DropPolicy
	dropped  int
}

// New returns an unbounded queue.
func New() *Queue { return &Queue{} }

// NewBounded returns a queue holding at most capacity requests.
func NewBounded(capacity int, policy DropPolicy) (*Queue, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: queue capacity %d < 0", model.ErrConfiguration, capacity)
	}
	p, err := ParseDropPolicy(string(policy))
	if err != nil {
		return nil, err
	}
	return &Queue{capacity: capacity, policy: p}, nil
}

// Push appends r. On a full bounded queue one request is discarded and
// returned with dropped set.
func (q *Queue) Push(r model.Request) (discarded model.Request, dropped bool) {
	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.dropped++
		if q.policy == DropOldest {
			discarded = q.items[0]
			q.items = append(q.items[1:], r)
			return discarded, true
		}
		return r, true
	}
	q.items = append(q.items, r)
	return model.Request{}, false
}

// Pop removes and returns the head. Popping an empty queue is an invariant
// violation: callers must check Len first.
func (q *Queue) Pop() (model.Request, error) {
	if len(q.items) == 0 {
		return model.Request{}, fmt.Errorf("%w: pop on empty queue", model.ErrInvariantViolation)
	}
	r := q.items[0]
	q.items[0] = model.Request{}
	q.items = q.items[1:]
	return r, nil
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (model.Request, bool) {
	if len(q.items) == 0 {
		return model.Request{}, false
	}
	return q.items[0], true
}

// Len returns the number of waiting requests.
func (q *Queue) Len() int { return len(q.items) }

// Dropped returns how many requests were discarded since creation.
func (q *Queue) Dropped() int { return q.dropped }

// Items returns a copy of the waiting requests, head first.
func (q *Queue) Items() []model.Request {
	return append([]model.Request(nil), q.items...)
}
