// Package recordlog persists the per-step output records of simulation
// runs. Writers receive records in batches tagged with the run ID; Stores
// can also read them back with a Query.
package recordlog

import (
	"context"

	"github.com/kilianp07/baysim/core/model"
)

// Writer persists output records.
type Writer interface {
	Append(ctx context.Context, runID string, recs []model.OutputRecord) error
	Close() error
}

// Store is a Writer that can be queried.
type Store interface {
	Writer
	Query(ctx context.Context, q Query) ([]Entry, error)
}

// Entry is a stored record with its run.
type Entry struct {
	RunID string `json:"run_id"`
	model.OutputRecord
}

// Query filters stored records. Zero values match everything; From and To
// bound the time index inclusively.
type Query struct {
	RunID        string
	From         int
	To           int
	TimestepType string
	Limit        int
}

// Match reports whether e passes the filters other than Limit.
func (q Query) Match(e Entry) bool {
	if q.RunID != "" && e.RunID != q.RunID {
		return false
	}
	if q.From > 0 && e.TimeIndex < q.From {
		return false
	}
	if q.To > 0 && e.TimeIndex > q.To {
		return false
	}
	if q.TimestepType != "" && e.TimestepType != q.TimestepType {
		return false
	}
	return true
}

// full reports whether n results already satisfy the limit.
func (q Query) full(n int) bool { return q.Limit > 0 && n >= q.Limit }
