package recordlog

import (
	"context"
	"errors"

	"github.com/kilianp07/baysim/core/model"
)

// MultiWriter appends to every writer.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a writer fanning out to ws. Nil writers are skipped.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	m := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// Len returns the number of wrapped writers.
func (m *MultiWriter) Len() int { return len(m.writers) }

// Append writes to all writers even when one fails and joins the errors.
func (m *MultiWriter) Append(ctx context.Context, runID string, recs []model.OutputRecord) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Append(ctx, runID, recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AppendBatched calls w.Append with at most size records per call.
func AppendBatched(ctx context.Context, w Writer, runID string, recs []model.OutputRecord, size int) error {
	if size <= 0 {
		size = len(recs)
	}
	for start := 0; start < len(recs); start += size {
		end := min(start+size, len(recs))
		if err := w.Append(ctx, runID, recs[start:end]); err != nil {
			return err
		}
	}
	return nil
}
