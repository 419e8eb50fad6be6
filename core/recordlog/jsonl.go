package recordlog

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/kilianp07/baysim/core/model"
)

// JSONLStore stores one JSON entry per line in a file.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONLStore creates the file and its directory when missing.
func NewJSONLStore(path string) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(ctx context.Context, runID string, recs []model.OutputRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w := bufio.NewWriter(f)
	if err := encodeEntries(ctx, w, runID, recs); err != nil {
		return err
	}
	return w.Flush()
}

func (s *JSONLStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return scanEntries(ctx, f, q, nil)
}

func (s *JSONLStore) Close() error { return nil }

func encodeEntries(ctx context.Context, w io.Writer, runID string, recs []model.OutputRecord) error {
	enc := json.NewEncoder(w)
	for i, r := range recs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := enc.Encode(Entry{RunID: runID, OutputRecord: r}); err != nil {
			return err
		}
	}
	return nil
}

// scanEntries appends matching lines of r to res. Malformed lines are
// skipped.
func scanEntries(ctx context.Context, r io.Reader, q Query, res []Entry) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if q.full(len(res)) {
			break
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if q.Match(e) {
			res = append(res, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, ctx.Err()
}
