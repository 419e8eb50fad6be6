package monitoring

import (
	"errors"
	"testing"
)

func TestInitRoutesToCurrent(t *testing.T) {
	prev := Current()
	defer Init(prev)

	rec := &Recorder{}
	Init(rec)
	Init(nil)
	CaptureException(errors.New("boom"), map[string]string{"step": "4"})
	CaptureException(nil, nil)

	ev := rec.Events()
	if len(ev) != 1 {
		t.Fatalf("expected 1 event, got %d", len(ev))
	}
	if ev[0].Tags["step"] != "4" {
		t.Fatalf("tags lost: %v", ev[0].Tags)
	}
}
