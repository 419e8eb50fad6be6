package app

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kilianp07/baysim/core/sim"
)

type progressObserver struct {
	bar *progressbar.ProgressBar
}

func newProgressObserver(w io.Writer, steps int) *progressObserver {
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &progressObserver{bar: bar}
}

func (p *progressObserver) OnStep(context.Context, sim.StepEvent) error {
	return p.bar.Add(1)
}

func (p *progressObserver) OnRunEnd(context.Context, sim.RunEvent) error {
	return p.bar.Finish()
}
