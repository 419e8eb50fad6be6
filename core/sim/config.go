package sim

import (
	"fmt"

	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/demand"
	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/policy"
	"github.com/kilianp07/baysim/core/queue"
)

// Config gathers every constant of a run.
type Config struct {
	Bays     int
	Steps    int
	Seed     int64
	Policy   policy.Kind
	Calendar calendar.Calendar
	Shared   demand.SharedQueueModel
	Profile  demand.Profile

	// QueueCapacity bounds the FCFS queue; zero keeps it unbounded.
	QueueCapacity int
	DropPolicy    queue.DropPolicy

	// Separator overrides the policy's timestep type separator when set.
	Separator string
}

// DefaultConfig returns a one-year run over ten bays with the FCFS policy.
func DefaultConfig() Config {
	return Config{
		Bays:       10,
		Steps:      calendar.StepsPerYear,
		Seed:       1,
		Policy:     policy.KindFCFS,
		Calendar:   calendar.Default(),
		Shared:     demand.DefaultShared(),
		Profile:    demand.DefaultProfile(),
		DropPolicy: queue.DropNewest,
	}
}

// Validate checks the config before any step runs.
func (c Config) Validate() error {
	if c.Bays < 1 {
		return fmt.Errorf("%w: bays must be at least 1, got %d", model.ErrConfiguration, c.Bays)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", model.ErrConfiguration, c.Steps)
	}
	if _, err := policy.ParseKind(string(c.Policy)); err != nil {
		return err
	}
	if err := c.Calendar.Validate(); err != nil {
		return err
	}
	switch c.Policy {
	case policy.KindFCFS:
		if err := c.Shared.Validate(); err != nil {
			return err
		}
		if c.QueueCapacity < 0 {
			return fmt.Errorf("%w: queue capacity must not be negative", model.ErrConfiguration)
		}
		if _, err := queue.ParseDropPolicy(string(c.DropPolicy)); err != nil {
			return err
		}
	case policy.KindIndependent:
		if err := c.Profile.Validate(); err != nil {
			return err
		}
	}
	return nil
}
