package scenarios

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/core/policy"
	"github.com/kilianp07/baysim/core/sim"
)

// Config converts the scenario into driver settings.
func (sc *Scenario) Config() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	kind, err := policy.ParseKind(sc.Policy)
	if err != nil {
		return sim.Config{}, err
	}
	cfg.Policy = kind
	cfg.Bays = sc.Bays
	cfg.Steps = sc.Steps
	cfg.Seed = sc.Seed
	cfg.Shared = sc.Shared
	if kind == policy.KindIndependent {
		cfg.Profile = sc.Independent.Apply()
	}
	return cfg, cfg.Validate()
}

// RunScenario executes sc and checks its expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	cfg, err := sc.Config()
	require.NoError(t, err)

	var assignedAt []int
	d, err := sim.New(cfg, sim.WithObserver(sim.StepObserverFunc(func(_ context.Context, ev sim.StepEvent) error {
		if len(ev.Outcome.Assignments) > 0 {
			assignedAt = append(assignedAt, ev.Record.TimeIndex)
		}
		return nil
	})))
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	exp := sc.Expected
	assert.Len(t, res.Records, exp.Records, "records")
	if exp.AssignedAt != nil {
		assert.Equal(t, exp.AssignedAt, assignedAt, "assigned at")
	}
	if exp.Assigned != nil {
		assert.Equal(t, *exp.Assigned, res.Assigned, "assigned")
	}
	if exp.Pending != nil {
		assert.Len(t, res.Pending, *exp.Pending, "pending")
	}
	if exp.InFlight != nil {
		assert.Len(t, res.InFlight, *exp.InFlight, "in flight")
	}
	for i, rec := range res.Records {
		if i < len(exp.Trucks) {
			assert.Equal(t, exp.Trucks[i], rec.TotalTrucks, "trucks at t=%d", rec.TimeIndex)
		}
		if i < len(exp.Cars) {
			assert.Equal(t, exp.Cars[i], rec.TotalCars, "cars at t=%d", rec.TimeIndex)
		}
		if i < len(exp.TimestepTypes) {
			assert.Equal(t, exp.TimestepTypes[i], rec.TimestepType, "type at t=%d", rec.TimeIndex)
		}
		trucks, cars := 0, 0
		for _, c := range rec.Bays {
			switch c {
			case model.ClassTruck:
				trucks++
			case model.ClassCar:
				cars++
			}
		}
		assert.Equal(t, rec.TotalTrucks, trucks, "truck total at t=%d", rec.TimeIndex)
		assert.Equal(t, rec.TotalCars, cars, "car total at t=%d", rec.TimeIndex)
	}
}
