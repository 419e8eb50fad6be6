// Package scenarios runs YAML described simulation scenarios and checks
// their outcome.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/baysim/core/demand"
)

// IndependentOverride is applied to every bucket of the default profile.
// Empty parts keep the default.
type IndependentOverride struct {
	Arrival demand.Arrival      `yaml:"arrival"`
	Truck   demand.ClassProfile `yaml:"truck"`
	Car     demand.ClassProfile `yaml:"car"`
}

// Apply returns the default profile with the override applied.
func (o IndependentOverride) Apply() demand.Profile {
	p := demand.DefaultProfile()
	for k, bp := range p {
		if o.Arrival != (demand.Arrival{}) {
			bp.Arrival = o.Arrival
		}
		if len(o.Truck.Durations) > 0 {
			bp.Truck.Durations, bp.Truck.Weights = o.Truck.Durations, o.Truck.Weights
		}
		if len(o.Car.Durations) > 0 {
			bp.Car.Durations, bp.Car.Weights = o.Car.Durations, o.Car.Weights
		}
		p[k] = bp
	}
	return p
}

// Expected lists the checked outcomes. Nil fields are not checked.
type Expected struct {
	Records       int      `yaml:"records"`
	AssignedAt    []int    `yaml:"assigned_at,omitempty"`
	Assigned      *int     `yaml:"assigned,omitempty"`
	Pending       *int     `yaml:"pending,omitempty"`
	InFlight      *int     `yaml:"in_flight,omitempty"`
	Trucks        []int    `yaml:"trucks,omitempty"`
	Cars          []int    `yaml:"cars,omitempty"`
	TimestepTypes []string `yaml:"timestep_types,omitempty"`
}

// Scenario describes one run.
type Scenario struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Policy      string                  `yaml:"policy"`
	Bays        int                     `yaml:"bays"`
	Steps       int                     `yaml:"steps"`
	Seed        int64                   `yaml:"seed"`
	Shared      demand.SharedQueueModel `yaml:"shared"`
	Independent IndependentOverride     `yaml:"independent"`
	Expected    Expected                `yaml:"expected"`
}

// Load reads a scenario. Shared parameters not set in the file keep their
// defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := Scenario{Policy: "fcfs", Bays: 1, Seed: 1, Shared: demand.DefaultShared()}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
