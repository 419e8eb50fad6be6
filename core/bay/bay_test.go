package bay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/baysim/core/model"
)

func truck(d int) model.Request {
	return model.Request{Class: model.ClassTruck, Duration: d, PowerMW: 2.2}
}

func car(d int) model.Request {
	return model.Request{Class: model.ClassCar, Duration: d, PowerMW: 0.22}
}

func TestNewRejectsEmptyPool(t *testing.T) {
	_, err := New(0)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestOccupationLastsDuration(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)

	// step 1
	p.Tick()
	require.NoError(t, p.Assign(0, truck(3)))
	assert.Equal(t, []model.VehicleClass{model.ClassTruck}, p.Snapshot())

	// steps 2 and 3 keep the truck
	for step := 2; step <= 3; step++ {
		p.Tick()
		assert.Empty(t, p.Free(), "step %d", step)
		assert.Equal(t, model.ClassTruck, p.Bay(0).Occupant)
	}

	// step 4 releases it
	p.Tick()
	assert.Equal(t, []int{0}, p.Free())
	assert.Equal(t, 0.0, p.TotalPowerMW())
	require.NoError(t, p.CheckInvariants())
}

func TestDurationOneReleasesNextStep(t *testing.T) {
	p, _ := New(2)
	p.Tick()
	require.NoError(t, p.Assign(1, car(1)))
	assert.Equal(t, []int{0}, p.Free())
	p.Tick()
	assert.Equal(t, []int{0, 1}, p.Free())
}

func TestAssignErrors(t *testing.T) {
	p, _ := New(2)
	require.NoError(t, p.Assign(0, truck(2)))

	err := p.Assign(0, car(1))
	var ie *InvariantError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 0, ie.Bay)
	assert.True(t, errors.Is(err, model.ErrInvariantViolation))

	assert.ErrorIs(t, p.Assign(5, car(1)), model.ErrInvariantViolation)
	assert.ErrorIs(t, p.Assign(-1, car(1)), model.ErrInvariantViolation)
	assert.ErrorIs(t, p.Assign(1, car(0)), model.ErrInvariantViolation)
	assert.ErrorIs(t, p.Assign(1, model.Request{Duration: 1}), model.ErrInvariantViolation)
}

func TestCountsAndPower(t *testing.T) {
	p, _ := New(4)
	require.NoError(t, p.Assign(0, truck(3)))
	require.NoError(t, p.Assign(2, car(2)))
	require.NoError(t, p.Assign(3, car(1)))

	trucks, cars := p.Counts()
	assert.Equal(t, 1, trucks)
	assert.Equal(t, 2, cars)
	assert.Equal(t, 2.64, p.TotalPowerMW())
	assert.Equal(t, []int{1}, p.Free())
	assert.Len(t, p.Occupied(), 3)
}

func TestCheckInvariantsDetectsCorruption(t *testing.T) {
	p, _ := New(2)
	require.NoError(t, p.CheckInvariants())

	p.bays[1].Remaining = 2
	assert.ErrorIs(t, p.CheckInvariants(), model.ErrInvariantViolation)

	p.bays[1] = Bay{PowerMW: 1}
	assert.ErrorIs(t, p.CheckInvariants(), model.ErrInvariantViolation)

	p.bays[1] = Bay{Occupant: model.ClassCar, Remaining: -1}
	assert.ErrorIs(t, p.CheckInvariants(), model.ErrInvariantViolation)
}
