// Package sim runs the step loop: classify the timestep, advance bay
// timers, allocate demand through a policy and emit one record per step.
package sim
