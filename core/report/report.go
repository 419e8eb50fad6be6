// Package report aggregates the record table of a run per timestep type.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/model"
)

// StepHours is the length of one timestep in hours.
const StepHours = 0.25

// BucketSummary holds the statistics of the steps sharing a timestep type.
type BucketSummary struct {
	Bucket      string  `json:"bucket"`
	Steps       int     `json:"steps"`
	MeanPowerMW float64 `json:"mean_power_mw"`
	StdPowerMW  float64 `json:"std_power_mw"`
	PeakPowerMW float64 `json:"peak_power_mw"`
	MeanTrucks  float64 `json:"mean_trucks"`
	MeanCars    float64 `json:"mean_cars"`
	EnergyMWh   float64 `json:"energy_mwh"`
}

// Summary aggregates a whole run.
type Summary struct {
	Steps         int             `json:"steps"`
	EnergyMWh     float64         `json:"energy_mwh"`
	PeakPowerMW   float64         `json:"peak_power_mw"`
	MeanOccupancy float64         `json:"mean_occupancy"`
	Buckets       []BucketSummary `json:"buckets"`
}

type series struct {
	power, trucks, cars []float64
}

// Summarize computes the per bucket statistics. Buckets appear in calendar
// order; unrecognised timestep types follow in lexical order.
func Summarize(recs []model.OutputRecord) Summary {
	var s Summary
	if len(recs) == 0 {
		return s
	}
	groups := make(map[string]*series)
	all := make([]float64, 0, len(recs))
	var occupancy float64
	for _, r := range recs {
		g, ok := groups[r.TimestepType]
		if !ok {
			g = &series{}
			groups[r.TimestepType] = g
		}
		g.power = append(g.power, r.TotalPowerMW)
		g.trucks = append(g.trucks, float64(r.TotalTrucks))
		g.cars = append(g.cars, float64(r.TotalCars))
		all = append(all, r.TotalPowerMW)
		if n := len(r.Bays); n > 0 {
			occupancy += float64(r.Occupied()) / float64(n)
		}
	}
	s.Steps = len(recs)
	s.EnergyMWh = floats.Sum(all) * StepHours
	s.PeakPowerMW = floats.Max(all)
	s.MeanOccupancy = occupancy / float64(len(recs))

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := order(keys[i]), order(keys[j])
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		g := groups[k]
		mean, std := stat.MeanStdDev(g.power, nil)
		if len(g.power) < 2 {
			std = 0
		}
		s.Buckets = append(s.Buckets, BucketSummary{
			Bucket:      k,
			Steps:       len(g.power),
			MeanPowerMW: mean,
			StdPowerMW:  std,
			PeakPowerMW: floats.Max(g.power),
			MeanTrucks:  stat.Mean(g.trucks, nil),
			MeanCars:    stat.Mean(g.cars, nil),
			EnergyMWh:   floats.Sum(g.power) * StepHours,
		})
	}
	return s
}

// order returns the calendar position of a timestep type.
func order(key string) int {
	b, err := calendar.ParseBucket(key)
	if err != nil {
		return len(calendar.AllBuckets())
	}
	for i, c := range calendar.AllBuckets() {
		if c == b {
			return i
		}
	}
	return len(calendar.AllBuckets())
}

// Bucket returns the summary of key.
func (s Summary) Bucket(key string) (BucketSummary, bool) {
	for _, b := range s.Buckets {
		if b.Bucket == key {
			return b, true
		}
	}
	return BucketSummary{}, false
}

// WriteTable prints the summary as an aligned table.
func WriteTable(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "timestep_type\tsteps\tavg_mw\tstd_mw\tpeak_mw\tavg_trucks\tavg_cars\tenergy_mwh\t")
	for _, b := range s.Buckets {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%.3f\t%.2f\t%.2f\t%.1f\t\n",
			b.Bucket, b.Steps, b.MeanPowerMW, b.StdPowerMW, b.PeakPowerMW, b.MeanTrucks, b.MeanCars, b.EnergyMWh)
	}
	fmt.Fprintf(tw, "total\t%d\t\t\t%.3f\t\t\t%.1f\t\n", s.Steps, s.PeakPowerMW, s.EnergyMWh)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "mean occupancy: %.1f%%\n", s.MeanOccupancy*100)
	return err
}
