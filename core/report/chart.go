package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/baysim/core/model"
)

// StepDuration is the simulated length of one timestep.
const StepDuration = 15 * time.Minute

// WriteChart renders an HTML page with the load and occupancy curves of a
// run and the mean power per timestep type. Step t is placed at
// origin + t*StepDuration.
func WriteChart(w io.Writer, recs []model.OutputRecord, origin time.Time) error {
	xAxis := make([]string, 0, len(recs))
	power := make([]opts.LineData, 0, len(recs))
	trucks := make([]opts.LineData, 0, len(recs))
	cars := make([]opts.LineData, 0, len(recs))
	for _, r := range recs {
		ts := origin.Add(time.Duration(r.TimeIndex) * StepDuration)
		xAxis = append(xAxis, ts.Format("2006-01-02 15:04"))
		power = append(power, opts.LineData{Value: r.TotalPowerMW})
		trucks = append(trucks, opts.LineData{Value: r.TotalTrucks})
		cars = append(cars, opts.LineData{Value: r.TotalCars})
	}

	load := charts.NewLine()
	load.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Charging load"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Power (MW)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	load.SetXAxis(xAxis).AddSeries("Total power", power)

	occ := charts.NewLine()
	occ.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Bay occupancy"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date & Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Vehicles"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	occ.SetXAxis(xAxis).
		AddSeries("Trucks", trucks).
		AddSeries("Cars", cars)

	sum := Summarize(recs)
	keys := make([]string, 0, len(sum.Buckets))
	means := make([]opts.BarData, 0, len(sum.Buckets))
	for _, b := range sum.Buckets {
		keys = append(keys, b.Bucket)
		means = append(means, opts.BarData{Value: b.MeanPowerMW})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Mean power per timestep type"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Power (MW)"}),
	)
	bar.SetXAxis(keys).AddSeries("Mean power", means)

	page := components.NewPage()
	page.AddCharts(load, occ, bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
