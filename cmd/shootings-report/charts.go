package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"shootings/internal/aggregate"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// renderCharts writes the three report charts into outDir.
func renderCharts(outDir string, byBorough []aggregate.BoroughRace, races []string, byHour []aggregate.HourCount, precincts []aggregate.PrecinctRow) error {
	if err := renderBoroughChart(filepath.Join(outDir, "incidents_by_borough.png"), byBorough, races); err != nil {
		return fmt.Errorf("borough chart: %w", err)
	}
	if err := renderHourChart(filepath.Join(outDir, "incidents_by_hour.png"), byHour); err != nil {
		return fmt.Errorf("hour chart: %w", err)
	}
	if err := renderPrecinctChart(filepath.Join(outDir, "precinct_trend.png"), precincts); err != nil {
		return fmt.Errorf("precinct chart: %w", err)
	}
	return nil
}

// renderBoroughChart draws per-borough incident counts as bars stacked by
// victim race.
func renderBoroughChart(path string, groups []aggregate.BoroughRace, races []string) error {
	p := plot.New()
	p.Title.Text = "Incidents by Borough and Victim Race"
	p.Y.Label.Text = "Incidents"

	var prev *plotter.BarChart
	for ri, race := range races {
		values := make(plotter.Values, len(groups))
		for gi, g := range groups {
			values[gi] = float64(g.Counts[ri])
		}
		bars, err := plotter.NewBarChart(values, vg.Points(28))
		if err != nil {
			return err
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(ri)
		if prev != nil {
			bars.StackOn(prev)
		}
		p.Add(bars)
		p.Legend.Add(race, bars)
		prev = bars
	}

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Borough
	}
	p.NominalX(names...)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// renderHourChart draws incident count against hour of day.
func renderHourChart(path string, byHour []aggregate.HourCount) error {
	p := plot.New()
	p.Title.Text = "Incidents by Hour of Day"
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Incidents"

	pts := make(plotter.XYs, len(byHour))
	for i, h := range byHour {
		pts[i].X = float64(h.Hour)
		pts[i].Y = float64(h.Count)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	p.Add(plotter.NewGrid(), line)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// renderPrecinctChart draws actual and fitted incident counts per precinct.
// Precinct codes are numeric in the extract; a non-numeric code falls back
// to its position so the chart still renders.
func renderPrecinctChart(path string, rows []aggregate.PrecinctRow) error {
	p := plot.New()
	p.Title.Text = "Incidents per Precinct: Actual vs Model"
	p.X.Label.Text = "Precinct"
	p.Y.Label.Text = "Incidents"

	actual := make(plotter.XYs, len(rows))
	predicted := make(plotter.XYs, len(rows))
	for i, r := range rows {
		x := float64(i)
		if v, err := strconv.Atoi(r.Precinct); err == nil {
			x = float64(v)
		}
		actual[i] = plotter.XY{X: x, Y: float64(r.IncidentCount)}
		predicted[i] = plotter.XY{X: x, Y: r.Predicted}
	}

	actualLine, err := plotter.NewLine(actual)
	if err != nil {
		return err
	}
	actualLine.Color = plotutil.Color(0)

	predictedLine, err := plotter.NewLine(predicted)
	if err != nil {
		return err
	}
	predictedLine.Color = plotutil.Color(1)
	predictedLine.Dashes = plotutil.Dashes(1)

	p.Add(plotter.NewGrid(), actualLine, predictedLine)
	p.Legend.Add("actual", actualLine)
	p.Legend.Add("predicted", predictedLine)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
