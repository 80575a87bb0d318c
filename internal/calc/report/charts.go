package report

import (
	"bytes"
	"errors"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"Thermolab/internal/calc/engine"
)

var errNoSeries = errors.New("report: nothing to plot")

var palette = []drawing.Color{chart.ColorBlue, chart.ColorRed, chart.ColorGreen, chart.ColorOrange, chart.ColorAlternateGray}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotWidth:    4,
		DotColor:    col,
	}
}

// RodChart renders the axial temperature profile as PNG.
func RodChart(profile []engine.Point) ([]byte, error) {
	if len(profile) < 2 {
		return nil, errNoSeries
	}
	xs := make([]float64, len(profile))
	ys := make([]float64, len(profile))
	for i, p := range profile {
		xs[i], ys[i] = p.X*1000, p.Y
	}
	ch := chart.Chart{
		Title:      "Rod temperature profile",
		Width:      720,
		Height:     360,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 12}},
		XAxis:      chart.XAxis{Name: "distance from T1 (mm)"},
		YAxis:      chart.YAxis{Name: "T (C)"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "T1..T5", XValues: xs, YValues: ys, Style: lineStyle(chart.ColorBlue)},
		},
	}
	return render(ch)
}

// TrialChart renders the surface temperatures T1..T6 of every complete trial.
func TrialChart(trials []engine.TrialSeries) ([]byte, error) {
	var series []chart.Series
	for _, tr := range trials {
		ys, ok := complete(tr.Surface)
		if !ok {
			continue
		}
		xs := make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i + 1)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Trial %d", tr.Trial),
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(palette[len(series)%len(palette)]),
		})
	}
	if len(series) == 0 {
		return nil, errNoSeries
	}
	ch := chart.Chart{
		Title:      "Tube surface temperatures",
		Width:      720,
		Height:     360,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 12}},
		XAxis:      chart.XAxis{Name: "thermocouple"},
		YAxis:      chart.YAxis{Name: "T (C)"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return render(ch)
}

func render(ch chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("report: render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func complete(vals []*float64) ([]float64, bool) {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			return nil, false
		}
		out = append(out, *v)
	}
	return out, len(out) > 1
}
