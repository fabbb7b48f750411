// Package projection computes the client-side compounding growth forecast
// shown on the projection screen.
package projection

import (
	"math"

	"github.com/holinflow/hflow/internal/model"
)

// Horizon bounds for interactive input.
const (
	MinYears     = 3
	MaxYears     = 30
	DefaultYears = 10

	maxLabels = 8
)

// BuildSeries returns years+1 points where point n is
// base × (1 + annualRatePercent/100)^n. Negative years are treated as 0.
// Non-finite inputs are not sanitized and propagate as NaN/Inf values.
func BuildSeries(base, annualRatePercent float64, years int) []model.ProjectionPoint {
	if years < 0 {
		years = 0
	}
	growth := 1 + annualRatePercent/100

	series := make([]model.ProjectionPoint, years+1)
	for year := range series {
		series[year] = model.ProjectionPoint{
			Year:  year,
			Value: base * math.Pow(growth, float64(year)),
		}
	}
	return series
}

// FromReport builds the series from a plan's current assets and weighted
// annual return.
func FromReport(r model.ReportSummary, years int) []model.ProjectionPoint {
	return BuildSeries(r.CurrentAssets, r.WeightedAnnualReturn, years)
}

// FinalValue returns the last value of the series rounded to the nearest
// integer, or NaN for an empty series.
func FinalValue(series []model.ProjectionPoint) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return math.Round(series[len(series)-1].Value)
}

// ClampYears keeps an interactive horizon within MinYears..MaxYears.
func ClampYears(years int) int {
	switch {
	case years < MinYears:
		return MinYears
	case years > MaxYears:
		return MaxYears
	}
	return years
}

// LabelStep is the x-axis label stride: at most about eight labels.
func LabelStep(n int) int {
	step := int(math.Ceil(float64(n) / maxLabels))
	if step < 1 {
		return 1
	}
	return step
}

// TickYears returns the years that get an axis label: every LabelStep-th
// point plus the final one.
func TickYears(series []model.ProjectionPoint) []int {
	n := len(series)
	step := LabelStep(n)
	ticks := make([]int, 0, maxLabels+1)
	for i, p := range series {
		if i%step == 0 || i == n-1 {
			ticks = append(ticks, p.Year)
		}
	}
	return ticks
}

// Values extracts the point values in year order.
func Values(series []model.ProjectionPoint) []float64 {
	vals := make([]float64, len(series))
	for i, p := range series {
		vals[i] = p.Value
	}
	return vals
}
