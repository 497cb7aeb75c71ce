// Package axis classifies channel axes and formats axis ranges.
//
// Indicator data carries two independent-variable families: crank-angle
// sweeps (one point per angular sample within a cycle) and cycle indices
// (one point per complete engine cycle). Blocks do not declare which family
// they belong to; classification is a heuristic over the axis samples.
package axis

import (
	"math"
	"slices"
	"strconv"
)

// Kind is an axis classification.
type Kind string

const (
	// KindCrankAngle tags crank-angle-resolved axes.
	KindCrankAngle Kind = "CA"
	// KindCycle tags cycle-resolved axes.
	KindCycle Kind = "CY"
)

// Classify determines the axis family from its samples.
//
// The rules, in order:
//   - Fewer than 2 samples: KindCycle (a degenerate axis cannot be a
//     resolved crank-angle sweep).
//   - Negative minimum, or median consecutive step below 0.5 in magnitude:
//     KindCrankAngle. Crank-angle axes typically span negative degrees
//     and/or use sub-degree resolution; cycle axes count upward in whole
//     steps from a non-negative start.
//   - Otherwise: KindCycle.
//
// This is a heuristic, not a declared type: callers must not assume
// monotonicity or uniform spacing beyond what the median step estimates.
// NaN samples are ignored when computing the minimum and the median step.
func Classify(samples []float64) Kind {
	if len(samples) < 2 {
		return KindCycle
	}

	minVal := math.NaN()
	for _, v := range samples {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(minVal) || v < minVal {
			minVal = v
		}
	}

	step := medianStep(samples)

	if minVal < 0 || math.Abs(step) < 0.5 {
		return KindCrankAngle
	}

	return KindCycle
}

// FormatRange renders an axis range as "{first}[{unit}] to {last} step {median}".
//
// Returns the empty string for axes with fewer than 2 samples. Non-finite
// boundaries or steps render as "NaN"/"+Inf" rather than suppressing the
// range; malformed input never produces an error.
func FormatRange(samples []float64, unit string) string {
	if len(samples) < 2 {
		return ""
	}

	first := samples[0]
	last := samples[len(samples)-1]
	step := medianStep(samples)

	return formatG(first) + "[" + unit + "] to " + formatG(last) + " step " + formatG(step)
}

// medianStep returns the median of consecutive differences, ignoring NaN
// differences. Returns NaN when no valid difference exists, so threshold
// comparisons on the result fail rather than match zero.
func medianStep(samples []float64) float64 {
	diffs := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		d := samples[i] - samples[i-1]
		if !math.IsNaN(d) {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return math.NaN()
	}

	slices.Sort(diffs)

	mid := len(diffs) / 2
	if len(diffs)%2 == 1 {
		return diffs[mid]
	}

	return (diffs[mid-1] + diffs[mid]) / 2
}

// formatG renders a float the way %g does: shortest representation that
// round-trips, switching to exponent form for large magnitudes.
func formatG(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
