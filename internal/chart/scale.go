package chart

import "math"

// niceSteps are the fractions an axis maximum is snapped up to, per decade.
var niceSteps = []float64{1, 2, 2.5, 5, 10}

// NiceMax rounds a data maximum up to a readable axis ceiling:
// 3 → 5, 7 → 10, 23 → 25, 48 → 50, 91 → 100. Non-positive input yields 1.
func NiceMax(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 1
	}
	exponent := math.Floor(math.Log10(x))
	scale := math.Pow(10, exponent)
	fraction := x / scale

	nice := niceSteps[len(niceSteps)-1]
	for _, step := range niceSteps {
		// tolerate float noise such as 0.2/0.1 = 2.0000000000000004
		if fraction <= step*(1+1e-9) {
			nice = step
			break
		}
	}
	return nice * scale
}

// gridDivisions is the number of intervals drawn between 0 and the axis max.
const gridDivisions = 5

func tickValues(axisMax float64) []float64 {
	out := make([]float64, gridDivisions+1)
	for i := range out {
		out[i] = axisMax * float64(i) / gridDivisions
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
