package correction

import (
	"math"
	"sort"
)

// interpInto evaluates 1-D linear interpolation of the sample points
// (xp, fp) at every query position in x, writing results into out.
//
// xp must be ascending. Query positions outside [xp[0], xp[len-1]] map to
// NaN rather than being extrapolated; NaN sample values propagate into any
// interval they bound. out must have len(x).
func interpInto(x, xp, fp, out []float64) {
	n := len(xp)
	for i, q := range x {
		if n == 0 || math.IsNaN(q) || q < xp[0] || q > xp[n-1] {
			out[i] = math.NaN()
			continue
		}

		j := sort.SearchFloat64s(xp, q)
		if j < n && xp[j] == q {
			out[i] = fp[j]
			continue
		}

		// xp[j-1] < q < xp[j]
		x0, x1 := xp[j-1], xp[j]
		f0, f1 := fp[j-1], fp[j]
		out[i] = f0 + (f1-f0)*(q-x0)/(x1-x0)
	}
}
