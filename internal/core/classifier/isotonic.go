package classifier

import "sort"

// Isotonic is a monotone step function fitted with pool-adjacent-violators,
// used to calibrate raw tree scores for one class against held-out folds.
type Isotonic struct {
	Thresholds []float64 `json:"thresholds"`
	Values     []float64 `json:"values"`
}

// fitIsotonic regresses y (0/1 membership) on x (raw scores) under a
// monotone-nondecreasing constraint. Ties on x are pooled before PAV.
func fitIsotonic(x, y []float64) *Isotonic {
	if len(x) == 0 || len(x) != len(y) {
		return nil
	}

	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return x[order[i]] < x[order[j]] })

	// Pool duplicate thresholds.
	var xs []float64
	var sums []float64
	var weights []float64
	for _, idx := range order {
		if n := len(xs); n > 0 && xs[n-1] == x[idx] {
			sums[n-1] += y[idx]
			weights[n-1]++
			continue
		}
		xs = append(xs, x[idx])
		sums = append(sums, y[idx])
		weights = append(weights, 1)
	}

	// Pool adjacent violators.
	vals := make([]float64, len(xs))
	for i := range xs {
		vals[i] = sums[i] / weights[i]
	}
	n := 0
	outX := make([]float64, 0, len(xs))
	outV := make([]float64, 0, len(xs))
	outW := make([]float64, 0, len(xs))
	for i := range xs {
		outX = append(outX, xs[i])
		outV = append(outV, vals[i])
		outW = append(outW, weights[i])
		n++
		for n > 1 && outV[n-2] > outV[n-1] {
			merged := (outV[n-2]*outW[n-2] + outV[n-1]*outW[n-1]) / (outW[n-2] + outW[n-1])
			outW[n-2] += outW[n-1]
			outV[n-2] = merged
			outX[n-2] = outX[n-1] // block keyed by its upper threshold
			outX = outX[:n-1]
			outV = outV[:n-1]
			outW = outW[:n-1]
			n--
		}
	}

	return &Isotonic{Thresholds: outX, Values: outV}
}

// Predict maps a raw score through the fitted step function, clamping outside
// the observed range.
func (iso *Isotonic) Predict(score float64) float64 {
	if iso == nil || len(iso.Thresholds) == 0 {
		return score
	}
	i := sort.SearchFloat64s(iso.Thresholds, score)
	if i >= len(iso.Values) {
		return iso.Values[len(iso.Values)-1]
	}
	return iso.Values[i]
}
