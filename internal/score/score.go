package score

import "math"

// Score returns the score of a slice with the given size and total error.
//
// avgErr is the average error over all m records and alpha in [0,1]
// weights error against size.
func Score(size, err, avgErr, alpha float64, m int) float64 {
	if size <= 0 {
		return math.Inf(-1)
	}
	return eval(size, err, avgErr, alpha, m)
}

// UpperBound returns an upper bound on the score of any slice whose size is
// at most size (and at least minSup), whose total error is at most err and
// whose largest single error is at most maxErr.
//
// The score is monotone in the support on each side of err/maxErr, so it is
// enough to probe minSup, max(err/maxErr, minSup) and size, capping the
// achievable error at s*maxErr.
func UpperBound(size, err, maxErr, avgErr float64, minSup int, alpha float64, m int) float64 {
	if size <= 0 {
		return math.Inf(-1)
	}
	lo := float64(max(minSup, 1))
	probes := [3]float64{lo, math.Max(err/maxErr, lo), size}

	best := math.Inf(-1)
	for _, s := range probes {
		if !(s > 0) {
			continue
		}
		sc := eval(s, math.Min(s*maxErr, err), avgErr, alpha, m)
		if sc > best {
			best = sc
		}
	}
	return best
}

func eval(size, err, avgErr, alpha float64, m int) float64 {
	sc := alpha*((err/size)/avgErr-1) - (1-alpha)*(float64(m)/size-1)
	if math.IsNaN(sc) {
		return math.Inf(-1)
	}
	return sc
}
