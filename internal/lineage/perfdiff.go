package lineage

import "math"

// Weights for combining the average-self-time and minimum-execution-time
// ratios. Average dominates; minimum stabilizes against benchmark noise.
const (
	avgWeight = 0.8
	minWeight = 0.2
)

// CombinedPerformanceDiff collapses the current/previous timing ratios into a
// single scalar via a weighted geometric mean. Negative for slowdowns,
// positive for speedups. Negative ratios are handled by combining absolute
// values and restoring a sign from the weighted sign combination; real
// durations are positive, so that path is compatibility ballast rather than
// meaningful semantics.
func CombinedPerformanceDiff(currentAvg, prevAvg, currentMin, prevMin float64) float64 {
	avgRatio := currentAvg / prevAvg
	minRatio := currentMin / prevMin

	avgSign, minSign := 1.0, 1.0
	if avgRatio < 0 {
		avgSign = -1
	}
	if minRatio < 0 {
		minSign = -1
	}

	combined := -(math.Pow(math.Abs(avgRatio), avgWeight)*math.Pow(math.Abs(minRatio), minWeight) - 1)

	if avgSign*avgWeight+minSign*minWeight < 0 {
		return -combined
	}
	return combined
}
