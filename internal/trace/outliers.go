package trace

import "sort"

// DefaultIQRMultiplier is the conventional Tukey fence width.
const DefaultIQRMultiplier = 1.5

// RemoveOutliers trims samples outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR],
// preserving the input order of the survivors. Fewer than 2 samples are
// returned unchanged; the result never has more samples than the input.
func RemoveOutliers(data []float64) []float64 {
	return RemoveOutliersIQR(data, DefaultIQRMultiplier)
}

// RemoveOutliersIQR is RemoveOutliers with an adjustable fence multiplier.
func RemoveOutliersIQR(data []float64, multiplier float64) []float64 {
	if len(data) < 2 {
		return data
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	kept := make([]float64, 0, len(data))
	for _, v := range data {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	return kept
}
