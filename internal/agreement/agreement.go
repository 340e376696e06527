// Package agreement measures inter-reviewer agreement on code-pair labels
// using Cohen's kappa, averaged over label categories.
package agreement

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Labels maps a reviewer name to the set of categories they assigned to one
// code pair.
type Labels map[string]map[string]struct{}

// Analyzer scores agreement between exactly two reviewers across a batch of
// labeled code pairs.
type Analyzer struct {
	reviewers [2]string
}

// NewAnalyzer returns an Analyzer comparing the two named reviewers.
func NewAnalyzer(first, second string) *Analyzer {
	return &Analyzer{reviewers: [2]string{first, second}}
}

// MeanKappa computes Cohen's kappa for each category that appears in the
// batch and returns the mean. Categories whose kappa is undefined (no
// variance in either reviewer's labels) are skipped; if none remain the
// result is 0.
func (a *Analyzer) MeanKappa(labels []Labels) float64 {
	categories := collectCategories(labels)
	if len(categories) == 0 || len(labels) == 0 {
		return 0.0
	}

	var kappas []float64
	for _, cat := range categories {
		first := binaryVector(labels, a.reviewers[0], cat)
		second := binaryVector(labels, a.reviewers[1], cat)
		kappa, ok := cohenKappa(first, second)
		if ok {
			kappas = append(kappas, kappa)
		}
	}

	if len(kappas) == 0 {
		return 0.0
	}
	return stat.Mean(kappas, nil)
}

// collectCategories returns the sorted union of categories either reviewer
// used anywhere in the batch.
func collectCategories(labels []Labels) []string {
	seen := make(map[string]struct{})
	for _, review := range labels {
		for _, cats := range review {
			for cat := range cats {
				seen[cat] = struct{}{}
			}
		}
	}
	categories := make([]string, 0, len(seen))
	for cat := range seen {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}

// binaryVector marks, per code pair, whether the reviewer assigned the
// category.
func binaryVector(labels []Labels, reviewer, category string) []int {
	vec := make([]int, len(labels))
	for i, review := range labels {
		if cats, ok := review[reviewer]; ok {
			if _, assigned := cats[category]; assigned {
				vec[i] = 1
			}
		}
	}
	return vec
}

// cohenKappa computes Cohen's kappa for two binary rating vectors. The
// second return is false when chance agreement is 1, which leaves kappa
// undefined.
func cohenKappa(x, y []int) (float64, bool) {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0, false
	}

	var observed float64
	var xOnes, yOnes float64
	for i := range x {
		if x[i] == y[i] {
			observed++
		}
		xOnes += float64(x[i])
		yOnes += float64(y[i])
	}
	observed /= float64(n)

	pX, pY := xOnes/float64(n), yOnes/float64(n)
	expected := pX*pY + (1-pX)*(1-pY)

	if math.Abs(1-expected) < 1e-12 {
		return 0, false
	}
	return (observed - expected) / (1 - expected), true
}
