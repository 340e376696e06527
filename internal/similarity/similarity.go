// Package similarity decides whether two token sequences belong to the same
// method. Three independent metrics vote; a match requires unanimity above
// the threshold, trading recall for precision since a false merge silently
// corrupts the lineage graph.
package similarity

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
	"gonum.org/v1/gonum/floats"
)

// Threshold is the per-metric similarity gate. Empirically tuned; treat it as
// policy, not law.
const Threshold = 0.90

// Compare scores two token sequences. The boolean is true only when the
// sequence, cosine and Jaccard similarities each exceed Threshold; the score
// is their mean regardless. Either side empty yields (false, 0).
func Compare(a, b []string) (bool, float64) {
	if len(a) == 0 || len(b) == 0 {
		return false, 0.0
	}

	seq := sequenceRatio(a, b)
	cos := cosineSimilarity(a, b)
	jac := jaccardIndex(a, b)

	score := (seq + cos + jac) / 3
	return seq > Threshold && cos > Threshold && jac > Threshold, score
}

// sequenceRatio is the classic edit-similarity ratio 2*M/T, where M is the
// total length of the longest matching blocks and T the combined length.
// Order-sensitive.
func sequenceRatio(a, b []string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	return difflib.NewMatcher(a, b).Ratio()
}

// cosineSimilarity compares term-frequency vectors over the joint vocabulary.
func cosineSimilarity(a, b []string) float64 {
	vocab := make(map[string]int)
	for _, tok := range a {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}
	for _, tok := range b {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}

	va := make([]float64, len(vocab))
	vb := make([]float64, len(vocab))
	for _, tok := range a {
		va[vocab[tok]]++
	}
	for _, tok := range b {
		vb[vocab[tok]]++
	}

	denom := math.Sqrt(floats.Dot(va, va)) * math.Sqrt(floats.Dot(vb, vb))
	if denom == 0 {
		return 0
	}
	return floats.Dot(va, vb) / denom
}

// jaccardIndex is |A ∩ B| / |A ∪ B| over token sets; order- and
// frequency-insensitive.
func jaccardIndex(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, tok := range a {
		setA[tok] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, tok := range b {
		setB[tok] = struct{}{}
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
