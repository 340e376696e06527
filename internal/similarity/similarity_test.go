package similarity

import (
	"math"
	"testing"
)

func TestCompareIdentical(t *testing.T) {
	tokens := []string{"get", "item", "count"}
	similar, score := Compare(tokens, tokens)
	if !similar {
		t.Error("Compare() with identical sequences should be similar")
	}
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("Compare() score = %v, want 1.0", score)
	}
}

func TestCompareEmpty(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{"Both empty", nil, nil},
		{"Left empty", nil, []string{"get"}},
		{"Right empty", []string{"get"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			similar, score := Compare(tt.a, tt.b)
			if similar {
				t.Error("Compare() with an empty side should not be similar")
			}
			if score != 0.0 {
				t.Errorf("Compare() score = %v, want 0.0", score)
			}
		})
	}
}

func TestCompareUnanimityRequired(t *testing.T) {
	// Shared prefix but disjoint-enough token sets: the Jaccard index is
	// 1/3 and must veto the match whatever the other metrics say.
	a := []string{"get", "items"}
	b := []string{"get", "item"}

	similar, score := Compare(a, b)
	if similar {
		t.Errorf("Compare(%v, %v) should not be similar, score %v", a, b, score)
	}
	if jac := jaccardIndex(a, b); math.Abs(jac-1.0/3.0) > 1e-9 {
		t.Errorf("jaccardIndex = %v, want 1/3", jac)
	}
}

func TestCompareSymmetric(t *testing.T) {
	a := []string{"compute", "total", "price"}
	b := []string{"compute", "price"}

	simAB, scoreAB := Compare(a, b)
	simBA, scoreBA := Compare(b, a)
	if simAB != simBA {
		t.Errorf("similarity verdict not symmetric: %v vs %v", simAB, simBA)
	}
	if math.Abs(scoreAB-scoreBA) > 1e-9 {
		t.Errorf("score not symmetric: %v vs %v", scoreAB, scoreBA)
	}
}

func TestSequenceRatio(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected float64
	}{
		{"Identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"Disjoint", []string{"a", "b"}, []string{"c", "d"}, 0.0},
		{"Half shared", []string{"a", "b"}, []string{"a", "c"}, 0.5},
		{"Reordered", []string{"a", "b"}, []string{"b", "a"}, 0.5},
		{"Blocks around an edit", []string{"a", "b", "c", "d"}, []string{"a", "x", "c", "d"}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sequenceRatio(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("sequenceRatio(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []string{"get", "get", "item"}
	b := []string{"get", "item"}

	// TF vectors (2,1) and (1,1): cos = 3 / (sqrt(5)*sqrt(2)).
	expected := 3 / (math.Sqrt(5) * math.Sqrt(2))
	if got := cosineSimilarity(a, b); math.Abs(got-expected) > 1e-9 {
		t.Errorf("cosineSimilarity = %v, want %v", got, expected)
	}

	if got := cosineSimilarity([]string{"a"}, []string{"b"}); got != 0.0 {
		t.Errorf("cosineSimilarity of disjoint tokens = %v, want 0.0", got)
	}
}
