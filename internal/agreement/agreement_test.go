package agreement

import (
	"math"
	"testing"
)

func set(cats ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		s[c] = struct{}{}
	}
	return s
}

func TestMeanKappaPerfectAgreement(t *testing.T) {
	a := NewAnalyzer("alice", "bob")
	labels := []Labels{
		{"alice": set("perf"), "bob": set("perf")},
		{"alice": set(), "bob": set()},
	}

	if got := a.MeanKappa(labels); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("MeanKappa() = %v, want 1.0", got)
	}
}

func TestMeanKappaCompleteDisagreement(t *testing.T) {
	a := NewAnalyzer("alice", "bob")
	labels := []Labels{
		{"alice": set("perf"), "bob": set()},
		{"alice": set(), "bob": set("perf")},
	}

	if got := a.MeanKappa(labels); math.Abs(got-(-1.0)) > 1e-9 {
		t.Errorf("MeanKappa() = %v, want -1.0", got)
	}
}

func TestMeanKappaUndefinedCategoriesSkipped(t *testing.T) {
	a := NewAnalyzer("alice", "bob")
	// Both reviewers always assign the category: chance agreement is 1 and
	// kappa is undefined, leaving nothing to average.
	labels := []Labels{
		{"alice": set("perf"), "bob": set("perf")},
		{"alice": set("perf"), "bob": set("perf")},
	}

	if got := a.MeanKappa(labels); got != 0.0 {
		t.Errorf("MeanKappa() = %v, want 0.0", got)
	}
}

func TestMeanKappaAveragesAcrossCategories(t *testing.T) {
	a := NewAnalyzer("alice", "bob")
	// "agree" scores kappa 1, "disagree" scores kappa -1.
	labels := []Labels{
		{"alice": set("agree", "disagree"), "bob": set("agree")},
		{"alice": set(), "bob": set("disagree")},
	}

	if got := a.MeanKappa(labels); math.Abs(got) > 1e-9 {
		t.Errorf("MeanKappa() = %v, want 0.0", got)
	}
}

func TestMeanKappaEmptyInput(t *testing.T) {
	a := NewAnalyzer("alice", "bob")

	if got := a.MeanKappa(nil); got != 0.0 {
		t.Errorf("MeanKappa(nil) = %v, want 0.0", got)
	}
	if got := a.MeanKappa([]Labels{{"alice": set(), "bob": set()}}); got != 0.0 {
		t.Errorf("MeanKappa() with no categories = %v, want 0.0", got)
	}
}

func TestCohenKappa(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []int
		expected float64
		defined  bool
	}{
		{"Perfect", []int{1, 0, 1, 0}, []int{1, 0, 1, 0}, 1, true},
		{"Inverse", []int{1, 0}, []int{0, 1}, -1, true},
		{"Constant raters", []int{1, 1}, []int{1, 1}, 0, false},
		{"Independent", []int{1, 1, 0, 0}, []int{1, 0, 1, 0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cohenKappa(tt.x, tt.y)
			if ok != tt.defined {
				t.Fatalf("cohenKappa() defined = %v, want %v", ok, tt.defined)
			}
			if ok && math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("cohenKappa() = %v, want %v", got, tt.expected)
			}
		})
	}
}
