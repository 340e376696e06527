package trace

import (
	"math"
	"reflect"
	"testing"
)

func TestRemoveOutliers(t *testing.T) {
	data := []float64{10, 12, 11, 13, 12, 11, 500}
	got := RemoveOutliers(data)

	for _, v := range got {
		if v == 500 {
			t.Errorf("outlier 500 survived trimming: %v", got)
		}
	}
	if len(got) != len(data)-1 {
		t.Errorf("len = %d, want %d", len(got), len(data)-1)
	}
}

func TestRemoveOutliersPreservesOrder(t *testing.T) {
	data := []float64{13, 10, 999, 12, 11}
	got := RemoveOutliers(data)

	want := []float64{13, 10, 12, 11}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveOutliers() = %v, want %v", got, want)
	}
}

func TestRemoveOutliersSmallInput(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{"Empty", nil},
		{"Single", []float64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveOutliers(tt.data); !reflect.DeepEqual(got, tt.data) {
				t.Errorf("RemoveOutliers(%v) = %v", tt.data, got)
			}
		})
	}
}

func TestRemoveOutliersConstantData(t *testing.T) {
	data := []float64{7, 7, 7, 7}
	if got := RemoveOutliers(data); len(got) != len(data) {
		t.Errorf("constant data should survive intact, got %v", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"Odd count", []float64{3, 1, 2}, 2},
		{"Even count interpolates", []float64{1, 2, 3, 4}, 2.5},
		{"Single", []float64{9}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.data); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("median(%v) = %v, want %v", tt.data, got, tt.expected)
			}
		})
	}
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{"Minimum", 0, 10},
		{"First quartile", 25, 17.5},
		{"Median", 50, 25},
		{"Maximum", 100, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(sorted, tt.p); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}
}

func TestRankDataAveragesTies(t *testing.T) {
	got := rankData([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rankData() = %v, want %v", got, want)
	}
}
