package trace

import (
	"errors"
	"math"

	mstats "github.com/aclements/go-moremath/stats"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

// Classification gates. Both must pass: the rank-sum test guards against
// practically large but unreliable shifts, the effect-size floor guards
// against statistically reliable but practically irrelevant ones.
const (
	pValueThreshold     = 0.05
	minMeaningfulEffect = 0.147
)

// CalculateSignificance compares this trace's samples for currentMethod
// against another trace's samples for otherMethod. Returns (nil, false) when
// either side is absent, has fewer than 2 post-trim samples, or the baseline
// median is zero; absence is the normal outcome for most methods.
func (a *Analyzer) CalculateSignificance(other *Analyzer, currentMethod, otherMethod string) (*models.SignificanceResult, bool) {
	before, ok := a.ExecutionTimes[currentMethod]
	if !ok {
		return nil, false
	}
	after, ok := other.ExecutionTimes[otherMethod]
	if !ok {
		return nil, false
	}
	return Classify(before, after)
}

// Classify trims outliers from both sample sets and renders a significance
// verdict for the before/after pair.
func Classify(before, after []float64) (*models.SignificanceResult, bool) {
	before = RemoveOutliers(before)
	after = RemoveOutliers(after)

	if len(before) < 2 || len(after) < 2 {
		return nil, false
	}

	beforeMedian := median(before)
	afterMedian := median(after)
	if beforeMedian == 0 {
		return nil, false
	}

	medianChange := (afterMedian - beforeMedian) / beforeMedian

	p, ok := mannWhitneyP(before, after)
	if !ok {
		return nil, false
	}

	effectSize := CliffsDelta(before, after)

	significant := p < pValueThreshold
	meaningful := math.Abs(effectSize) >= minMeaningfulEffect

	changeType := models.ChangeUnchanged
	if significant && meaningful {
		if medianChange > 0 {
			changeType = models.ChangeRegression
		} else {
			changeType = models.ChangeImprovement
		}
	}

	return &models.SignificanceResult{
		ChangeType:               changeType,
		MedianChangePercentage:   medianChange * 100,
		PValue:                   p,
		EffectSize:               effectSize,
		EffectSizeInterpretation: InterpretCliffsDelta(effectSize),
		StatisticallySignificant: significant,
		SampleSize: models.SampleSizes{
			Before: len(before),
			After:  len(after),
		},
	}, true
}

// mannWhitneyP runs the two-sided Mann-Whitney U test. Two samples drawn
// from identical constant distributions carry no evidence of change, so
// ErrSamplesEqual maps to p = 1.
func mannWhitneyP(before, after []float64) (float64, bool) {
	res, err := mstats.MannWhitneyUTest(before, after, mstats.LocationDiffers)
	if err != nil {
		if errors.Is(err, mstats.ErrSamplesEqual) {
			return 1, true
		}
		return 0, false
	}
	return res.P, true
}

// CliffsDelta computes the rank-based effect size (Ux - Uy) / (nx * ny),
// bounded in [-1, 1]. Positive values mean x stochastically dominates y.
func CliffsDelta(x, y []float64) float64 {
	nx, ny := len(x), len(y)
	if nx == 0 || ny == 0 {
		return 0
	}

	combined := make([]float64, 0, nx+ny)
	combined = append(combined, x...)
	combined = append(combined, y...)
	ranks := rankData(combined)

	var sumX, sumY float64
	for i := 0; i < nx; i++ {
		sumX += ranks[i]
	}
	for i := nx; i < nx+ny; i++ {
		sumY += ranks[i]
	}

	ux := sumX - float64(nx*(nx+1))/2
	uy := sumY - float64(ny*(ny+1))/2

	return (ux - uy) / float64(nx*ny)
}

// InterpretCliffsDelta buckets |d| into the conventional qualitative
// thresholds (Romano et al.).
func InterpretCliffsDelta(d float64) models.EffectSize {
	abs := math.Abs(d)
	switch {
	case abs < 0.147:
		return models.EffectNegligible
	case abs < 0.33:
		return models.EffectSmall
	case abs < 0.474:
		return models.EffectMedium
	default:
		return models.EffectLarge
	}
}
