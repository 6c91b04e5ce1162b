// Package distribution approximates the sampling distribution of a
// proportion with a Gaussian, for significance-style chart overlays such as
// conversion rate comparisons.
package distribution

import (
	"math"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/series"
)

// Points below this density are trimmed from the curve's tails.
const densityFloor = 0.1

// EstimateAll applies Estimate to each series independently.
func EstimateAll(list []series.Series) ([]series.Series, error) {
	out := make([]series.Series, 0, len(list))
	for _, s := range list {
		e, err := Estimate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Estimate fits a normal approximation to the proportion implied by the
// series, reading x as per-row trial counts and y as per-row success
// counts, and samples its density curve. The returned series keeps the
// input's name; its x values are proportions and its y values densities.
//
// A series whose trial counts sum to zero, or that contains non-numeric
// cells, yields a DistributionInputError rather than a curve containing
// NaN or Inf.
func Estimate(s series.Series) (series.Series, error) {
	totalTrials, err := sumNumeric(s.X)
	if err != nil {
		return series.Series{}, &common.DistributionInputError{Reason: "trial counts: " + err.Error()}
	}
	totalSuccesses, err := sumNumeric(s.Y)
	if err != nil {
		return series.Series{}, &common.DistributionInputError{Reason: "success counts: " + err.Error()}
	}
	if totalTrials == 0 {
		return series.Series{}, &common.DistributionInputError{Reason: "total trial count is zero"}
	}

	mean := totalSuccesses / totalTrials
	variance := mean * (1 - mean) / totalTrials
	if !isFinite(mean) || !isFinite(variance) {
		return series.Series{}, &common.DistributionInputError{Reason: "proportion is not finite"}
	}
	stddev := math.Sqrt(variance)

	xmin := math.Max(0, mean-5*stddev)
	xmax := mean + 5*stddev
	// The sampling resolution is a function of xmax alone, not of the
	// [xmin, xmax] span. Downstream consumers depend on the exact grid, so
	// keep it that way.
	step := xmax / 5000
	n := 0
	if step > 0 {
		n = int(math.Floor((xmax - xmin) / step))
	}

	out := series.Series{Name: s.Name}
	norm := 1 / math.Sqrt(2*math.Pi*variance)
	// The grid is built by accumulation, not multiplication; the float
	// rounding of repeated addition is part of the expected output.
	px := xmin
	for i := 0; i < n; i++ {
		d := norm * math.Exp(-(px-mean)*(px-mean)/(2*variance))
		if d >= densityFloor {
			out.X = append(out.X, px)
			out.Y = append(out.Y, d)
		}
		px += step
	}
	return out, nil
}

func sumNumeric(vals []any) (float64, error) {
	var sum float64
	for _, v := range vals {
		f, err := common.AsFloat(v)
		if err != nil {
			return 0, err
		}
		sum += f
	}
	return sum, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
