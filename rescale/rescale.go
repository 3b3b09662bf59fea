/*
DESCRIPTION
  rescale.go maps each raw metric value onto the common Unified Metric (UM)
  scale, on which higher is always better and a value near 0.75 means
  "perceptually transparent recompression". It also implements the fused
  SUMMET metric (a variance-weighted average of several rescaled metrics)
  and the two-metric SSIMFry/SSIMShB variants.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rescale maps raw metric.Method values onto the common UM axis and
// fuses several of them into a single consensus score.
package rescale

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ausocean/recompress/metric"
)

// Sigma is the "sigma contraction" nonlinearity 1 - sqrt(1 - c^2) on |c|.
// On [0, 1] it keeps 0 and 1 fixed and lowers the values in between
// (Sigma(0.5) ~ 0.134); for |c| > 1 it returns 1 / (1 - sqrt(1 - 1/c^2)),
// which is above 1 and grows with |c| (Sigma(2) ~ 7.46). Used by several of
// the per-metric transforms below.
func Sigma(c float64) float64 {
	a := math.Abs(c)
	if a > 1 {
		return 1 / (1 - math.Sqrt(1-1/(a*a)))
	}
	return 1 - math.Sqrt(1-a*a)
}

// coerce replaces non-finite metric values with 0, per the specification's
// "+Inf from a metric must be coerced to 0 before fusion" rule.
func coerce(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Rescale maps a raw metric value, produced for method m, onto the UM
// scale. PSNR's +Inf limit (identical images) is special-cased to UM 1.0
// before the generic non-finite coercion below would otherwise zero it;
// see DESIGN.md for why this exception lives here rather than in
// metric.PSNR.
func Rescale(m metric.Method, v float64) float64 {
	if m == metric.PSNR && math.IsInf(v, 1) {
		return 1.0
	}
	v = coerce(v)

	switch m {
	case metric.PSNR:
		if v <= 0 {
			return 0
		}
		return (math.Sqrt(v) - 5) * 0.557
	case metric.MPE:
		if v > 0 {
			return (math.Sqrt(math.Sqrt(255/v)) - 1) * 0.29
		}
		return 1.0
	case metric.MSE:
		if v <= 0 {
			return 1.0
		}
		return Rescale(metric.MPE, math.Sqrt(v))
	case metric.MSEF:
		if v > 0 {
			return (math.Sqrt(math.Sqrt(1/v)) - 1) * 0.5
		}
		return 1.0
	case metric.SSIM:
		return Sigma(Sigma(Sigma(v))) * 1.57
	case metric.MSSSIM:
		return Sigma(Sigma(v)) * 1.59
	case metric.VifP1:
		return Sigma(Sigma(v)) * 1.10
	case metric.SmallFry:
		return (v*0.01 - 0.8) * 3.0
	case metric.SharpenBad:
		return Sigma(v) * 1.46
	case metric.Cor:
		return Sigma(Sigma(v))
	case metric.NHW:
		if v > 0 {
			return (math.Sqrt(math.Sqrt(1/v)) - 1) * 0.342
		}
		return 1.0
	default:
		return v
	}
}

// fusedMethods are the five metrics combined by Fused into the SUMMET
// metric, in the order the specification lists them.
var fusedMethods = [...]metric.Method{
	metric.SSIM,
	metric.SmallFry,
	metric.SharpenBad,
	metric.NHW,
	metric.VifP1,
}

// rawFor computes the raw value of method m over s, dispatching sharpenRadius
// through for SharpenBad.
func rawFor(m metric.Method, s metric.Sample, sharpenRadius int) (float64, error) {
	return metric.Compute(m, s, sharpenRadius)
}

// Fused computes the SUMMET fused metric: SSIM, Small-fry, sharpen-bad, NHW
// and VIF-P are each rescaled to UM, then combined with a variance-weighted
// average that down-weights metrics disagreeing with the consensus. If the
// mean squared deviation is zero (all UMs equal) or the weight sum is zero,
// the plain arithmetic mean is returned.
func Fused(s metric.Sample, sharpenRadius int) (float64, error) {
	ums := make([]float64, 0, len(fusedMethods))
	for _, m := range fusedMethods {
		raw, err := rawFor(m, s, sharpenRadius)
		if err != nil {
			return 0, err
		}
		ums = append(ums, coerce(Rescale(m, raw)))
	}
	return WeightedAverage(ums), nil
}

// WeightedAverage implements the variance-weighted average used by the
// fused metric: given values x1..xn with mean m and per-value squared
// deviations di = (xi-m)^2 with mean squared deviation D, each value is
// weighted wi = D / (D + di). Degenerates to the plain mean when D is zero
// or all weights sum to zero.
func WeightedAverage(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	mean := floats.Sum(vals) / float64(n)

	devs := make([]float64, n)
	var sumDev float64
	for i, v := range vals {
		d := v - mean
		devs[i] = d * d
		sumDev += devs[i]
	}
	dBar := sumDev / float64(n)
	if dBar == 0 {
		return mean
	}

	var wSum, wxSum float64
	for i, v := range vals {
		w := dBar / (dBar + devs[i])
		wSum += w
		wxSum += w * v
	}
	if wSum == 0 {
		return mean
	}
	return wxSum / wSum
}

// TwoMetricMean computes the arithmetic mean of the UM-rescaled values of
// two metrics, used by the SSIMFry and SSIMShB two-metric variants.
func TwoMetricMean(s metric.Sample, a, b metric.Method, sharpenRadius int) (float64, error) {
	ra, err := rawFor(a, s, sharpenRadius)
	if err != nil {
		return 0, err
	}
	rb, err := rawFor(b, s, sharpenRadius)
	if err != nil {
		return 0, err
	}
	ua := coerce(Rescale(a, ra))
	ub := coerce(Rescale(b, rb))
	return (ua + ub) / 2, nil
}

// UM computes the UM-scale fidelity value for the named method, handling
// the fused (Sum) and two-metric (SSIMFry, SSIMShB) composites in addition
// to plain single-metric methods. Fast is not a UM-scale metric; callers
// needing the hash comparison should use package bisect's FastScore.
func UM(m metric.Method, s metric.Sample, sharpenRadius int) (float64, error) {
	switch m {
	case metric.Sum:
		return Fused(s, sharpenRadius)
	case metric.SSIMFry:
		return TwoMetricMean(s, metric.SSIM, metric.SmallFry, sharpenRadius)
	case metric.SSIMShB:
		return TwoMetricMean(s, metric.SSIM, metric.SharpenBad, sharpenRadius)
	default:
		raw, err := rawFor(m, s, sharpenRadius)
		if err != nil {
			return 0, err
		}
		return coerce(Rescale(m, raw)), nil
	}
}
