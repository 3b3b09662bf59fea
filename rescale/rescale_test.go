/*
DESCRIPTION
  rescale_test.go provides testing for the sigma contraction, per-metric
  rescaling table, and fused-metric weighted average in rescale.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rescale

import (
	"math"
	"testing"

	"github.com/ausocean/recompress/metric"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestSigmaBoundaries(t *testing.T) {
	tests := []struct {
		c, want float64
	}{
		{0, 0},
		{1, 1},
		{0.5, 1 - math.Sqrt(0.75)},
		{2, 1 / (1 - math.Sqrt(0.75))},
	}
	for _, test := range tests {
		got := Sigma(test.c)
		if !near(got, test.want, 1e-3) {
			t.Errorf("Sigma(%v) = %v, want %v", test.c, got, test.want)
		}
	}
}

func TestRescaleSmallFryPinning(t *testing.T) {
	got := Rescale(metric.SmallFry, 80.0)
	want := (80.0*0.01 - 0.8) * 3.0
	if !near(got, want, 1e-9) {
		t.Errorf("Rescale(SmallFry, 80) = %v, want %v", got, want)
	}
	if want != 0 {
		t.Errorf("sanity: want should be 0, got %v", want)
	}
}

func TestRescalePSNRPinning(t *testing.T) {
	v := math.Pow(5/0.557+5, 2)
	got := Rescale(metric.PSNR, v)
	want := 5.0 // (sqrt(v) - 5) * 0.557 = (5/0.557) * 0.557.
	if !near(got, want, 1e-2) {
		t.Errorf("Rescale(PSNR, %v) = %v, want ~%v", v, got, want)
	}
}

func TestRescalePSNRInfinite(t *testing.T) {
	got := Rescale(metric.PSNR, math.Inf(1))
	if got != 1.0 {
		t.Errorf("Rescale(PSNR, +Inf) = %v, want 1.0", got)
	}
}

func TestMonotoneRescalePSNR(t *testing.T) {
	prev := Rescale(metric.PSNR, 10)
	for _, v := range []float64{20, 30, 40, 50, 60} {
		got := Rescale(metric.PSNR, v)
		if got < prev {
			t.Errorf("Rescale(PSNR, ...) not monotone non-decreasing at v=%v: %v < %v", v, got, prev)
		}
		prev = got
	}
}

func TestWeightedAverageDegeneratesToMeanWhenEqual(t *testing.T) {
	vals := []float64{0.7, 0.7, 0.7, 0.7, 0.7}
	got := WeightedAverage(vals)
	if got != 0.7 {
		t.Errorf("WeightedAverage(all equal) = %v, want 0.7 exactly", got)
	}
}

func TestWeightedAverageDownweightsOutlier(t *testing.T) {
	vals := []float64{0.8, 0.8, 0.8, 0.8, 0.1}
	got := WeightedAverage(vals)
	plainMean := (0.8*4 + 0.1) / 5
	if got <= plainMean {
		t.Errorf("WeightedAverage(with outlier) = %v, want > plain mean %v (outlier should be downweighted)", got, plainMean)
	}
}

func TestWeightedAverageEmpty(t *testing.T) {
	if got := WeightedAverage(nil); got != 0 {
		t.Errorf("WeightedAverage(nil) = %v, want 0", got)
	}
}
