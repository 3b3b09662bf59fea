/*
DESCRIPTION
  metric.go implements the bank of reference-versus-distorted image-quality
  metrics used to drive the bisection search: MPE, MSE, sigma-squared, MSEF,
  PSNR, SSIM, MS-SSIM, VIF-P (single scale), Small-fry, sharpen-bad,
  correlation and NHW. All metrics operate on equi-dimensional luma sample
  buffers and are pure, deterministic functions of their two inputs.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package metric computes scalar fidelity values between a reference and a
// candidate image buffer, on whatever raw scale each formula naturally
// produces. See package rescale for mapping these onto the common UM axis.
package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Method identifies a metric or comparison mode.
type Method int

// The set of recognised methods, matching the CLI tokens in the
// specification (fast, mpe, mse, psnr, msef, ssim, ms-ssim, vifp1,
// smallfry, shbad, cor, nhw, ssimfry, ssimshb, sum).
const (
	Fast Method = iota
	MPE
	MSE
	PSNR
	MSEF
	SSIM
	MSSSIM
	VifP1
	SmallFry
	SharpenBad
	Cor
	NHW
	SSIMFry
	SSIMShB
	Sum
)

func (m Method) String() string {
	switch m {
	case Fast:
		return "fast"
	case MPE:
		return "mpe"
	case MSE:
		return "mse"
	case PSNR:
		return "psnr"
	case MSEF:
		return "msef"
	case SSIM:
		return "ssim"
	case MSSSIM:
		return "ms-ssim"
	case VifP1:
		return "vifp1"
	case SmallFry:
		return "smallfry"
	case SharpenBad:
		return "shbad"
	case Cor:
		return "cor"
	case NHW:
		return "nhw"
	case SSIMFry:
		return "ssimfry"
	case SSIMShB:
		return "ssimshb"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Sample is a pair of equi-dimensional luma-only image buffers to compare.
type Sample struct {
	Ref, Cand []byte
	Width     int
	Height    int
}

// dimensionMismatchError is returned when Ref and Cand are not the same size.
type dimensionMismatchError struct{ lref, lcand int }

func (e *dimensionMismatchError) Error() string {
	return fmt.Sprintf("metric: dimension mismatch: len(ref)=%d len(cand)=%d", e.lref, e.lcand)
}

func (s Sample) validate() error {
	if len(s.Ref) != len(s.Cand) {
		return &dimensionMismatchError{len(s.Ref), len(s.Cand)}
	}
	return nil
}

// toFloat converts a byte sample slice to float64 for gonum stat calls.
func toFloat(b []byte) []float64 {
	f := make([]float64, len(b))
	for i, v := range b {
		f[i] = float64(v)
	}
	return f
}

// MPE returns the mean absolute per-sample error between ref and cand.
func MPE(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	var sum float64
	for i := range s.Ref {
		d := float64(s.Ref[i]) - float64(s.Cand[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(s.Ref)), nil
}

// MSE returns the mean squared error between ref and cand.
func MSE(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	var sum float64
	for i := range s.Ref {
		d := float64(s.Ref[i]) - float64(s.Cand[i])
		sum += d * d
	}
	return sum / float64(len(s.Ref)), nil
}

// Variance returns the combined variance of the reference and candidate
// samples, used internally to build MSEF.
func Variance(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	combined := make([]float64, 0, len(s.Ref)+len(s.Cand))
	combined = append(combined, toFloat(s.Ref)...)
	combined = append(combined, toFloat(s.Cand)...)
	return stat.Variance(combined, nil), nil
}

// MSEF returns the noise-normalised error sqrt(MSE / max(variance, 1)).
func MSEF(s Sample) (float64, error) {
	mse, err := MSE(s)
	if err != nil {
		return 0, err
	}
	v, err := Variance(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		v = 1
	}
	return math.Sqrt(mse / v), nil
}

// PSNR returns the standard 8-bit-channel peak signal-to-noise ratio.
// Identical images yield +Inf, consistent with the MSE==0 limit.
func PSNR(s Sample) (float64, error) {
	mse, err := MSE(s)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10((255*255)/mse), nil
}

// CorScore returns the global Pearson correlation coefficient between the
// reference and candidate luma planes.
func CorScore(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	if len(s.Ref) < 2 {
		return 1, nil
	}
	return stat.Correlation(toFloat(s.Ref), toFloat(s.Cand), nil), nil
}

// Compute dispatches to the metric named by m, returning its raw
// (un-rescaled) value. Fast is not a scalar metric (see package bisect's
// FastScore) and returns an error if requested here.
func Compute(m Method, s Sample, sharpenRadius int) (float64, error) {
	switch m {
	case MPE:
		return MPE(s)
	case MSE:
		return MSE(s)
	case PSNR:
		return PSNR(s)
	case MSEF:
		return MSEF(s)
	case SSIM:
		return SSIMScore(s)
	case MSSSIM:
		return MSSSIMScore(s)
	case VifP1:
		return VIFP1(s)
	case SmallFry:
		return SmallFryScore(s)
	case SharpenBad:
		return SharpenBadScore(s, sharpenRadius)
	case Cor:
		return CorScore(s)
	case NHW:
		return NHWScore(s)
	default:
		return 0, fmt.Errorf("metric: %s is not a single-metric Compute target", m)
	}
}
