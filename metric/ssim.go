/*
DESCRIPTION
  ssim.go implements the block-windowed structural and information-theoretic
  metrics: SSIM, its multiscale variant, and the pixel-domain single-scale
  VIF-P formulation. Each operates over non-overlapping luma windows: SSIM
  takes the arithmetic mean of per-window scores, MS-SSIM combines per-scale
  SSIM values as a weighted geometric mean, and VIF-P divides the summed
  per-window numerators by the summed denominators, following the
  conventional formulations used by reference IQA implementations.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package metric

import (
	"math"

	"github.com/ausocean/recompress/pixel"
)

// defaultWindow is the side length of the non-overlapping windows SSIM and
// VIF-P are evaluated over, matching the 8x8 block size JPEG itself codes
// in.
const defaultWindow = 8

// ssimC1, ssimC2 are the standard SSIM stabilising constants for 8-bit
// samples with the default dynamic-range scaling K1=0.01, K2=0.03.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

type windowStats struct {
	meanRef, meanCand   float64
	varRef, varCand     float64
	covar               float64
}

// windows walks s in non-overlapping win x win blocks, calling fn with the
// per-block statistics of each full block. Partial trailing blocks are
// skipped, matching the conventional SSIM windowing behaviour.
func windows(s Sample, win int, fn func(windowStats)) {
	for by := 0; by+win <= s.Height; by += win {
		for bx := 0; bx+win <= s.Width; bx += win {
			var sr, sc, srr, scc, src float64
			n := float64(win * win)
			for y := 0; y < win; y++ {
				row := (by + y) * s.Width
				for x := 0; x < win; x++ {
					idx := row + bx + x
					r := float64(s.Ref[idx])
					c := float64(s.Cand[idx])
					sr += r
					sc += c
					srr += r * r
					scc += c * c
					src += r * c
				}
			}
			mr := sr / n
			mc := sc / n
			vr := srr/n - mr*mr
			vc := scc/n - mc*mc
			cov := src/n - mr*mc
			fn(windowStats{meanRef: mr, meanCand: mc, varRef: vr, varCand: vc, covar: cov})
		}
	}
}

// SSIMScore computes the mean structural similarity index over non-overlapping
// 8x8 luma windows.
func SSIMScore(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	var sum float64
	var n int
	windows(s, defaultWindow, func(w windowStats) {
		num := (2*w.meanRef*w.meanCand + ssimC1) * (2*w.covar + ssimC2)
		den := (w.meanRef*w.meanRef + w.meanCand*w.meanCand + ssimC1) * (w.varRef + w.varCand + ssimC2)
		sum += num / den
		n++
	})
	if n == 0 {
		return 1, nil
	}
	return sum / float64(n), nil
}

// msScaleWeights are the default Wang et al. multiscale SSIM weights for
// five scales, coarse-to-fine reversed to fine-to-coarse as consumed below.
var msScaleWeights = []float64{0.0448, 0.2856, 0.3001, 0.2363, 0.1333}

// MSSSIMScore computes the multiscale SSIM by successively halving the
// image resolution (nearest-neighbour, via package pixel) and combining the
// per-scale SSIM values with the default scale weights.
func MSSSIMScore(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	ref, cand := s.Ref, s.Cand
	w, h := s.Width, s.Height

	var product float64 = 1
	var weightSum float64
	for scale, weight := range msScaleWeights {
		if w < defaultWindow || h < defaultWindow {
			break
		}
		val, err := SSIMScore(Sample{Ref: ref, Cand: cand, Width: w, Height: h})
		if err != nil {
			return 0, err
		}
		if val < 0 {
			val = 0
		}
		product *= math.Pow(val, weight)
		weightSum += weight

		if scale == len(msScaleWeights)-1 {
			break
		}
		nw, nh := w/2, h/2
		if nw < defaultWindow || nh < defaultWindow {
			break
		}
		ref = pixel.Downscale(ref, w, h, nw, nh)
		cand = pixel.Downscale(cand, w, h, nw, nh)
		w, h = nw, nh
	}
	if weightSum == 0 {
		return 1, nil
	}
	return math.Pow(product, 1/weightSum), nil
}

// vifNoiseVariance is the assumed HVS noise variance used by the
// pixel-domain single-scale VIF-P formulation.
const vifNoiseVariance = 2.0

// VIFP1 computes the pixel-domain, single-scale Visual Information Fidelity
// metric over non-overlapping 8x8 windows.
func VIFP1(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	var num, den float64
	windows(s, defaultWindow, func(w windowStats) {
		sigmaRef := w.varRef
		sigmaCand := w.varCand
		sigmaRD := w.covar

		if sigmaRef < 1e-10 {
			return
		}

		g := sigmaRD / sigmaRef
		sv2 := sigmaCand - g*sigmaRD
		if sv2 < 1e-10 {
			sv2 = 1e-10
		}
		if g < 0 {
			g = 0
			sv2 = sigmaCand
		}

		num += math.Log2(1 + (g*g*sigmaRef)/(sv2+vifNoiseVariance))
		den += math.Log2(1 + sigmaRef/vifNoiseVariance)
	})
	if den == 0 {
		return 1, nil
	}
	return num / den, nil
}
