/*
DESCRIPTION
  blockiness.go implements the JPEG-artefact oriented metrics: Small-fry
  (blockiness), sharpen-bad (sharpness loss) and NHW (a noise/halo/whitening
  composite). These are block- and edge-aware measures rather than the
  purely statistical ones in metric.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package metric

import "math"

// blockEdge is the JPEG DCT block size that Small-fry's blockiness
// detector looks for artefacts at.
const blockEdge = 8

// blockiness returns a measure of 8x8-grid edge discontinuity for a single
// luma plane: the mean absolute difference straddling a block boundary
// minus the mean absolute difference of an equivalent within-block pair,
// averaged over all internal boundaries. A pure JPEG block artefact drives
// this positive; a smooth gradient keeps it near zero.
func blockiness(img []byte, width, height int) float64 {
	var across, within float64
	var n int

	// Vertical boundaries (looking across a horizontal block edge).
	for x := blockEdge; x < width; x += blockEdge {
		for y := 0; y < height; y++ {
			a := float64(img[y*width+x-1])
			b := float64(img[y*width+x])
			across += math.Abs(b - a)
			if x+1 < width {
				c := float64(img[y*width+x+1])
				within += math.Abs(c - b)
			}
			n++
		}
	}
	// Horizontal boundaries (looking across a vertical block edge).
	for y := blockEdge; y < height; y += blockEdge {
		for x := 0; x < width; x++ {
			a := float64(img[(y-1)*width+x])
			b := float64(img[y*width+x])
			across += math.Abs(b - a)
			if y+1 < height {
				c := float64(img[(y+1)*width+x])
				within += math.Abs(c - b)
			}
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return across/float64(n) - within/float64(n)
}

// SmallFryScore returns a 0..100 blockiness-similarity score between ref and
// cand: 100 when candidate's block-edge signature matches the reference's,
// falling as JPEG blocking artefacts introduced by recompression diverge
// from whatever blocking (if any) the reference already had.
func SmallFryScore(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	br := blockiness(s.Ref, s.Width, s.Height)
	bc := blockiness(s.Cand, s.Width, s.Height)
	delta := math.Abs(bc - br)
	score := 100 - delta*20
	return math.Max(0, math.Min(100, score)), nil
}

// highFreqEnergy returns the mean squared deviation of each sample from the
// mean of its (2*radius+1) square neighbourhood, a simple measure of local
// high-frequency (edge/texture) energy.
func highFreqEnergy(img []byte, width, height, radius int) float64 {
	var sum float64
	var n int
	for y := 0; y < height; y++ {
		y0 := y - radius
		y1 := y + radius
		if y0 < 0 {
			y0 = 0
		}
		if y1 >= height {
			y1 = height - 1
		}
		for x := 0; x < width; x++ {
			x0 := x - radius
			x1 := x + radius
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= width {
				x1 = width - 1
			}
			var s float64
			var c int
			for yy := y0; yy <= y1; yy++ {
				row := yy * width
				for xx := x0; xx <= x1; xx++ {
					s += float64(img[row+xx])
					c++
				}
			}
			mean := s / float64(c)
			v := float64(img[y*width+x]) - mean
			sum += v * v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// defaultSharpenRadius is used when SharpenBadScore is invoked with radius<=0.
const defaultSharpenRadius = 1

// SharpenBadScore measures sharpness loss by comparing the local
// high-frequency energy of ref and cand over a (2*radius+1)-wide
// neighbourhood. Returns a similarity ratio clamped to [0, 2] where 1 means
// no sharpness was lost, and values below 1 indicate the candidate is
// softer than the reference.
func SharpenBadScore(s Sample, radius int) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	if radius <= 0 {
		radius = defaultSharpenRadius
	}
	refE := highFreqEnergy(s.Ref, s.Width, s.Height, radius)
	candE := highFreqEnergy(s.Cand, s.Width, s.Height, radius)
	if refE < 1e-6 {
		return 1, nil
	}
	ratio := candE / refE
	return math.Max(0, math.Min(2, ratio)), nil
}

// NHWScore returns a composite noise/halo/whitening artefact measure: the
// sum of (a) the squared change in local variance ("whitening", contrast
// flattening), (b) the mean overshoot of the candidate beyond the local
// min/max range of the reference neighbourhood ("halo", ringing near
// edges), and (c) the residual high-frequency energy the candidate carries
// that the reference did not ("noise"). Zero when cand == ref; larger for
// more severe artefacts, on roughly MSE-like units so it composes with the
// same rescale family as MPE/MSEF.
func NHWScore(s Sample) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	const radius = 1
	w, h := s.Width, s.Height

	var whitening, halo, noise float64
	var n int
	for y := 0; y < h; y++ {
		y0, y1 := y-radius, y+radius
		if y0 < 0 {
			y0 = 0
		}
		if y1 >= h {
			y1 = h - 1
		}
		for x := 0; x < w; x++ {
			x0, x1 := x-radius, x+radius
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}

			var sr, srr, mn, mx float64
			mn, mx = 255, 0
			var c int
			for yy := y0; yy <= y1; yy++ {
				row := yy * w
				for xx := x0; xx <= x1; xx++ {
					v := float64(s.Ref[row+xx])
					sr += v
					srr += v * v
					if v < mn {
						mn = v
					}
					if v > mx {
						mx = v
					}
					c++
				}
			}
			meanRef := sr / float64(c)
			varRef := srr/float64(c) - meanRef*meanRef

			var sc, scc float64
			for yy := y0; yy <= y1; yy++ {
				row := yy * w
				for xx := x0; xx <= x1; xx++ {
					v := float64(s.Cand[row+xx])
					sc += v
					scc += v * v
				}
			}
			meanCand := sc / float64(c)
			varCand := scc/float64(c) - meanCand*meanCand

			dv := varRef - varCand
			whitening += dv * dv

			candVal := float64(s.Cand[y*w+x])
			if candVal > mx {
				d := candVal - mx
				halo += d * d
			} else if candVal < mn {
				d := mn - candVal
				halo += d * d
			}

			refVal := float64(s.Ref[y*w+x])
			hf := (candVal - meanCand) - (refVal - meanRef)
			noise += hf * hf

			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return (whitening + halo + noise) / float64(n) / 3, nil
}
