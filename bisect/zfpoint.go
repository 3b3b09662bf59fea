/*
DESCRIPTION
  zfpoint.go implements the ZF-point (zero-flex) driver: rather than
  bisecting toward a caller-supplied UM target, it locates the quality at
  which a sigma-contracted correlation/sharpness composite's curve against
  quality crosses the straight line from the origin through its value at
  the top bracket endpoint -- the
  point past which raising quality further buys negligible additional
  fidelity.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bisect

import (
	"errors"

	"github.com/ausocean/recompress/codec"
	"github.com/ausocean/recompress/metric"
	"github.com/ausocean/recompress/rescale"
)

// corsharp combines the raw (non-UM-rescaled) correlation and sharpen-bad
// scores into the single composite the ZF-point driver contracts through
// rescale.Sigma. Neither Cor nor SharpenBad alone captures both "did
// structure survive" and "did high-frequency content survive"; averaging
// them gives a single scalar that responds to both. This composite is not
// one of the named metrics in metric.Method: it exists only for the
// ZF-point driver's slope objective, never for Compute or UM.
func corsharp(s metric.Sample, sharpenRadius int) (float64, error) {
	cor, err := metric.CorScore(s)
	if err != nil {
		return 0, err
	}
	shb, err := metric.SharpenBadScore(s, sharpenRadius)
	if err != nil {
		return 0, err
	}
	return (cor + shb) / 2, nil
}

// measurePoint encodes the reference at quality q (full options: final
// codec, progressive and optimize_coding both on, matching how the
// bracket endpoints and every trial quality are produced) and returns its
// sigma-contracted corsharp score alongside the trial candidate.
func measurePoint(cfg *Config, req *Request, cdc codec.Codec, q int) (candidate, float64, error) {
	progressive := !cfg.NoProgressive
	c, luma, err := encodeDecode(cfg, req, cdc, q, progressive, true)
	if err != nil {
		return candidate{}, 0, err
	}
	sample := metric.Sample{Ref: req.RefY, Cand: luma, Width: req.Width, Height: req.Height}
	raw, err := corsharp(sample, cfg.SharpenRadius)
	if err != nil {
		return candidate{}, 0, &InternalError{Err: err}
	}
	return c, rescale.Sigma(raw), nil
}

// RunZF performs the ZF-point search described by the specification:
// bracket the quality axis at [cfg.JpegMin, cfg.JpegMax], establish the
// origin-anchored slope mMax/qMax through the top bracket endpoint's
// sigma-contracted corsharp score, then bisect toward the quality whose
// deviation from that line changes sign, using the same terminal-iteration
// and metadata-splice handling as Run.
func RunZF(cfg *Config, req *Request) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cdc, err := codec.For(cfg.OutputFormat)
	if err != nil {
		return Result{}, &ConfigError{msg: err.Error()}
	}
	return runZF(cfg, req, cdc)
}

// runZF is RunZF's codec-injectable core, mirroring run/Run.
func runZF(cfg *Config, req *Request, cdc codec.Codec) (Result, error) {
	blob, err := extractSourceMetadata(cfg, req)
	if err != nil {
		var ap *AlreadyProcessedErr
		if errors.As(err, &ap) {
			return alreadyProcessedOutcome(cfg, req, ap)
		}
		return Result{}, err
	}

	qMin, qMax := cfg.JpegMin, cfg.JpegMax

	_, mMin, err := measurePoint(cfg, req, cdc, qMin)
	if err != nil {
		return Result{}, err
	}
	_, mMax, err := measurePoint(cfg, req, cdc, qMax)
	if err != nil {
		return Result{}, err
	}

	// Origin-anchored slope of the line from (0, 0) to (qMax, mMax):
	// slope = mMax / qMax. A point's deviation from this line is
	// d(q) = slope*q - m(q); at qMax this is mMax - mMax = 0 by
	// construction, and at qMin it is slope*qMin - mMin.
	slope := mMax / float64(qMax)
	dLo := slope*float64(qMin) - mMin
	dHi := 0.0

	lo, hi := qMin, qMax
	var lastAny *candidate

	for i := cfg.MaxIterations - 1; i >= 0; i-- {
		q := (lo + hi + 1) / 2
		terminal := lo == hi
		if terminal {
			i = 0
		}

		c, m, err := measurePoint(cfg, req, cdc, q)
		if err != nil {
			return Result{}, err
		}
		lastAny = &c

		d := slope*float64(q) - m
		cfg.Logger.Debug("zfpoint trial", "quality", q, "deviation", d, "lo", lo, "hi", hi, "terminal", terminal)

		if dLo < dHi {
			lo = minInt(q+1, hi)
			dLo = d
		} else {
			hi = maxInt(q-1, lo)
			dHi = d
		}
		if lo > hi {
			lo, hi = hi, lo
		}

		if terminal {
			break
		}
	}

	if lastAny == nil {
		return noGainOutcome(cfg, req, "no iterations ran")
	}
	if len(lastAny.bytes) >= req.InputSize && !cfg.Force {
		return noGainOutcome(cfg, req, "terminal candidate is not smaller than the input")
	}

	out, err := finalize(cfg, req, lastAny.bytes, blob)
	if err != nil {
		return Result{}, err
	}

	cfg.Logger.Info("zfpoint done", "quality", lastAny.quality, "size", len(out))
	return Result{Bytes: out, Quality: lastAny.quality}, nil
}
