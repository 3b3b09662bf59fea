/*
DESCRIPTION
  driver.go implements the target-quality bisection driver: searching the
  integer JPEG/WebP quality axis for the lowest quality whose UM score (for
  the configured metric) meets or exceeds Config.Target, re-encoding the
  winning quality on a terminal iteration with progressive/optimize_coding
  forced on, and splicing preserved source metadata into the result.

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
)

// Run performs the target-quality bisection search described by the
// specification: narrowing [cfg.JpegMin, cfg.JpegMax] toward the lowest
// quality whose UM score meets cfg.Target, then re-encoding that quality
// once more with progressive coding and optimize_coding forced on before
// splicing the source's preserved metadata into the result.
//
// The narrowing convention chosen here (documented in DESIGN.md as an
// Open Question decision) is: on a passing trial, hi <- max(q, lo); on a
// failing trial, lo <- min(q, hi). The loop always runs one additional
// "terminal" iteration once lo == hi, at which point progressive coding is
// enabled (unless cfg.NoProgressive) and optimize_coding is forced on
// regardless of cfg.Accurate.
func Run(cfg *Config, req *Request) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cdc, err := codec.For(cfg.OutputFormat)
	if err != nil {
		return Result{}, &ConfigError{msg: err.Error()}
	}
	return run(cfg, req, cdc)
}

// run is Run's codec-injectable core: the bisection control flow exercised
// directly by tests against a fake codec.Codec, without requiring an
// actual JPEG/WebP library.
func run(cfg *Config, req *Request, cdc codec.Codec) (Result, error) {
	blob, err := extractSourceMetadata(cfg, req)
	if err != nil {
		var ap *AlreadyProcessedErr
		if errors.As(err, &ap) {
			return alreadyProcessedOutcome(cfg, req, ap)
		}
		return Result{}, err
	}

	lo, hi := cfg.JpegMin, cfg.JpegMax
	var lastGood *candidate
	var lastAny *candidate
	lastPassed := false

	for i := cfg.MaxIterations - 1; i >= 0; i-- {
		q := (lo + hi + 1) / 2
		terminal := lo == hi
		if terminal {
			i = 0
		}
		progressive := i == 0 && !cfg.NoProgressive
		optimize := cfg.Accurate || i == 0

		c, err := trial(cfg, req, cdc, q, progressive, optimize)
		if err != nil {
			return Result{}, err
		}
		lastAny = &c

		cfg.Logger.Debug("bisect trial", "quality", q, "um", c.um, "size", len(c.bytes), "lo", lo, "hi", hi, "terminal", terminal)

		if c.um < cfg.Target {
			if len(c.bytes) >= req.InputSize {
				return noGainOutcome(cfg, req, "no quality in range produces a smaller, passing candidate")
			}
			lo = minInt(q, hi)
			lastPassed = false
		} else {
			hi = maxInt(q, lo)
			good := c
			lastGood = &good
			lastPassed = true
		}

		if terminal {
			break
		}
	}

	chosen := lastGood
	if chosen == nil {
		chosen = lastAny
	}
	if chosen == nil {
		return noGainOutcome(cfg, req, "no iterations ran")
	}

	// The last trial always runs with the terminal forcing flags; a passing
	// candidate from an earlier trial is re-encoded with them as well.
	if lastGood != nil && !lastPassed {
		c, err := trial(cfg, req, cdc, lastGood.quality, !cfg.NoProgressive, true)
		if err != nil {
			return Result{}, err
		}
		chosen = &c
	}

	if len(chosen.bytes) >= req.InputSize && !cfg.Force {
		return noGainOutcome(cfg, req, "terminal candidate is not smaller than the input")
	}

	out, err := finalize(cfg, req, chosen.bytes, blob)
	if err != nil {
		return Result{}, err
	}

	cfg.Logger.Info("bisect done", "quality", chosen.quality, "um", chosen.um, "size", len(out))
	return Result{Bytes: out, Quality: chosen.quality, UM: chosen.um}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
