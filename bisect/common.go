/*
DESCRIPTION
  common.go holds the Request/Result types and the encode-decode-measure
  step shared by the target-quality driver (driver.go) and the ZF-point
  driver (zfpoint.go): encoding a candidate at a trial quality, decoding it
  back, and comparing it against the reference luma.

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
	"fmt"

	"github.com/ausocean/recompress/codec"
	"github.com/ausocean/recompress/metadata"
	"github.com/ausocean/recompress/metric"
	"github.com/ausocean/recompress/rescale"
)

// Request is the input to a driver run: the reference image already
// decoded to packed RGB (and its luma plane, reused across every
// iteration so metrics never re-derive it), the source format (to decide
// whether metadata transplant and the already-processed check apply), the
// raw source bytes (for metadata extraction and as the no-gain fallback
// copy) and its size.
type Request struct {
	RefRGB        []byte
	RefY          []byte
	Width, Height int

	SourceFormat Format
	SourceBytes  []byte
	InputSize    int
}

// Format re-exports codec.Format so callers need only import bisect for a
// typical driver invocation.
type Format = codec.Format

const (
	JPEG    = codec.JPEG
	PPM     = codec.PPM
	WebPFmt = codec.WebP
)

// Result is a completed driver run's outcome.
type Result struct {
	Bytes   []byte
	Quality int
	UM      float64
	NoGain  bool // true when Bytes is an unmodified copy of the source.
}

// candidate is one trial encode-decode-measure outcome.
type candidate struct {
	bytes   []byte
	quality int
	um      float64
}

// encodeParams builds the Params template for trial quality q at a given
// iteration's forcing state.
func encodeParams(cfg *Config, q int, progressive, optimize bool) codec.Params {
	return codec.Params{
		Format:         cfg.OutputFormat,
		Quality:        q,
		Colorspace:     cfg.EncodeColorspace,
		Progressive:    progressive,
		OptimizeCoding: optimize,
		Subsampling:    cfg.Subsampling,
	}
}

// encodeDecode encodes the reference at quality q with the given forcing
// flags and decodes the result back to luma, checking dimensions survived
// the round trip. It is the shared step under both the UM-target trial
// (trial) and the ZF-point driver's corsharp measurement (measurePoint).
func encodeDecode(cfg *Config, req *Request, cdc codec.Codec, q int, progressive, optimize bool) (candidate, []byte, error) {
	params := encodeParams(cfg, q, progressive, optimize)
	enc, err := cdc.Encode(req.RefRGB, req.Width, req.Height, params)
	if err != nil {
		return candidate{}, nil, &EncodeError{Err: err}
	}

	dec, err := cdc.Decode(enc, 1)
	if err != nil {
		return candidate{}, nil, &DecodeError{Err: err}
	}
	if dec.Width != req.Width || dec.Height != req.Height {
		return candidate{}, nil, &InternalError{Err: fmt.Errorf("decoded candidate is %dx%d, want %dx%d", dec.Width, dec.Height, req.Width, req.Height)}
	}

	return candidate{bytes: enc, quality: q}, dec.Pixels, nil
}

// trial runs encodeDecode and scores the result under cfg.Method, the
// UM-target driver's trial step.
func trial(cfg *Config, req *Request, cdc codec.Codec, q int, progressive, optimize bool) (candidate, error) {
	c, luma, err := encodeDecode(cfg, req, cdc, q, progressive, optimize)
	if err != nil {
		return candidate{}, err
	}

	if cfg.Method == metric.Fast {
		c.um = fastUM(req.RefY, luma, req.Width, req.Height)
		return c, nil
	}

	sample := metric.Sample{Ref: req.RefY, Cand: luma, Width: req.Width, Height: req.Height}
	um, err := rescale.UM(cfg.Method, sample, cfg.SharpenRadius)
	if err != nil {
		return candidate{}, &InternalError{Err: err}
	}
	c.um = um

	return c, nil
}

// extractSourceMetadata runs the already-processed check and metadata
// extraction for JPEG sources. Non-JPEG sources (PPM, WebP) have no
// marker stream to scan and return a zero Blob.
func extractSourceMetadata(cfg *Config, req *Request) (metadata.Blob, error) {
	if req.SourceFormat != codec.JPEG {
		return metadata.Blob{}, nil
	}
	blob, err := metadata.Extract(req.SourceBytes)
	if err != nil {
		var ap *metadata.AlreadyProcessedError
		if errors.As(err, &ap) {
			return metadata.Blob{}, &AlreadyProcessedErr{Err: err}
		}
		return metadata.Blob{}, &DecodeError{Err: err}
	}
	return blob, nil
}

// finalize splices preserved source metadata into out when both the
// source and output format are JPEG, leaving out untouched otherwise.
func finalize(cfg *Config, req *Request, out []byte, blob metadata.Blob) ([]byte, error) {
	if req.SourceFormat != codec.JPEG || cfg.OutputFormat != codec.JPEG {
		return out, nil
	}
	spliced, err := metadata.Splice(out, blob, cfg.Strip)
	if err != nil {
		return nil, &InternalError{Err: err}
	}
	return spliced, nil
}

// noGainOutcome applies Config.CopyOnNoGain's policy: a copy of the
// source, or a NoGainErr.
func noGainOutcome(cfg *Config, req *Request, reason string) (Result, error) {
	if cfg.CopyOnNoGain {
		return Result{Bytes: req.SourceBytes, NoGain: true}, nil
	}
	return Result{}, &NoGainErr{msg: reason}
}

// alreadyProcessedOutcome applies Config.CopyOnNoGain's policy to a source
// already carrying the sentinel comment: a copy of the source, or err
// itself (an *AlreadyProcessedErr) so ExitCode maps it to
// ExitAlreadyProcessed rather than conflating it with a genuine no-gain
// outcome.
func alreadyProcessedOutcome(cfg *Config, req *Request, err *AlreadyProcessedErr) (Result, error) {
	if cfg.CopyOnNoGain {
		return Result{Bytes: req.SourceBytes, NoGain: true}, nil
	}
	return Result{}, err
}
