/*
DESCRIPTION
  recompress is a command-line front end for the bisect package: it reads
  a source image (PPM, JPEG or WebP), bisects the output codec's quality
  parameter toward the lowest setting perceptually indistinguishable from
  the source under a chosen metric (or locates its ZF-point), and writes
  the result to a sink path.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is the recompress command-line front end.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/recompress/bisect"
	"github.com/ausocean/recompress/codec"
	"github.com/ausocean/recompress/metric"
	"github.com/ausocean/recompress/pixel"

	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration, matching how other commands in this family
// configure their file logger.
const (
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logSuppress  = true
)

var methodNames = map[string]metric.Method{
	"fast":     metric.Fast,
	"mpe":      metric.MPE,
	"mse":      metric.MSE,
	"psnr":     metric.PSNR,
	"msef":     metric.MSEF,
	"ssim":     metric.SSIM,
	"ms-ssim":  metric.MSSSIM,
	"vifp1":    metric.VifP1,
	"smallfry": metric.SmallFry,
	"shbad":    metric.SharpenBad,
	"cor":      metric.Cor,
	"nhw":      metric.NHW,
	"ssimfry":  metric.SSIMFry,
	"ssimshb":  metric.SSIMShB,
	"sum":      metric.Sum,
}

var presetNames = map[string]bisect.Preset{
	"low":      bisect.Low,
	"medium":   bisect.Medium,
	"subhigh":  bisect.Subhigh,
	"high":     bisect.High,
	"veryhigh": bisect.Veryhigh,
}

var outputFormatNames = map[string]codec.Format{
	"jpeg": codec.JPEG,
	"webp": codec.WebP,
}

func main() {
	os.Exit(run())
}

// run implements main's logic and returns the process exit code, kept
// separate from main so deferred cleanup always executes before exit.
func run() int {
	var (
		input         = flag.String("input", "", "source image path (PPM, JPEG or WebP)")
		output        = flag.String("output", "", "destination path for the recompressed image")
		method        = flag.String("method", "sum", "comparison method: fast, mpe, mse, psnr, msef, ssim, ms-ssim, vifp1, smallfry, shbad, cor, nhw, ssimfry, ssimshb, sum")
		preset        = flag.String("preset", "", "named UM target: low, medium, subhigh, high, veryhigh (overrides -target)")
		target        = flag.Float64("target", 0.75, "UM target in [0,1] the search seeks the lowest quality meeting")
		legacyPresets = flag.Bool("legacy-presets", false, "use the older preset value table")
		qualityMin    = flag.Int("quality-min", bisect.DefaultJpegMin, "lowest quality considered")
		qualityMax    = flag.Int("quality-max", bisect.DefaultJpegMax, "highest quality considered")
		maxIterations = flag.Int("max-iterations", bisect.DefaultMaxIterations, "maximum bisection iterations")
		sharpenRadius = flag.Int("sharpen-radius", bisect.DefaultSharpenRadius, "sharpen-bad metric neighbourhood radius")
		outputFormat  = flag.String("output-format", "jpeg", "output codec: jpeg or webp")
		noSubsample   = flag.Bool("no-subsample", false, "disable chroma subsampling (JPEG 4:4:4)")
		noProgressive = flag.Bool("no-progressive", false, "disable progressive JPEG encoding on the terminal iteration")
		accurate      = flag.Bool("accurate", false, "force optimize_coding on every iteration, not just the terminal one")
		force         = flag.Bool("force", false, "write output even if it is not smaller than the input")
		copyOnNoGain  = flag.Bool("copy", false, "copy the source unchanged if no candidate beats its size")
		strip         = flag.Bool("strip", false, "strip preserved JPEG metadata from the output instead of transplanting it")
		zfpoint       = flag.Bool("zfpoint", false, "locate the ZF-point instead of bisecting to -target")
		logFile       = flag.String("log-file", "", "optional log file path (stderr if unset)")
		verbosity     = flag.Int("verbosity", int(logging.Info), "log verbosity level")
		showVersion   = flag.Bool("version", false, "show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return bisect.ExitOK
	}

	log := newLogger(*logFile, int8(*verbosity))

	if *input == "" || *output == "" {
		log.Error("recompress: -input and -output are required")
		return bisect.ExitUsage
	}

	cfg, err := buildConfig(*method, *preset, *legacyPresets, *target, *qualityMin, *qualityMax,
		*maxIterations, *sharpenRadius, *outputFormat, *noSubsample, *noProgressive,
		*accurate, *force, *copyOnNoGain, *strip, log)
	if err != nil {
		log.Error("recompress: invalid configuration", "error", err)
		return bisect.ExitCode(err)
	}

	req, err := buildRequest(*input)
	if err != nil {
		log.Error("recompress: reading input", "error", err)
		return bisect.ExitFailure
	}

	var res bisect.Result
	if *zfpoint {
		res, err = bisect.RunZF(cfg, req)
	} else {
		res, err = bisect.Run(cfg, req)
	}
	if err != nil {
		log.Error("recompress: search failed", "error", err)
		return bisect.ExitCode(err)
	}

	if err := os.WriteFile(*output, res.Bytes, 0644); err != nil {
		log.Error("recompress: writing output", "error", err)
		return bisect.ExitFailure
	}

	log.Info("recompress: done", "quality", res.Quality, "um", res.UM, "noGain", res.NoGain, "bytes", len(res.Bytes))
	return bisect.ExitOK
}

// newLogger builds the Logger every driver call is given: a lumberjack
// rotating file logger when -log-file is set, stderr otherwise.
func newLogger(path string, verbosity int8) logging.Logger {
	var w io.Writer = os.Stderr
	if path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
	}
	return logging.New(verbosity, w, logSuppress)
}

// buildConfig translates CLI flags into a bisect.Config, applying the
// named preset over -target when one is given.
func buildConfig(methodName, presetName string, legacy bool, target float64, qMin, qMax, maxIterations, sharpenRadius int,
	outputFormatName string, noSubsample, noProgressive, accurate, force, copyOnNoGain, strip bool, log logging.Logger) (*bisect.Config, error) {

	m, ok := methodNames[methodName]
	if !ok {
		return nil, bisect.ConfigErrorf("unknown method %q", methodName)
	}

	fmtName, ok := outputFormatNames[outputFormatName]
	if !ok {
		return nil, bisect.ConfigErrorf("unknown output format %q", outputFormatName)
	}

	if presetName != "" {
		p, ok := presetNames[presetName]
		if !ok {
			return nil, bisect.ConfigErrorf("unknown preset %q", presetName)
		}
		table := bisect.PresetTableCurrent
		if legacy {
			table = bisect.PresetTableLegacy
		}
		t, ok := bisect.TargetFor(table, p)
		if !ok {
			return nil, bisect.ConfigErrorf("preset %q has no entry in the chosen table", presetName)
		}
		target = t
	}

	cfg := bisect.NewConfig()
	cfg.Method = m
	cfg.Target = target
	cfg.JpegMin = qMin
	cfg.JpegMax = qMax
	cfg.MaxIterations = maxIterations
	cfg.SharpenRadius = sharpenRadius
	cfg.OutputFormat = fmtName
	cfg.NoProgressive = noProgressive
	cfg.Accurate = accurate
	cfg.Force = force
	cfg.CopyOnNoGain = copyOnNoGain
	cfg.Strip = strip
	cfg.Logger = log
	if noSubsample {
		cfg.Subsampling = codec.SubsampleDisabled
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRequest reads and decodes the source image at path into the
// bisect.Request every driver run needs: packed RGB pixels, their luma
// plane, dimensions, and the original bytes (for the already-processed
// check, metadata transplant and no-gain fallback copy).
func buildRequest(path string) (*bisect.Request, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &bisect.IOError{Err: err}
	}

	format := codec.Sniff(src)

	var rgb []byte
	var width, height int

	switch format {
	case codec.PPM:
		dec, err := codec.DecodePPM(src)
		if err != nil {
			return nil, &bisect.DecodeError{Err: err}
		}
		rgb, width, height = dec.Pixels, dec.Width, dec.Height

	case codec.JPEG, codec.WebP:
		cdc, err := codec.For(format)
		if err != nil {
			return nil, bisect.ConfigErrorf("%v", err)
		}
		dec, err := cdc.Decode(src, 3)
		if err != nil {
			return nil, &bisect.DecodeError{Err: err}
		}
		rgb, width, height = dec.Pixels, dec.Width, dec.Height

	default:
		return nil, &bisect.IOError{Err: fmt.Errorf("%s: unrecognised image format", path)}
	}

	return &bisect.Request{
		RefRGB:       rgb,
		RefY:         pixel.RGBToY(rgb, width, height),
		Width:        width,
		Height:       height,
		SourceFormat: format,
		SourceBytes:  src,
		InputSize:    len(src),
	}, nil
}
