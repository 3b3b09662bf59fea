/*
DESCRIPTION
  config.go provides the Config struct threaded through a single run of the
  target-quality or ZF-point driver: bisection bounds, the chosen metric and
  target, encoder option defaults, and policy flags (copy-on-no-gain,
  accurate, force, strip). Mirrors revid/config.Config: one exported struct
  constructed once and passed by reference, no process-wide globals.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bisect drives the codec, metric and metadata packages through the
// target-quality and ZF-point bisection searches described by the
// specification, and defines the error taxonomy and Config used to
// configure a run.
package bisect

import (
	"fmt"

	"github.com/ausocean/recompress/codec"
	"github.com/ausocean/recompress/metric"

	"github.com/ausocean/utils/logging"
)

// Preset identifies a named UM quality target.
type Preset int

const (
	PresetNone Preset = iota
	Low
	Medium
	Subhigh
	High
	Veryhigh
)

// PresetTable selects between the two historical preset value tables; see
// DESIGN.md for the Open Question this resolves. DefaultPresetTable is the
// table used when a Config does not explicitly choose one.
type PresetTable int

const (
	// PresetTableCurrent is the newer preset table:
	// {Low:0.5, Medium:0.75, Subhigh:0.875, High:0.9375, Veryhigh:0.96875}.
	PresetTableCurrent PresetTable = iota
	// PresetTableLegacy is the older table:
	// {Medium:0.76, High:0.93, Veryhigh:0.99}; Low and Subhigh are
	// unchanged from the current table in the legacy revision.
	PresetTableLegacy
)

// DefaultPresetTable is used whenever a Config leaves PresetTable at its
// zero value's effective choice (PresetTableCurrent), per spec.md's
// direction to make the default explicit rather than silently picking one.
const DefaultPresetTable = PresetTableCurrent

// presetTargets maps each (table, preset) pair to its UM target.
var presetTargets = map[PresetTable]map[Preset]float64{
	PresetTableCurrent: {
		Low:      0.5,
		Medium:   0.75,
		Subhigh:  0.875,
		High:     0.9375,
		Veryhigh: 0.96875,
	},
	PresetTableLegacy: {
		Low:      0.5,
		Medium:   0.76,
		Subhigh:  0.875,
		High:     0.93,
		Veryhigh: 0.99,
	},
}

// TargetFor returns the UM target for preset under the given table.
func TargetFor(table PresetTable, preset Preset) (float64, bool) {
	m, ok := presetTargets[table]
	if !ok {
		return 0, false
	}
	v, ok := m[preset]
	return v, ok
}

// Default bounds and iteration count, matching the specification's
// "max iterations N (default 6-8)" and bounding both quality axes to the
// codecs' full [1,100] range.
const (
	DefaultJpegMin        = 1
	DefaultJpegMax        = 100
	DefaultMaxIterations  = 7
	DefaultSharpenRadius  = 1
	DefaultTerminalExtras = 1
)

// Config configures one bisection run. A zero Config is not valid; use
// NewConfig to obtain one with defaults applied, then override fields
// before calling Validate.
type Config struct {
	// Method selects the metric (or "fast" hash comparison) driving the
	// search.
	Method metric.Method

	// Target is the UM value the search seeks the lowest quality meeting.
	// Ignored by the ZF-point driver.
	Target float64

	// JpegMin, JpegMax bound the integer quality axis searched.
	JpegMin, JpegMax int

	// MaxIterations bounds the number of bisection iterations run.
	MaxIterations int

	// SharpenRadius is the sharpen-bad metric's neighbourhood radius.
	SharpenRadius int

	// OutputFormat selects the codec the final candidate is encoded with.
	OutputFormat codec.Format

	// EncodeColorspace, NoProgressive and Subsampling configure the
	// encoder parameters template threaded through every iteration.
	EncodeColorspace codec.Colorspace
	NoProgressive    bool
	Subsampling      codec.Subsampling

	// CopyOnNoGain, when true, copies the source unchanged to the sink
	// instead of failing when no candidate ever beats the input's size
	// (or the source is already processed).
	CopyOnNoGain bool

	// Accurate forces optimize_coding on every iteration (not just the
	// terminal one). It does not change the number of iterations run.
	Accurate bool

	// Force allows writing output that is not smaller than the input.
	Force bool

	// Strip omits the preserved source metadata blob from JPEG output.
	Strip bool

	// Logger receives per-iteration progress and outcome messages. A
	// no-op logger is used if nil.
	Logger logging.Logger
}

// NewConfig returns a Config with the specification's stated defaults
// applied.
func NewConfig() *Config {
	return &Config{
		Method:        metric.Sum,
		Target:        0.75,
		JpegMin:       DefaultJpegMin,
		JpegMax:       DefaultJpegMax,
		MaxIterations: DefaultMaxIterations,
		SharpenRadius: DefaultSharpenRadius,
		OutputFormat:  codec.JPEG,
		Logger:        noopLogger{},
	}
}

// ConfigError reports invalid configuration. Validate returns it (and no
// other error type) for an inverted or out-of-range quality range or a
// non-positive iteration count; ConfigErrorf builds one for checks made
// outside this package, such as an unknown method or preset.
type ConfigError struct{ msg string }

func (e *ConfigError) Error() string { return "bisect: config error: " + e.msg }

// ConfigErrorf builds a ConfigError from a formatted message, for callers
// (such as a CLI front end validating flags) outside this package that
// need to report a configuration problem in the same taxonomy.
func ConfigErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Validate checks c's invariants, matching spec.md's "when jpegMin >
// jpegMax the driver fails with ConfigError".
func (c *Config) Validate() error {
	if c.JpegMin > c.JpegMax {
		return &ConfigError{msg: "jpegMin > jpegMax"}
	}
	if c.JpegMin < 1 || c.JpegMax > 100 {
		return &ConfigError{msg: "quality bounds must lie within [1,100]"}
	}
	if c.MaxIterations < 1 {
		return &ConfigError{msg: "maxIterations must be >= 1"}
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	return nil
}

// noopLogger discards all log calls, used when Config.Logger is nil.
type noopLogger struct{}

func (noopLogger) Log(int8, string, ...interface{})  {}
func (noopLogger) SetLevel(int8)                     {}
func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warning(string, ...interface{})    {}
func (noopLogger) Error(string, ...interface{})      {}
func (noopLogger) Fatal(string, ...interface{})      {}
