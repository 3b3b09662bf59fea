/*
DESCRIPTION
  errors.go defines the taxonomy of errors a driver run can fail with:
  IOError, DecodeError, EncodeError, InternalError, AlreadyProcessedErr
  and NoGainErr, plus ExitCode mapping each (and ConfigError, defined in
  config.go) onto the process exit codes described by the specification.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bisect

import "errors"

// IOError wraps a failure reading the source or writing the sink.
type IOError struct{ Err error }

func (e *IOError) Error() string { return "bisect: io error: " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// DecodeError wraps a failure decoding a source or candidate image.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return "bisect: decode error: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a failure encoding a candidate image.
type EncodeError struct{ Err error }

func (e *EncodeError) Error() string { return "bisect: encode error: " + e.Err.Error() }
func (e *EncodeError) Unwrap() error { return e.Err }

// InternalError wraps an unexpected failure: a metric computation error,
// dimension mismatch between source and decoded candidate, or a metadata
// splice failure. These indicate a driver or package bug rather than bad
// input.
type InternalError struct{ Err error }

func (e *InternalError) Error() string { return "bisect: internal error: " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// AlreadyProcessedErr is returned when the source JPEG already carries the
// sentinel COM marker and Config.CopyOnNoGain is false.
type AlreadyProcessedErr struct{ Err error }

func (e *AlreadyProcessedErr) Error() string {
	return "bisect: source already processed: " + e.Err.Error()
}
func (e *AlreadyProcessedErr) Unwrap() error { return e.Err }

// NoGainErr is returned when no candidate produced during the search beat
// the input's size (or the terminal candidate didn't, and Config.Force is
// false) and Config.CopyOnNoGain is false.
type NoGainErr struct{ msg string }

func (e *NoGainErr) Error() string { return "bisect: no size gain: " + e.msg }

// Exit codes, matching the specification's process-exit-code table.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitAlreadyProcessed = 2
	ExitUsage            = 255
)

// ExitCode maps a driver error (or nil) onto the process exit code a CLI
// front end should return.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ap *AlreadyProcessedErr
	if errors.As(err, &ap) {
		return ExitAlreadyProcessed
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ExitUsage
	}
	return ExitFailure
}
