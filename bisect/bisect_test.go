/*
DESCRIPTION
  bisect_test.go exercises the target-quality and ZF-point drivers against
  a fake, in-memory codec.Codec so the bisection control flow is tested
  independently of any real JPEG/WebP library.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bisect

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ausocean/recompress/codec"
	"github.com/ausocean/recompress/metadata"
	"github.com/ausocean/recompress/metric"
	"github.com/ausocean/recompress/pixel"
)

// fakeCodec simulates lossy compression without any real codec library:
// Encode degrades a packed RGB buffer by zeroing out a quality-dependent
// tail fraction of it and prefixing the result with the quality used, so
// a higher quality produces a more faithful decode -- the monotonic
// fidelity-vs-quality relationship the bisection search assumes --
// without depending on cgo or any third-party encoder. Its encoded size
// is constant regardless of quality, which is what the no-gain tests
// below rely on.
type fakeCodec struct{}

func (fakeCodec) Encode(pixels []byte, width, height int, params codec.Params) ([]byte, error) {
	if params.Quality < 1 || params.Quality > 100 {
		return nil, codecErrorf("quality out of range: %d", params.Quality)
	}
	keep := len(pixels) * params.Quality / 100
	out := make([]byte, 1+len(pixels))
	out[0] = byte(params.Quality)
	copy(out[1:1+keep], pixels[:keep])
	return out, nil
}

func (fakeCodec) Decode(data []byte, requestedComponents int) (codec.DecodeResult, error) {
	if len(data) < 1 {
		return codec.DecodeResult{}, codecErrorf("empty stream")
	}
	rgb := data[1:]
	width, height := fakeWidth, fakeHeight
	if requestedComponents == 1 {
		return codec.DecodeResult{Pixels: pixel.RGBToY(rgb, width, height), Width: width, Height: height, Components: 1}, nil
	}
	return codec.DecodeResult{Pixels: rgb, Width: width, Height: height, Components: 3}, nil
}

func codecErrorf(format string, args ...interface{}) error {
	return &EncodeError{Err: &testErr{format}}
}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

const (
	fakeWidth  = 6
	fakeHeight = 4
)

func fakeRefPixels() []byte {
	n := fakeWidth * fakeHeight * 3
	out := make([]byte, n)
	for i := range out {
		out[i] = byte((i * 37) % 256)
	}
	return out
}

func fakeRequest() *Request {
	rgb := fakeRefPixels()
	y := pixel.RGBToY(rgb, fakeWidth, fakeHeight)
	return &Request{
		RefRGB:       rgb,
		RefY:         y,
		Width:        fakeWidth,
		Height:       fakeHeight,
		SourceFormat: codec.PPM,
		SourceBytes:  append([]byte{'P', '6'}, rgb...),
		InputSize:    len(rgb) + 100, // comfortably larger than any fake encoding.
	}
}

// sentinelJPEG builds a minimal JPEG marker stream carrying the sentinel
// COM segment metadata.Extract recognises as already-processed: SOI
// followed directly by a COM marker whose payload is metadata.Sentinel.
func sentinelJPEG() []byte {
	payload := []byte(metadata.Sentinel)
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8})
	buf.Write([]byte{0xFF, 0xFE})
	binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	return buf.Bytes()
}

func TestConfigValidateRejectsInvertedRange(t *testing.T) {
	cfg := NewConfig()
	cfg.JpegMin, cfg.JpegMax = 80, 20
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate with jpegMin > jpegMax: want error, got nil")
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate on NewConfig defaults: %v", err)
	}
}

func TestRunFindsLowestPassingQuality(t *testing.T) {
	cfg := NewConfig()
	cfg.Method = metric.MSE
	cfg.Target = 0.9
	cfg.JpegMin, cfg.JpegMax = 1, 100
	cfg.MaxIterations = 8
	cfg.OutputFormat = codec.JPEG

	req := fakeRequest()
	res, err := run(cfg, req, fakeCodec{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Quality < cfg.JpegMin || res.Quality > cfg.JpegMax {
		t.Errorf("Quality = %d, out of configured range [%d,%d]", res.Quality, cfg.JpegMin, cfg.JpegMax)
	}
	if res.UM < cfg.Target {
		t.Errorf("UM = %f, want >= target %f", res.UM, cfg.Target)
	}
}

func TestRunNoGainWithoutCopyOnNoGainFails(t *testing.T) {
	cfg := NewConfig()
	cfg.Method = metric.MSE
	cfg.Target = 0.999999 // unreachable by the fake codec's lossy model below full quality.
	cfg.JpegMin, cfg.JpegMax = 1, 2
	cfg.MaxIterations = 2
	cfg.OutputFormat = codec.JPEG
	cfg.CopyOnNoGain = false

	req := fakeRequest()
	req.InputSize = 1 // nothing can beat this.
	_, err := run(cfg, req, fakeCodec{})
	if err == nil {
		t.Fatal("run with unbeatable input size: want error, got nil")
	}
	var ng *NoGainErr
	if !isNoGain(err, &ng) {
		t.Errorf("run error = %v, want *NoGainErr", err)
	}
}

func TestRunCopyOnNoGainReturnsSource(t *testing.T) {
	cfg := NewConfig()
	cfg.Method = metric.MSE
	cfg.Target = 0.999999
	cfg.JpegMin, cfg.JpegMax = 1, 2
	cfg.MaxIterations = 2
	cfg.OutputFormat = codec.JPEG
	cfg.CopyOnNoGain = true

	req := fakeRequest()
	req.InputSize = 1
	res, err := run(cfg, req, fakeCodec{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Result{Bytes: req.SourceBytes, NoGain: true}
	if diff := cmp.Diff(want, res, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("copy-on-no-gain Result mismatch (-want +got):\n%s", diff)
	}
}

// TestRunAlreadyProcessedWithoutCopyExitsWithCode2 is a regression test for
// spec.md's scenario 6: an already-processed source, with copy-on-no-gain
// disabled, must fail with an *AlreadyProcessedErr (ExitCode 2), not be
// conflated with a generic *NoGainErr (which maps to ExitCode 1).
func TestRunAlreadyProcessedWithoutCopyExitsWithCode2(t *testing.T) {
	cfg := NewConfig()
	cfg.Method = metric.MSE
	cfg.JpegMin, cfg.JpegMax = 1, 2
	cfg.MaxIterations = 2
	cfg.OutputFormat = codec.JPEG
	cfg.CopyOnNoGain = false

	req := fakeRequest()
	req.SourceFormat = codec.JPEG
	req.SourceBytes = sentinelJPEG()

	_, err := run(cfg, req, fakeCodec{})
	if err == nil {
		t.Fatal("run with already-processed source: want error, got nil")
	}
	var ap *AlreadyProcessedErr
	if !errors.As(err, &ap) {
		t.Fatalf("run error = %v (%T), want *AlreadyProcessedErr", err, err)
	}
	if got := ExitCode(err); got != ExitAlreadyProcessed {
		t.Errorf("ExitCode(err) = %d, want %d", got, ExitAlreadyProcessed)
	}
}

func TestRunZFConverges(t *testing.T) {
	cfg := NewConfig()
	cfg.JpegMin, cfg.JpegMax = 1, 100
	cfg.MaxIterations = 6
	cfg.OutputFormat = codec.JPEG
	cfg.Force = true // the fake codec's tiny buffers are not representative of real size gains.

	req := fakeRequest()
	res, err := runZF(cfg, req, fakeCodec{})
	if err != nil {
		t.Fatalf("runZF: %v", err)
	}
	if res.Quality < cfg.JpegMin || res.Quality > cfg.JpegMax {
		t.Errorf("Quality = %d, out of configured range", res.Quality)
	}
}

func TestFastScoreIdenticalIsZero(t *testing.T) {
	rgb := fakeRefPixels()
	y := pixel.RGBToY(rgb, fakeWidth, fakeHeight)
	if got := FastScore(y, y, fakeWidth, fakeHeight); got != 0 {
		t.Errorf("FastScore(y, y) = %d, want 0", got)
	}
}

func TestExitCodeMapsAlreadyProcessed(t *testing.T) {
	err := &AlreadyProcessedErr{Err: &testErr{"already"}}
	if got := ExitCode(err); got != ExitAlreadyProcessed {
		t.Errorf("ExitCode(AlreadyProcessedErr) = %d, want %d", got, ExitAlreadyProcessed)
	}
}

func TestExitCodeMapsConfigError(t *testing.T) {
	if got := ExitCode(&ConfigError{msg: "bad"}); got != ExitUsage {
		t.Errorf("ExitCode(ConfigError) = %d, want %d", got, ExitUsage)
	}
}

func TestExitCodeOK(t *testing.T) {
	if got := ExitCode(nil); got != ExitOK {
		t.Errorf("ExitCode(nil) = %d, want %d", got, ExitOK)
	}
}

// isNoGain is a small type-assertion helper kept local to the test file so
// the test body above reads linearly.
func isNoGain(err error, target **NoGainErr) bool {
	ng, ok := err.(*NoGainErr)
	if !ok {
		return false
	}
	*target = ng
	return true
}
