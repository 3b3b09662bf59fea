/*
DESCRIPTION
  metric_test.go provides testing for the metric bank in metric.go, ssim.go
  and blockiness.go.

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
	"testing"
)

func identicalSample(n, width, height int) Sample {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte((i * 37) % 256)
	}
	cand := make([]byte, n)
	copy(cand, buf)
	return Sample{Ref: buf, Cand: cand, Width: width, Height: height}
}

func TestMSEZeroForIdentical(t *testing.T) {
	s := identicalSample(64, 8, 8)
	got, err := MSE(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("MSE(identical) = %v, want 0", got)
	}
}

func TestPSNRInfiniteForIdentical(t *testing.T) {
	s := identicalSample(64, 8, 8)
	got, err := PSNR(s)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(got, 1) {
		t.Errorf("PSNR(identical) = %v, want +Inf", got)
	}
}

func TestSSIMOneForIdentical(t *testing.T) {
	s := identicalSample(64, 8, 8)
	got, err := SSIMScore(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("SSIM(identical) = %v, want 1", got)
	}
}

func TestCorOneForIdentical(t *testing.T) {
	s := identicalSample(64, 8, 8)
	got, err := CorScore(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("CorScore(identical) = %v, want 1", got)
	}
}

func TestDimensionMismatch(t *testing.T) {
	s := Sample{Ref: make([]byte, 4), Cand: make([]byte, 5), Width: 2, Height: 2}
	if _, err := MSE(s); err == nil {
		t.Error("MSE with mismatched dimensions: want error, got nil")
	}
}

func TestSmallFryPerfectScoreForIdentical(t *testing.T) {
	s := identicalSample(16*16, 16, 16)
	got, err := SmallFryScore(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != 100 {
		t.Errorf("SmallFryScore(identical) = %v, want 100", got)
	}
}

func TestSharpenBadOneForIdentical(t *testing.T) {
	s := identicalSample(16*16, 16, 16)
	got, err := SharpenBadScore(s, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("SharpenBadScore(identical) = %v, want 1", got)
	}
}

func TestNHWZeroForIdentical(t *testing.T) {
	s := identicalSample(16*16, 16, 16)
	got, err := NHWScore(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("NHWScore(identical) = %v, want 0", got)
	}
}

func TestVIFP1OneForIdentical(t *testing.T) {
	s := identicalSample(64, 8, 8)
	got, err := VIFP1(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("VIFP1(identical) = %v, want 1", got)
	}
}

func TestMSSSIMOneForIdentical(t *testing.T) {
	s := identicalSample(32*32, 32, 32)
	got, err := MSSSIMScore(s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("MSSSIMScore(identical) = %v, want 1", got)
	}
}

func TestComputeUnknownMethod(t *testing.T) {
	s := identicalSample(64, 8, 8)
	if _, err := Compute(Fast, s, 0); err == nil {
		t.Error("Compute(Fast, ...): want error, got nil")
	}
}
