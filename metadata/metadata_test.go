/*
DESCRIPTION
  metadata_test.go provides testing for marker extraction and splicing in
  metadata.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package metadata

import (
	"bytes"
	"errors"
	"testing"
)

// marker builds a generic 2-byte-marker + 2-byte-big-endian-size segment.
func marker(code byte, payload []byte) []byte {
	out := []byte{0xFF, code, 0, 0}
	size := len(payload) + 2
	out[2] = byte(size >> 8)
	out[3] = byte(size)
	return append(out, payload...)
}

func buildSource(comPayload []byte) []byte {
	var b []byte
	b = append(b, 0xFF, 0xD8) // SOI
	b = append(b, marker(0xE0, []byte("JFIF\x00"))...)
	app1 := marker(0xE1, []byte("Exif\x00\x00hello"))
	b = append(b, app1...)
	if comPayload != nil {
		b = append(b, marker(0xFE, comPayload)...)
	}
	b = append(b, 0xFF, 0xDA) // SOS
	b = append(b, 0x00, 0x01, 0x02, 0xFF, 0xD9)
	return b
}

func TestExtractCollectsAPPnAndCOM(t *testing.T) {
	src := buildSource([]byte("a comment"))
	blob, err := Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if blob.Count != 2 {
		t.Fatalf("blob.Count = %d, want 2", blob.Count)
	}

	wantAPP1 := marker(0xE1, []byte("Exif\x00\x00hello"))
	wantCOM := marker(0xFE, []byte("a comment"))
	want := append(append([]byte{}, wantAPP1...), wantCOM...)
	if !bytes.Equal(blob.Bytes, want) {
		t.Errorf("blob.Bytes = %x, want %x", blob.Bytes, want)
	}
}

func TestExtractStopsAtSOS(t *testing.T) {
	src := buildSource(nil)
	blob, err := Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if blob.Count != 1 {
		t.Fatalf("blob.Count = %d, want 1 (only the APP1 segment)", blob.Count)
	}
}

func TestExtractDetectsSentinel(t *testing.T) {
	src := buildSource([]byte(Sentinel + " v1"))
	_, err := Extract(src)
	var ap *AlreadyProcessedError
	if !errors.As(err, &ap) {
		t.Fatalf("Extract with sentinel COM: err = %v, want *AlreadyProcessedError", err)
	}
}

func TestSpliceLayout(t *testing.T) {
	src := buildSource([]byte("a comment"))
	blob, err := Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Build a synthetic freshly-encoded stream with its own APP0.
	var encoded []byte
	encoded = append(encoded, 0xFF, 0xD8)
	encoded = append(encoded, marker(0xE0, []byte("newcodecJFIF"))...)
	encoded = append(encoded, 0xFF, 0xDA, 0x00, 0x01, 0x99, 0xFF, 0xD9)

	out, err := Splice(encoded, blob, false)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}

	if !bytes.HasPrefix(out, []byte{0xFF, 0xD8}) {
		t.Fatal("spliced output does not start with SOI")
	}

	// Second segment (right after SOI) must be the new codec's APP0.
	newAPP0 := marker(0xE0, []byte("newcodecJFIF"))
	if !bytes.Equal(out[2:2+len(newAPP0)], newAPP0) {
		t.Errorf("second segment = %x, want new APP0 %x", out[2:2+len(newAPP0)], newAPP0)
	}

	// Third segment must be the sentinel COM.
	comStart := 2 + len(newAPP0)
	comBlob, err := Extract(out)
	if err != nil && !errors.As(err, new(*AlreadyProcessedError)) {
		t.Fatalf("re-extracting spliced output: %v", err)
	}
	if err == nil {
		t.Fatal("re-extracting spliced output: want AlreadyProcessedError (sentinel present), got nil")
	}
	_ = comBlob

	wantCOM := buildComSentinel()
	if !bytes.Equal(out[comStart:comStart+len(wantCOM)], wantCOM) {
		t.Errorf("COM segment at %d = %x, want sentinel %x", comStart, out[comStart:comStart+len(wantCOM)], wantCOM)
	}

	// The preserved APP1/COM blob must appear, byte for byte, right after
	// the sentinel COM.
	blobStart := comStart + len(wantCOM)
	if !bytes.Equal(out[blobStart:blobStart+len(blob.Bytes)], blob.Bytes) {
		t.Errorf("preserved metadata blob not byte-preserved in spliced output")
	}
}

func TestSpliceStrip(t *testing.T) {
	src := buildSource([]byte("a comment"))
	blob, err := Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var encoded []byte
	encoded = append(encoded, 0xFF, 0xD8)
	encoded = append(encoded, marker(0xE0, []byte("x"))...)
	encoded = append(encoded, 0xFF, 0xD9)

	out, err := Splice(encoded, blob, true)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	if bytes.Contains(out, []byte("hello")) {
		t.Error("stripped splice still contains preserved APP1 payload")
	}
}
