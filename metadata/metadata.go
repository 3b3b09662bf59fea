/*
DESCRIPTION
  metadata.go implements the JPEG metadata transplanter: scanning the
  source JPEG's markers up to SOS, collecting its APPn/COM segments, and
  splicing them back into a freshly-encoded JPEG behind a sentinel COM
  marker that flags the output as already processed.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package metadata extracts and transplants JPEG APPn/COM marker segments
// between a source and a freshly-encoded JPEG stream, and recognises the
// sentinel comment marking output already processed by this toolkit.
package metadata

import (
	"encoding/binary"
	"fmt"
)

// Sentinel is the ASCII string written as the payload prefix of the COM
// segment identifying output already produced by this toolkit. Any input
// with a COM segment (before SOS) whose payload begins with this string is
// treated as already-processed.
const Sentinel = "Compressed by jpeg-recompress"

// maxSegments is the maximum number of APPn/COM segments retained from the
// source stream.
const maxSegments = 20

const (
	markerPrefix = 0xFF
	codeSOI      = 0xD8
	codeEOI      = 0xD9
	codeSOS      = 0xDA
	codeDRI      = 0xDD
	codeAPP0     = 0xE0
	codeAPPlast  = 0xEF
	codeCOM      = 0xFE
	codeRST0     = 0xD0
	codeRST7     = 0xD7
)

// segment is an (offset, length) pair referring into the source byte
// stream, length covering the full marker including its 2-byte prefix.
type segment struct {
	offset, length int
}

// ScanError is returned when a JPEG marker stream is malformed or
// truncated before an SOS marker is reached.
type ScanError struct{ msg string }

func (e *ScanError) Error() string { return "metadata: " + e.msg }

// AlreadyProcessedError is returned by Extract when the source contains a
// COM segment whose payload begins with Sentinel.
type AlreadyProcessedError struct{}

func (e *AlreadyProcessedError) Error() string {
	return "metadata: source already contains the sentinel comment"
}

// Blob holds the concatenated raw bytes of every retained APPn/COM segment,
// in source order.
type Blob struct {
	Bytes []byte
	Count int
}

// Extract scans src from offset 0 until SOS, accumulating (in source
// order) the raw bytes of up to 20 APPn and COM marker segments. It
// returns an *AlreadyProcessedError if any COM segment's payload begins
// with Sentinel.
func Extract(src []byte) (Blob, error) {
	if len(src) < 2 || src[0] != markerPrefix || src[1] != codeSOI {
		return Blob{}, &ScanError{msg: "source does not start with SOI"}
	}

	var blob Blob
	off := 2
	for {
		if off+1 >= len(src) {
			return Blob{}, &ScanError{msg: "truncated marker stream before SOS"}
		}
		if src[off] != markerPrefix {
			return Blob{}, &ScanError{msg: fmt.Sprintf("expected marker prefix at offset %d", off)}
		}
		code := src[off+1]

		switch {
		case code == codeSOS:
			return blob, nil

		case code == codeDRI:
			seg := segment{off, 4}
			off += seg.length

		case code >= codeRST0 && code <= codeRST7 || code == codeSOI || code == codeEOI:
			off += 2

		case code >= 0xE1 && code <= codeAPPlast || code == codeCOM:
			if off+3 >= len(src) {
				return Blob{}, &ScanError{msg: "truncated segment length"}
			}
			size := int(binary.BigEndian.Uint16(src[off+2 : off+4]))
			segLen := 2 + size
			if off+segLen > len(src) {
				return Blob{}, &ScanError{msg: "segment runs past end of stream"}
			}

			if code == codeCOM {
				payload := src[off+4 : off+segLen]
				if len(payload) >= len(Sentinel) && string(payload[:len(Sentinel)]) == Sentinel {
					return Blob{}, &AlreadyProcessedError{}
				}
			}

			if blob.Count < maxSegments {
				blob.Bytes = append(blob.Bytes, src[off:off+segLen]...)
				blob.Count++
			}
			off += segLen

		default:
			if off+3 >= len(src) {
				return Blob{}, &ScanError{msg: "truncated segment length"}
			}
			size := int(binary.BigEndian.Uint16(src[off+2 : off+4]))
			off += 2 + size
		}
	}
}

// findAPP0 scans a freshly-encoded JPEG stream for the first marker
// immediately after SOI that is APP0 or APPE (EE, some encoders' colour
// profile marker placed first), returning its (offset, length).
func findAPP0(data []byte) (segment, error) {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != codeSOI {
		return segment{}, &ScanError{msg: "encoded stream does not start with SOI"}
	}
	off := 2
	if off+3 >= len(data) {
		return segment{}, &ScanError{msg: "truncated stream after SOI"}
	}
	if data[off] != markerPrefix {
		return segment{}, &ScanError{msg: "expected marker after SOI"}
	}
	code := data[off+1]
	if code != codeAPP0 && code != 0xEE {
		return segment{}, &ScanError{msg: "no APP0/APPE marker immediately after SOI"}
	}
	size := int(binary.BigEndian.Uint16(data[off+2 : off+4]))
	return segment{off, 2 + size}, nil
}

// Splice rebuilds a JPEG stream as:
//
//	SOI, encoded's own APP0, a COM segment carrying Sentinel, blob (unless
//	strip), then the remainder of encoded past its own APP0.
//
// encoded is the freshly-produced compressed stream; blob is the metadata
// to transplant (from a prior Extract call on the source image).
func Splice(encoded []byte, blob Blob, strip bool) ([]byte, error) {
	app0, err := findAPP0(encoded)
	if err != nil {
		return nil, err
	}

	com := buildComSentinel()

	out := make([]byte, 0, len(encoded)+len(com)+len(blob.Bytes)+16)
	out = append(out, markerPrefix, codeSOI)
	out = append(out, encoded[app0.offset:app0.offset+app0.length]...)
	out = append(out, com...)
	if !strip {
		out = append(out, blob.Bytes...)
	}
	out = append(out, encoded[app0.offset+app0.length:]...)
	return out, nil
}

// buildComSentinel returns a COM marker segment (FF FE, 2-byte big-endian
// length covering itself and the payload, then Sentinel) identifying
// output produced by this toolkit.
func buildComSentinel() []byte {
	length := len(Sentinel) + 2
	out := make([]byte, 0, 2+length)
	out = append(out, markerPrefix, codeCOM)
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(length))
	out = append(out, lenBytes[:]...)
	out = append(out, Sentinel...)
	return out
}
