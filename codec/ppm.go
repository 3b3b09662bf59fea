/*
DESCRIPTION
  ppm.go decodes PPM P6 depth-255 images into packed RGB pixel buffers. PPM
  is decode-only: the toolkit never writes PPM output.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// DecodeError is returned by DecodePPM for a malformed or unsupported
// stream (wrong magic, non-255 depth, or truncated data).
type DecodeError struct{ msg string }

func (e *DecodeError) Error() string { return "codec: decode error: " + e.msg }

func decodeErrorf(format string, args ...interface{}) error {
	return &DecodeError{msg: fmt.Sprintf(format, args...)}
}

// DecodePPM decodes a P6 depth-255 PPM stream into a packed RGB buffer.
// Any other magic or a maxval other than 255 is rejected with a
// *DecodeError.
func DecodePPM(data []byte) (DecodeResult, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	magic, err := readToken(r)
	if err != nil {
		return DecodeResult{}, decodeErrorf("reading magic: %v", err)
	}
	if magic != "P6" {
		return DecodeResult{}, decodeErrorf("not a P6 PPM stream (magic %q)", magic)
	}

	width, err := readIntToken(r)
	if err != nil {
		return DecodeResult{}, decodeErrorf("reading width: %v", err)
	}
	height, err := readIntToken(r)
	if err != nil {
		return DecodeResult{}, decodeErrorf("reading height: %v", err)
	}
	maxval, err := readIntToken(r)
	if err != nil {
		return DecodeResult{}, decodeErrorf("reading maxval: %v", err)
	}
	if maxval != 255 {
		return DecodeResult{}, decodeErrorf("unsupported PPM depth %d, only 255 is accepted", maxval)
	}
	if width <= 0 || height <= 0 {
		return DecodeResult{}, decodeErrorf("invalid dimensions %dx%d", width, height)
	}

	n := width * height * 3
	pix := make([]byte, n)
	if _, err := io.ReadFull(r, pix); err != nil {
		return DecodeResult{}, decodeErrorf("reading pixel data: %v", err)
	}

	return DecodeResult{
		Pixels:           pix,
		Width:            width,
		Height:           height,
		Components:       3,
		SourceColorspace: RGB,
	}, nil
}

// readToken reads whitespace-delimited tokens, skipping '#' comment lines,
// per the PPM header grammar. The single whitespace byte separating the
// header from the raster is consumed by the final readIntToken call.
func readToken(r *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '#' {
			for {
				c, err := r.ReadByte()
				if err != nil {
					return "", err
				}
				if c == '\n' {
					break
				}
			}
			continue
		}
		if isSpace(b) {
			if len(tok) > 0 {
				return string(tok), nil
			}
			continue
		}
		tok = append(tok, b)
	}
}

func readIntToken(r *bufio.Reader) (int, error) {
	tok, err := readToken(r)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(tok)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
