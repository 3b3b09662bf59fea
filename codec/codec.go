/*
DESCRIPTION
  codec.go defines the codec capability interface implemented by the JPEG
  and WebP adapters (PPM is decode-only, see ppm.go): encode(pixels,
  params) -> bytes, decode(bytes, format) -> pixels, and format sniffing by
  magic bytes.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codec provides encode/decode adapters over the JPEG and WebP
// codec libraries, PPM reading, and magic-byte format sniffing.
package codec

import (
	"bytes"
	"fmt"
)

// Format identifies an image container format.
type Format int

const (
	Unknown Format = iota
	JPEG
	PPM
	WebP
)

func (f Format) String() string {
	switch f {
	case JPEG:
		return "JPEG"
	case PPM:
		return "PPM"
	case WebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Colorspace is an encode-time pixel colorspace selection.
type Colorspace int

const (
	RGB Colorspace = iota
	YCbCr
	Grayscale
)

// Subsampling is the encode-time chroma subsampling mode.
type Subsampling int

const (
	// SubsampleDefault leaves the codec's own default, 4:2:0 for JPEG.
	SubsampleDefault Subsampling = iota
	// SubsampleDisabled forces 4:4:4 (all component sampling factors 1x1).
	SubsampleDisabled
)

// Params are the encode-time codec parameters.
type Params struct {
	Format         Format
	Quality        int // 1..100 inclusive where applicable.
	Colorspace     Colorspace
	Progressive    bool
	OptimizeCoding bool
	Subsampling    Subsampling
}

// DecodeResult is the output of a Decode call.
type DecodeResult struct {
	Pixels           []byte
	Width, Height    int
	Components       int // 1 for luma-only, 3 for RGB.
	SourceColorspace Colorspace
}

// Codec is the capability interface implemented by the JPEG and WebP
// adapters. PPM is decode-only and does not implement this interface; see
// DecodePPM.
type Codec interface {
	// Encode compresses a packed RGB pixel buffer of the given dimensions
	// using params, returning the compressed byte stream.
	Encode(pixels []byte, width, height int, params Params) ([]byte, error)

	// Decode decompresses data, requesting pixels with requestedComponents
	// components (1 for grayscale, 3 for RGB).
	Decode(data []byte, requestedComponents int) (DecodeResult, error)
}

// magic byte prefixes used by Sniff.
var (
	jpegMagic = []byte{0xFF, 0xD8}
	ppmMagic  = []byte("P6")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// Sniff identifies the format of data by inspecting its leading magic
// bytes: FF D8 for JPEG, "P6" for PPM, and a RIFF/WEBP container for WebP.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 2 && bytes.Equal(data[:2], jpegMagic):
		return JPEG
	case len(data) >= 2 && bytes.Equal(data[:2], ppmMagic):
		return PPM
	case len(data) >= 12 && bytes.Equal(data[:4], riffMagic) && bytes.Equal(data[8:12], webpMagic):
		return WebP
	default:
		return Unknown
	}
}

// errorf builds a plain error prefixed with the package name, for failures
// that are neither a *DecodeError nor an *EncodeError.
func errorf(format string, args ...interface{}) error {
	return fmt.Errorf("codec: "+format, args...)
}

// For implements the Codec interface lookup used by the bisection driver:
// JPEG and WebP are handled by the codecs below; any other format is an
// error.
func For(f Format) (Codec, error) {
	switch f {
	case JPEG:
		return JPEGCodec{}, nil
	case WebP:
		return WebPCodec{}, nil
	default:
		return nil, errorf("no codec registered for format %s", f)
	}
}
