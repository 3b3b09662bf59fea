/*
DESCRIPTION
  webp.go implements the WebP codec adapter: encoding via
  github.com/chai2010/webp (a cgo binding to libwebp), and decoding via the
  pure-Go golang.org/x/image/webp package, so candidate verification during
  bisection never needs cgo even when encoding does.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"
	xwebp "golang.org/x/image/webp"
)

// WebPCodec implements Codec for WebP. There is no metadata transplant for
// WebP output; see package metadata, which is JPEG-only.
type WebPCodec struct{}

// Encode compresses a packed RGB buffer to a single-stream lossy WebP
// image at the requested quality.
func (WebPCodec) Encode(pixels []byte, width, height int, params Params) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, encodeErrorf("invalid dimensions %dx%d", width, height)
	}
	img := &image.RGBA{
		Pix:    expandToRGBA(pixels, width, height),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	var buf bytes.Buffer
	opts := &webp.Options{Quality: float32(params.Quality)}
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, encodeErrorf("webp encode failed: %v", err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses a WebP stream using the pure-Go decoder.
func (WebPCodec) Decode(data []byte, requestedComponents int) (DecodeResult, error) {
	img, err := xwebp.Decode(bytes.NewReader(data))
	if err != nil {
		return DecodeResult{}, decodeErrorf("webp decode failed: %v", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if requestedComponents == 1 {
		return DecodeResult{Pixels: toLuma(img, w, h), Width: w, Height: h, Components: 1, SourceColorspace: RGB}, nil
	}
	return DecodeResult{Pixels: toRGB(img, w, h), Width: w, Height: h, Components: 3, SourceColorspace: RGB}, nil
}

// expandToRGBA converts a packed RGB buffer to a packed RGBA buffer with a
// fully opaque alpha channel, the pixel layout chai2010/webp's encoder
// expects for image.RGBA inputs.
func expandToRGBA(rgb []byte, width, height int) []byte {
	n := width * height
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4] = rgb[i*3]
		out[i*4+1] = rgb[i*3+1]
		out[i*4+2] = rgb[i*3+2]
		out[i*4+3] = 0xff
	}
	return out
}
