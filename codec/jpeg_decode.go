/*
DESCRIPTION
  jpeg_decode.go decodes JPEG streams using the standard library's
  image/jpeg, the same package ausocean-av's motion filter already uses to
  decode MJPEG frames. Grayscale requests extract the luma plane directly
  from the decoded YCbCr image rather than performing a full RGB round
  trip.

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
	"image/jpeg"
)

// Decode decompresses a JPEG stream, producing either a packed RGB buffer
// (requestedComponents == 3) or a tightly-packed luma plane
// (requestedComponents == 1). Decoding a colour source as grayscale is
// permitted, per the specification's decoder contract.
func (JPEGCodec) Decode(data []byte, requestedComponents int) (DecodeResult, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return DecodeResult{}, decodeErrorf("jpeg decode failed: %v", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	srcColorspace := RGB
	if _, ok := img.(*image.Gray); ok {
		srcColorspace = Grayscale
	}

	if requestedComponents == 1 {
		return DecodeResult{
			Pixels:           toLuma(img, w, h),
			Width:            w,
			Height:           h,
			Components:       1,
			SourceColorspace: srcColorspace,
		}, nil
	}

	return DecodeResult{
		Pixels:           toRGB(img, w, h),
		Width:            w,
		Height:           h,
		Components:       3,
		SourceColorspace: srcColorspace,
	}, nil
}

// toLuma extracts a tightly-packed luma-only plane from img. For
// *image.YCbCr, the Y plane is read out directly; otherwise each pixel's
// RGB is converted with the standard BT.601 coefficients in integer
// arithmetic, rounded to nearest.
func toLuma(img image.Image, w, h int) []byte {
	if yc, ok := img.(*image.YCbCr); ok {
		out := make([]byte, w*h)
		b := yc.Bounds()
		for y := 0; y < h; y++ {
			srcOff := yc.YOffset(b.Min.X, b.Min.Y+y)
			copy(out[y*w:(y+1)*w], yc.Y[srcOff:srcOff+w])
		}
		return out
	}
	if g, ok := img.(*image.Gray); ok {
		out := make([]byte, w*h)
		b := g.Bounds()
		for y := 0; y < h; y++ {
			srcOff := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out[y*w:(y+1)*w], g.Pix[srcOff:srcOff+w])
		}
		return out
	}

	out := make([]byte, w*h)
	b := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			yy := (299*int(r>>8) + 587*int(g>>8) + 114*int(bl>>8) + 500) / 1000
			out[y*w+x] = byte(yy)
		}
	}
	return out
}

// toRGB converts img to a tightly-packed RGB buffer.
func toRGB(img image.Image, w, h int) []byte {
	out := make([]byte, w*h*3)
	b := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*w + x) * 3
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
		}
	}
	return out
}
