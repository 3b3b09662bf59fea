/*
DESCRIPTION
  pixel.go provides the low-level sample primitives shared by the codec
  adapters and metric library: clamping, bilinear sampling, BT.601 RGB to
  luma conversion, nearest-neighbour downscaling, and the perceptual hash
  used by the "fast" comparison method.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pixel provides sample-level primitives (clamping, bilinear
// sampling, luma conversion, downscaling and perceptual hashing) operating
// directly on packed, row-major 8-bit image buffers.
package pixel

import "math"

// Buffer is an owned, contiguous, row-major, top-down, unpadded image of
// unsigned 8-bit samples. Stride is always Width*Components, so
// len(Pix) == Width*Height*Components.
type Buffer struct {
	Pix        []byte
	Width      int
	Height     int
	Components int // 1 (luma/gray) or 3 (RGB).
}

// NewBuffer allocates a zeroed Buffer of the given dimensions.
func NewBuffer(width, height, components int) *Buffer {
	return &Buffer{
		Pix:        make([]byte, width*height*components),
		Width:      width,
		Height:     height,
		Components: components,
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(lo, v, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bilinear samples channel ch of img at fractional coordinates (x, y) using
// bilinear interpolation between the four surrounding integer samples.
// Callers must ensure 0 <= x <= width-1 and 0 <= y <= height-1.
func Bilinear(img []byte, width, comps int, x, y float64, ch int) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := int(math.Ceil(x))
	y1 := int(math.Ceil(y))

	px := x - float64(x0)
	py := y - float64(y0)

	at := func(xi, yi int) float64 {
		return float64(img[(yi*width+xi)*comps+ch])
	}

	v00 := at(x0, y0)
	v10 := at(x1, y0)
	v01 := at(x0, y1)
	v11 := at(x1, y1)

	top := v00 + (v10-v00)*px
	bot := v01 + (v11-v01)*px
	return top + (bot-top)*py
}

// RGBToY converts a packed RGB buffer into a tightly-packed luma-only
// buffer using ITU-R BT.601 coefficients with positive-bias rounding:
// Y = round(0.299R + 0.587G + 0.114B).
func RGBToY(rgb []byte, width, height int) []byte {
	y := make([]byte, width*height)
	for i := 0; i < width*height; i++ {
		r := float64(rgb[i*3])
		g := float64(rgb[i*3+1])
		b := float64(rgb[i*3+2])
		v := 0.299*r + 0.587*g + 0.114*b + 0.5
		y[i] = byte(Clamp(0, math.Trunc(v), 255))
	}
	return y
}

// Downscale nearest-neighbour resamples a single-component src buffer of
// size width x height into a newW x newH buffer, using a positive-bias
// centre sample: srcX = floor(x*width/newW + 0.5).
func Downscale(src []byte, width, height, newW, newH int) []byte {
	dst := make([]byte, newW*newH)
	for y := 0; y < newH; y++ {
		sy := int(math.Floor(float64(y)*float64(height)/float64(newH) + 0.5))
		if sy >= height {
			sy = height - 1
		}
		for x := 0; x < newW; x++ {
			sx := int(math.Floor(float64(x)*float64(width)/float64(newW) + 0.5))
			if sx >= width {
				sx = width - 1
			}
			dst[y*newW+x] = src[sy*width+sx]
		}
	}
	return dst
}

// HashSide is the side length, in pixels, of the thumbnail used to build a
// perceptual hash: HashSide*HashSide bits are produced.
const HashSide = 8

// Hash computes a perceptual hash from a grayscale thumbnail of side
// HashSide: bit i is set when thumbnail[i] < thumbnail[i+1] in linear scan
// order.
//
// The reference implementation reads one byte past the last column of each
// row (image[pos+1] when pos is the final index of the buffer), comparing
// the last pixel of one row against the first pixel of the next. This is an
// intentional compatibility quirk, not a bug: existing stored hashes were
// generated this way, and "fixing" it would silently change hash values for
// identical input. Callers of Hash must pass a thumbnail buffer with one
// spare trailing byte (len(thumb) == side*side+1) so the final read stays
// in-bounds while remaining semantically identical to the historical
// off-by-one.
func Hash(thumb []byte, side int) []bool {
	n := side * side
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = thumb[i] < thumb[i+1]
	}
	return bits
}

// GenHash downscales a grayscale image to an (HashSide x HashSide) thumbnail
// and returns its perceptual hash, reserving the extra trailing byte Hash
// requires to preserve the historical last-bit read.
func GenHash(gray []byte, width, height int) []bool {
	small := Downscale(gray, width, height, HashSide, HashSide)
	thumb := make([]byte, HashSide*HashSide+1)
	copy(thumb, small)
	return Hash(thumb, HashSide)
}

// Hamming returns the number of differing bits between two equal-length
// hashes.
func Hamming(a, b []bool) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
