/*
DESCRIPTION
  jpeg_encode_nocgo.go is the JPEG encoder stub used when cgo is disabled
  (cross-compiling, CGO_ENABLED=0). libjpeg's progressive/optimize/
  subsampling controls have no pure-Go equivalent, so this path fails
  loudly rather than silently ignoring the requested parameters.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

//go:build !cgo

package codec

// Encode always fails: JPEG encoding requires the cgo-backed libjpeg
// binding in jpeg_encode.go.
func (JPEGCodec) Encode(pixels []byte, width, height int, params Params) ([]byte, error) {
	return nil, encodeErrorf("JPEG encoding requires cgo (build with CGO_ENABLED=1)")
}
