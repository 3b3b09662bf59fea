/*
DESCRIPTION
  jpeg.go declares the shared JPEGCodec type and its EncodeError, common to
  both the cgo-backed encoder (jpeg_encode.go) and the cgo-disabled stub
  (jpeg_encode_nocgo.go).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import "fmt"

// JPEGCodec implements Codec for JPEG, encoding via a direct cgo binding to
// libjpeg and decoding via the standard library's image/jpeg (see
// jpeg_decode.go).
type JPEGCodec struct{}

// EncodeError is returned when the underlying encoder rejects the
// requested parameters or fails mid-encode.
type EncodeError struct{ msg string }

func (e *EncodeError) Error() string { return "codec: encode error: " + e.msg }

func encodeErrorf(format string, args ...interface{}) error {
	return &EncodeError{msg: fmt.Sprintf(format, args...)}
}
