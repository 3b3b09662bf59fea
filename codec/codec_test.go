/*
DESCRIPTION
  codec_test.go provides testing for format sniffing and PPM decoding.

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
	"testing"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, JPEG},
		{"ppm", []byte("P6\n4 2\n255\n"), PPM},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBPVP8 ")...), WebP},
		{"unknown", []byte{0x00, 0x01, 0x02}, Unknown},
		{"empty", nil, Unknown},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Sniff(test.data); got != test.want {
				t.Errorf("Sniff(%q) = %v, want %v", test.data, got, test.want)
			}
		})
	}
}

func TestDecodePPMRoundTrip(t *testing.T) {
	// 4x2 P6 image, 24 bytes of raster data: 00 00 00 .. FF FF FF.
	var raster []byte
	for i := 0; i < 8; i++ {
		v := byte(i * 255 / 7)
		raster = append(raster, v, v, v)
	}
	var buf bytes.Buffer
	buf.WriteString("P6\n4 2\n255\n")
	buf.Write(raster)

	got, err := DecodePPM(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePPM: %v", err)
	}
	if got.Width != 4 || got.Height != 2 {
		t.Fatalf("dimensions = %dx%d, want 4x2", got.Width, got.Height)
	}
	if got.Width*got.Height*3 != len(raster) {
		t.Errorf("decode(p).width*height*3 = %d, want len(raster) = %d", got.Width*got.Height*3, len(raster))
	}
	if !bytes.Equal(got.Pixels, raster) {
		t.Errorf("decoded pixels do not match source raster byte-for-byte")
	}
}

func TestDecodePPMRejectsBadDepth(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("P6\n1 1\n65535\n")
	buf.Write([]byte{0, 0, 0, 0, 0, 0})
	_, err := DecodePPM(buf.Bytes())
	if err == nil {
		t.Fatal("DecodePPM with maxval 65535: want error, got nil")
	}
}

func TestDecodePPMRejectsBadMagic(t *testing.T) {
	_, err := DecodePPM([]byte("P5\n1 1\n255\n\x00"))
	if err == nil {
		t.Fatal("DecodePPM with P5 magic: want error, got nil")
	}
}

func TestForUnknownFormat(t *testing.T) {
	if _, err := For(PPM); err == nil {
		t.Error("For(PPM): want error (decode-only), got nil")
	}
	if _, err := For(Unknown); err == nil {
		t.Error("For(Unknown): want error, got nil")
	}
}
