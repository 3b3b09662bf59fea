/*
DESCRIPTION
  jpeg_encode.go binds libjpeg directly via cgo to get full control over
  the encoder knobs the specification requires: quality, colorspace,
  progressive scan selection, Huffman-table optimisation, and chroma
  subsampling. The standard library's image/jpeg encoder exposes only
  quality, so recompression's no-further-gain tie-breaks (which hinge on
  exactly these knobs) aren't reachable through it.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

//go:build cgo

package codec

/*
#cgo LDFLAGS: -ljpeg
#include <stdio.h>
#include <stdlib.h>
#include <jpeglib.h>
#include <jerror.h>

typedef struct {
	unsigned char *buf;
	unsigned long buf_size;
} mem_helper;

static mem_helper *alloc_mem_helper() {
	return calloc(1, sizeof(mem_helper));
}

extern void recompress_error_exit(j_common_ptr cinfo);

static void call_format_message(j_common_ptr cinfo, char *buf) {
	(*cinfo->err->format_message)(cinfo, buf);
}
*/
import "C"

import (
	"unsafe"
)

// Encode compresses a packed RGB buffer to a JPEG byte stream honouring
// quality, colorspace, progressive scan selection, optimize_coding and
// subsampling exactly as the libjpeg C API exposes them.
func (JPEGCodec) Encode(pixels []byte, width, height int, params Params) (out []byte, err error) {
	if width <= 0 || height <= 0 {
		return nil, encodeErrorf("invalid dimensions %dx%d", width, height)
	}
	if params.Quality < 1 || params.Quality > 100 {
		return nil, encodeErrorf("quality %d out of range [1,100]", params.Quality)
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = encodeErrorf("libjpeg panic: %v", r)
			}
		}
	}()

	cinfoSize := C.size_t(unsafe.Sizeof(C.struct_jpeg_compress_struct{}))
	cinfo := (*C.struct_jpeg_compress_struct)(C.malloc(cinfoSize))
	defer C.free(unsafe.Pointer(cinfo))

	errSize := C.size_t(unsafe.Sizeof(C.struct_jpeg_error_mgr{}))
	cinfo.err = (*C.struct_jpeg_error_mgr)(C.malloc(errSize))
	defer C.free(unsafe.Pointer(cinfo.err))

	C.jpeg_std_error(cinfo.err)
	cinfo.err.error_exit = (*[0]byte)(C.recompress_error_exit)

	mem := C.alloc_mem_helper()
	defer C.free(unsafe.Pointer(mem))

	C.jpeg_CreateCompress(cinfo, C.JPEG_LIB_VERSION, cinfoSize)
	defer C.jpeg_destroy_compress(cinfo)
	C.jpeg_mem_dest(cinfo, &mem.buf, &mem.buf_size)

	cinfo.image_width = C.JDIMENSION(width)
	cinfo.image_height = C.JDIMENSION(height)

	// The input is always packed RGB; libjpeg converts it to the requested
	// output colorspace.
	const inComponents = 3
	cinfo.input_components = inComponents
	cinfo.in_color_space = C.JCS_RGB

	C.jpeg_set_defaults(cinfo)
	C.jpeg_set_quality(cinfo, C.int(params.Quality), C.TRUE)

	if params.Colorspace == Grayscale {
		C.jpeg_set_colorspace(cinfo, C.JCS_GRAYSCALE)
	} else {
		C.jpeg_set_colorspace(cinfo, C.JCS_YCbCr)
	}

	if params.Subsampling == SubsampleDisabled && cinfo.num_components > 0 {
		compPtr := (*[16]C.jpeg_component_info)(unsafe.Pointer(cinfo.comp_info))
		for i := 0; i < int(cinfo.num_components); i++ {
			compPtr[i].h_samp_factor = 1
			compPtr[i].v_samp_factor = 1
		}
	}

	if params.OptimizeCoding {
		cinfo.optimize_coding = C.TRUE
	}

	if params.Progressive {
		C.jpeg_simple_progression(cinfo)
	}

	C.jpeg_start_compress(cinfo, C.TRUE)

	rowStride := width * int(inComponents)
	rowC := C.malloc(C.size_t(rowStride))
	defer C.free(rowC)
	rowBuf := unsafe.Slice((*byte)(rowC), rowStride)
	for cinfo.next_scanline < cinfo.image_height {
		y := int(cinfo.next_scanline)
		copy(rowBuf, pixels[y*rowStride:(y+1)*rowStride])
		rowPtr := (*C.JSAMPLE)(rowC)
		rowArray := [1]*C.JSAMPLE{rowPtr}
		C.jpeg_write_scanlines(cinfo, (*C.JSAMPROW)(unsafe.Pointer(&rowArray[0])), 1)
	}

	C.jpeg_finish_compress(cinfo)

	out = C.GoBytes(unsafe.Pointer(mem.buf), C.int(mem.buf_size))
	C.free(unsafe.Pointer(mem.buf))
	return out, nil
}

// recompress_error_exit is installed as libjpeg's error_exit callback; it
// is invoked by libjpeg from within the cgo calls above and converts a
// libjpeg fatal error into a Go panic, caught by the recover() in Encode.
// libjpeg never returns from error_exit, so panicking (rather than
// returning) is required to unwind out of the C call stack safely.
//
//export recompress_error_exit
func recompress_error_exit(cinfo *C.struct_jpeg_common_struct) {
	var buf [C.JMSG_LENGTH_MAX]C.char
	if cinfo != nil && cinfo.err != nil {
		C.call_format_message(cinfo, &buf[0])
	}
	panic(encodeErrorf("libjpeg: %s", C.GoString(&buf[0])))
}
