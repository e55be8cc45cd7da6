package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dargueta/bilevel"
)

// subsetBounds returns the size of the raster's next subset and the first and
// last rows in it.
func subsetBounds(raster *bilevel.Raster) (rows int, first int, last int) {
	first = raster.SubsetRow()
	rows = raster.SubsetHeight()
	return rows, first, first + rows - 1
}

// CompressImage reads a packed bitmap the size of `raster` from `input` and
// writes the compressed image to `output`, one subset at a time. The raster is
// rewound first.
//
// The returned int64 gives the number of bytes written to the output stream. If
// [bilevel.LineIndexing] is set, the returned index holds the offset of every
// row; otherwise it's nil. If an error occurred, neither value is meaningful.
func CompressImage(
	input io.Reader, output io.Writer, raster *bilevel.Raster, options bilevel.Options,
) (int64, *LineIndex, error) {
	raster.Rewind()
	codec := NewCodec(raster, options)
	stride := raster.Stride()

	maxRows := raster.SubsetHeight()
	pixels, logicalRows := raster.SubsetWidth(), maxRows
	if options.Has(bilevel.OneLine) {
		pixels, logicalRows = maxRows*stride*8, 1
	}
	source := make([]byte, maxRows*stride)
	compressed := make([]byte, MaxCompressedSize(pixels, logicalRows, options.Has(bilevel.LineHeaders)))

	totalBytesWritten := int64(0)
	for !raster.Done() {
		rows, first, last := subsetBounds(raster)
		src := source[:rows*stride]
		_, err := io.ReadFull(input, src)
		if err != nil {
			return totalBytesWritten, nil, fmt.Errorf("reading rows %d-%d: %w", first, last, err)
		}

		n, err := codec.CompressSubset(src, compressed)
		if err != nil {
			return totalBytesWritten, nil, err
		}

		written, err := output.Write(compressed[:n])
		totalBytesWritten += int64(written)
		if err != nil {
			return totalBytesWritten, nil, fmt.Errorf("failed to write to output: %w", err)
		}
	}
	return totalBytesWritten, codec.LineIndex(), nil
}

// DecompressImage reads a compressed image from `input` and writes the packed
// bitmap to `output`, one subset at a time. The raster is rewound first.
//
// The returned int64 gives the number of bytes written to the output (i.e. the
// size of the packed image). If an error occurred, the value is undefined and
// should not be used.
func DecompressImage(
	input io.Reader, output io.Writer, raster *bilevel.Raster, options bilevel.Options,
) (int64, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return 0, fmt.Errorf("error reading input: %w", err)
	}

	raster.Rewind()
	codec := NewCodec(raster, options)
	stride := raster.Stride()
	bitmap := make([]byte, raster.SubsetHeight()*stride)

	position := 0
	totalBytesWritten := int64(0)
	for !raster.Done() {
		rows, _, _ := subsetBounds(raster)
		dst := bitmap[:rows*stride]
		n, err := codec.DecompressSubset(data[position:], dst)
		if err != nil {
			return totalBytesWritten, err
		}
		position += n

		written, err := output.Write(dst)
		totalBytesWritten += int64(written)
		if err != nil {
			return totalBytesWritten, fmt.Errorf("failed to write to output: %w", err)
		}
	}
	return totalBytesWritten, nil
}

// DecompressImageToBytes is like [DecompressImage] but returns the packed
// bitmap in a new byte slice.
func DecompressImageToBytes(
	input io.Reader, raster *bilevel.Raster, options bilevel.Options,
) ([]byte, error) {
	buffer := bytes.Buffer{}
	buffer.Grow(raster.Size())
	_, err := DecompressImage(input, &buffer, raster, options)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// ReframeImage converts a compressed image from one stream framing to another,
// e.g. to add or strip line headers, without rendering it. Rows are copied
// through a [Packet] one subset at a time. One-line mode isn't supported on
// either side.
//
// The returned int64 gives the number of bytes written to the output stream.
func ReframeImage(
	input io.Reader,
	output io.Writer,
	raster *bilevel.Raster,
	from bilevel.Options,
	to bilevel.Options,
) (int64, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return 0, fmt.Errorf("error reading input: %w", err)
	}

	// The decoder and the encoder each need a cursor of their own.
	raster.Rewind()
	inRaster := *raster
	outRaster := *raster
	decoder := NewCodec(&inRaster, from)
	encoder := NewCodec(&outRaster, to)

	packet := NewPacket(raster.SubsetWidth(), inRaster.SubsetHeight())
	compressed := make(
		[]byte,
		MaxCompressedSize(raster.SubsetWidth(), inRaster.SubsetHeight(), to.Has(bilevel.LineHeaders)),
	)

	position := 0
	totalBytesWritten := int64(0)
	for !inRaster.Done() {
		n, err := decoder.DecompressSubsetToRLE(data[position:], packet)
		if err != nil {
			return totalBytesWritten, err
		}
		position += n

		n, err = encoder.CompressSubsetFromRLE(packet, compressed)
		if err != nil {
			return totalBytesWritten, err
		}

		written, err := output.Write(compressed[:n])
		totalBytesWritten += int64(written)
		if err != nil {
			return totalBytesWritten, fmt.Errorf("failed to write to output: %w", err)
		}
	}
	return totalBytesWritten, nil
}
