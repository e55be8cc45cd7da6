package compression

import (
	"io"

	"github.com/dargueta/bilevel"
)

// encodeRow appends the runs of the first `pixels` bits of `row` to `out`.
func encodeRow(out []uint16, row []byte, pixels int) []uint16 {
	grouper := NewBitRunGrouper(row, pixels)
	next := StateA

	for {
		run, err := grouper.GetNextRun()
		if err == io.EOF {
			break
		}
		if run.State != next {
			// Only possible for the first run of a row that starts with a
			// set bit.
			out, next = flushRun(out, 0, next)
		}
		out, next = flushRun(out, run.RunLength, next)
	}
	return terminateRow(out, next)
}

// CompressSubset compresses the next subset of the image from the packed bitmap
// in `src` into `dst`, and returns the number of bytes written to `dst`.
//
// `src` must hold at least one full packed row for every row in the subset.
// `dst` must be large enough for the whole compressed subset; see
// [MaxCompressedSize]. On success the subset cursor is advanced past the
// subset. On failure the cursor is left alone and the contents of `dst` are
// undefined.
func (codec *Codec) CompressSubset(src []byte, dst []byte) (int, error) {
	return codec.process(Compressing, func(sub subset) (int, int, error) {
		needed := sub.Rows * sub.Stride
		if len(src) < needed {
			return 0, 0, bilevel.ErrShortSource.WithMessagef(
				"%d rows of %d bytes need %d bytes, got %d",
				sub.Rows,
				sub.Stride,
				needed,
				len(src),
			)
		}

		var err error
		writer := newWordWriter(dst)
		if codec.OneLine() {
			err = codec.compressRow(writer, src[:needed], needed*8, sub.FirstRow)
		} else {
			for i := 0; i < sub.Rows && err == nil; i++ {
				row := src[i*sub.Stride : (i+1)*sub.Stride]
				err = codec.compressRow(writer, row, sub.Width, sub.FirstRow+i)
			}
		}
		if err != nil {
			return 0, 0, err
		}
		return writer.Bytes(), writer.Words(), nil
	})
}

// compressRow encodes one logical row and writes it, along with its header if
// enabled. `imageRow` is the 0-based row number of the row in the image.
func (codec *Codec) compressRow(
	writer *wordWriter, row []byte, pixels int, imageRow int,
) error {
	err := codec.recordRow(imageRow, writer.Words())
	if err != nil {
		return err
	}

	codec.scratch = encodeRow(codec.scratch[:0], row, pixels)
	lineNumber := 0
	if codec.LineHeaders() {
		lineNumber = imageRow + 1
	}
	return writer.writeRow(codec.scratch, lineNumber)
}
