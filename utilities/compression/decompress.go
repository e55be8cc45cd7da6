package compression

import (
	"errors"
	"fmt"

	"github.com/dargueta/bilevel"
)

// setBits sets `length` bits of `row` starting at bit `start`.
func setBits(row []byte, start, length int) {
	end := start + length
	for ; start < end && start&7 != 0; start++ {
		row[start>>3] |= 0x80 >> uint(start&7)
	}
	for ; start+8 <= end; start += 8 {
		row[start>>3] = 0xff
	}
	for ; start < end; start++ {
		row[start>>3] |= 0x80 >> uint(start&7)
	}
}

// renderInto returns a visitor that draws StateB runs into `row`, which must
// already be cleared. It returns nil if `row` is nil.
func renderInto(row []byte) runVisitor {
	if row == nil {
		return nil
	}
	return func(state State, start, length int) {
		if state == StateB {
			setBits(row, start, length)
		}
	}
}

// DecompressSubset decodes the next subset of the image from the run stream in
// `src` into the packed bitmap `dst`, and returns the number of bytes of `src`
// consumed. `src` may hold more than the subset; decoding stops after the
// subset's last row.
//
// `dst` must hold `((width + padding) / 8) * rows` bytes. Padding bits are
// cleared. If `dst` is empty the rows are walked but not drawn; if `src` is
// empty as well, the subset is skipped entirely and only the cursor moves.
//
// A run that declares more pixels than remain in its row is cut short, and the
// row ends there. If line headers are enabled the header's word count is used
// to find the next row, so any words left over from such a row are skipped.
// Without headers they're read as the start of the next row.
func (codec *Codec) DecompressSubset(src []byte, dst []byte) (int, error) {
	return codec.process(Decompressing, func(sub subset) (int, int, error) {
		needed := sub.Rows * sub.Stride
		render := len(dst) > 0
		if render && len(dst) < needed {
			return 0, 0, bilevel.ErrBufferTooSmall.WithMessagef(
				"%d rows of %d bytes need %d bytes, got %d",
				sub.Rows,
				sub.Stride,
				needed,
				len(dst),
			)
		}
		if !render && len(src) == 0 {
			return 0, 0, nil
		}

		words := wordSlice(src)
		if codec.OneLine() {
			var out []byte
			if render {
				out = dst[:needed]
				clear(out)
			}
			position, err := codec.decompressRow(words, 0, out, needed*8, sub.FirstRow)
			if err != nil {
				return 0, 0, err
			}
			return position * 2, position, nil
		}

		position := 0
		for i := 0; i < sub.Rows; i++ {
			var out []byte
			if render {
				out = dst[i*sub.Stride : (i+1)*sub.Stride]
				clear(out)
			}

			n, err := codec.decompressRow(words, position, out, sub.Width, sub.FirstRow+i)
			if err != nil {
				return 0, 0, err
			}
			position += n
		}
		return position * 2, position, nil
	})
}

// decompressRow decodes the row starting `position` words into `words` and
// returns the number of words it occupies. `row` may be nil to skip drawing.
func (codec *Codec) decompressRow(
	words wordSlice, position int, row []byte, width int, imageRow int,
) (int, error) {
	err := codec.recordRow(imageRow, position)
	if err != nil {
		return 0, err
	}

	runs := words.Slice(position, words.Len())
	header := lineHeader{}
	if codec.LineHeaders() {
		header, runs, err = readLineHeader(runs)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", imageRow, err)
		}
		if expected := (imageRow + 1) & 0xffff; header.LineNumber != expected {
			Logger().Debug(
				"line header numbers the wrong row",
				"expected", expected,
				"got", header.LineNumber,
			)
		}
	}

	walk, err := walkRow(runs, width, renderInto(row))
	if err != nil {
		if codec.LineHeaders() && errors.Is(err, bilevel.ErrShortSource) {
			err = bilevel.ErrHeaderWordCount.WithMessagef(
				"runs need more than the %d words declared", header.WordCount)
		}
		return 0, fmt.Errorf("row %d: %w", imageRow, err)
	}
	if walk.Overshoot > 0 {
		Logger().Debug(
			"clamped run overshooting row",
			"row", imageRow,
			"width", width,
			"overshoot", walk.Overshoot,
		)
	}

	if codec.LineHeaders() {
		return LineHeaderWords + header.WordCount, nil
	}
	return walk.Words, nil
}
