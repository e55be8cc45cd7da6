package compression

import (
	"fmt"

	"github.com/dargueta/bilevel"
)

// rechunkRow appends a packet row's runs to `out` in stream form and returns
// the result along with the number of pixels the row covers.
//
// Packets may split long runs anywhere, so a run followed by a zero-length run
// and another run is first merged back into a single run, then split again
// wherever the stream needs it.
func rechunkRow(out []uint16, runs []uint16) ([]uint16, int) {
	next := StateA
	pixels := 0

	for i := 0; i < len(runs); {
		total := int(runs[i])
		i++
		for i+1 < len(runs) && runs[i] == 0 {
			total += int(runs[i+1])
			i += 2
		}
		out, next = flushRun(out, total, next)
		pixels += total
	}
	return terminateRow(out, next), pixels
}

func (codec *Codec) checkPacket(packet PacketView) error {
	if codec.OneLine() {
		return bilevel.ErrOneLineMode.WithMessage("packets hold one image row per row")
	}

	width := codec.geometry.SubsetWidth()
	if packet.Width() != width {
		return bilevel.ErrWidthMismatch.WithMessagef(
			"packet rows are %d pixels, image rows are %d", packet.Width(), width)
	}
	rows := codec.geometry.SubsetHeight()
	if packet.Height() < rows {
		return bilevel.ErrInvalidGeometry.WithMessagef(
			"packet has %d rows, subset needs %d", packet.Height(), rows)
	}
	return nil
}

// CompressSubsetFromRLE compresses the next subset of the image from a per-row
// run container into `dst`, and returns the number of bytes written. Row i of
// the packet is row i of the subset.
//
// Each packet row must cover exactly the image width. Runs are re-split as the
// stream requires, so the output may not be word-for-word identical to the
// packet's contents but always describes the same pixels.
//
// This isn't available in one-line mode.
func (codec *Codec) CompressSubsetFromRLE(src PacketView, dst []byte) (int, error) {
	err := codec.checkPacket(src)
	if err != nil {
		return 0, err
	}
	return codec.process(Compressing, func(sub subset) (int, int, error) {
		writer := newWordWriter(dst)
		for i := 0; i < sub.Rows; i++ {
			imageRow := sub.FirstRow + i
			err := codec.recordRow(imageRow, writer.Words())
			if err != nil {
				return 0, 0, err
			}

			var pixels int
			codec.scratch, pixels = rechunkRow(codec.scratch[:0], src.Row(i))
			if pixels > sub.Width {
				return 0, 0, fmt.Errorf(
					"row %d: %w",
					imageRow,
					bilevel.ErrRunOverflow.WithMessagef("%d pixels in a %d-pixel row", pixels, sub.Width),
				)
			} else if pixels < sub.Width {
				return 0, 0, fmt.Errorf(
					"row %d: %w",
					imageRow,
					bilevel.ErrRunUnderflow.WithMessagef("%d pixels in a %d-pixel row", pixels, sub.Width),
				)
			}

			lineNumber := 0
			if codec.LineHeaders() {
				lineNumber = imageRow + 1
			}
			err = writer.writeRow(codec.scratch, lineNumber)
			if err != nil {
				return 0, 0, err
			}
		}
		return writer.Bytes(), writer.Words(), nil
	})
}

// DecompressSubsetToRLE copies the runs of the next subset of the image from
// the run stream in `src` into `dst`, and returns the number of bytes of `src`
// consumed. Row i of the subset is stored in row i of the packet, growing the
// row's buffer if needed.
//
// Runs are copied as they are. If a row's runs declare more pixels than the
// row holds, the last run copied is shortened so the row is exactly the image
// width. Every stored row has an odd number of runs.
//
// This isn't available in one-line mode.
func (codec *Codec) DecompressSubsetToRLE(src []byte, dst *Packet) (int, error) {
	err := codec.checkPacket(dst)
	if err != nil {
		return 0, err
	}
	return codec.process(Decompressing, func(sub subset) (int, int, error) {
		words := wordSlice(src)
		position := 0
		for i := 0; i < sub.Rows; i++ {
			imageRow := sub.FirstRow + i
			consumed, err := codec.copyRowRuns(words, position, dst, i, sub.Width, imageRow)
			if err != nil {
				return 0, 0, fmt.Errorf("row %d: %w", imageRow, err)
			}
			position += consumed
		}
		return position * 2, position, nil
	})
}

// copyRowRuns copies the runs of the row starting `position` words into
// `words` into row `packetRow` of `dst`, and returns the number of words the
// row occupies in the stream.
func (codec *Codec) copyRowRuns(
	words wordSlice, position int, dst *Packet, packetRow int, width int, imageRow int,
) (int, error) {
	err := codec.recordRow(imageRow, position)
	if err != nil {
		return 0, err
	}

	runs := words.Slice(position, words.Len())
	header := lineHeader{}
	headers := codec.LineHeaders()
	if headers {
		header, runs, err = readLineHeader(runs)
		if err != nil {
			return 0, err
		}
	}

	out := dst.buffer(packetRow)
	pixels := 0
	for pixels < width {
		if len(out) >= runs.Len() {
			if headers {
				return 0, bilevel.ErrHeaderWordCount.WithMessagef(
					"runs need more than the %d words declared", header.WordCount)
			}
			return 0, bilevel.ErrShortSource.WithMessagef(
				"runs cover %d of %d pixels after %d words", pixels, width, len(out))
		}
		run := runs.At(len(out))
		out = append(out, run)
		pixels += int(run)
	}

	copied := len(out)
	if pixels > width {
		Logger().Debug(
			"shrank run overshooting row",
			"row", imageRow,
			"width", width,
			"overshoot", pixels-width,
		)
		out[len(out)-1] -= uint16(pixels - width)
	}
	if len(out)%2 == 0 {
		out = append(out, 0)
	}
	dst.store(packetRow, out)

	if headers {
		return LineHeaderWords + header.WordCount, nil
	}
	if pixels == width && copied%2 == 0 && copied < runs.Len() && runs.At(copied) == 0 {
		copied++
	}
	return copied, nil
}
