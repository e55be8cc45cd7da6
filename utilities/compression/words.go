package compression

import (
	"encoding/binary"
	"io"

	"github.com/dargueta/bilevel"
	"github.com/noxer/bytewriter"
)

// LineHeaderTag is the first word of every line header.
const LineHeaderTag = 0x5900

// LineHeaderWords is the size of a line header, in words.
const LineHeaderWords = 4

// wordWriter writes little-endian words into a fixed-size destination buffer.
// Nothing is written if a write would overrun the buffer.
type wordWriter struct {
	w        io.Writer
	capacity int
	written  int
}

func newWordWriter(dst []byte) *wordWriter {
	return &wordWriter{
		w:        bytewriter.New(dst),
		capacity: len(dst) / 2,
	}
}

// Words returns the number of words written so far.
func (ww *wordWriter) Words() int {
	return ww.written
}

// Bytes returns the number of bytes written so far.
func (ww *wordWriter) Bytes() int {
	return ww.written * 2
}

func (ww *wordWriter) Write(words ...[]uint16) error {
	total := 0
	for _, chunk := range words {
		total += len(chunk)
	}
	if ww.written+total > ww.capacity {
		return bilevel.ErrBufferTooSmall.WithMessagef(
			"need %d more bytes, %d of %d left",
			total*2,
			(ww.capacity-ww.written)*2,
			ww.capacity*2,
		)
	}

	for _, chunk := range words {
		err := binary.Write(ww.w, binary.LittleEndian, chunk)
		if err != nil {
			return bilevel.ErrBufferTooSmall.Wrap(err)
		}
		ww.written += len(chunk)
	}
	return nil
}

// writeRow writes a row's runs, preceded by a line header if `lineNumber` is
// positive. The header holds the line number modulo 65536.
func (ww *wordWriter) writeRow(runs []uint16, lineNumber int) error {
	if lineNumber <= 0 {
		return ww.Write(runs)
	}
	if len(runs) > 0xffff {
		return bilevel.ErrHeaderWordCount.WithMessagef(
			"row %d needs %d run words, a header can declare at most 65535",
			lineNumber,
			len(runs),
		)
	}
	header := []uint16{LineHeaderTag, uint16(len(runs)), uint16(lineNumber & 0xffff), 0}
	return ww.Write(header, runs)
}

// lineHeader is a decoded line header.
type lineHeader struct {
	WordCount  int
	LineNumber int
}

// readLineHeader decodes the line header at the start of `words` and returns it
// along with the words holding the row's runs.
func readLineHeader(words wordSlice) (lineHeader, wordSlice, error) {
	if words.Len() < LineHeaderWords {
		return lineHeader{}, nil, bilevel.ErrShortSource.WithMessagef(
			"need %d words for a line header, %d left", LineHeaderWords, words.Len())
	}
	if tag := words.At(0); tag != LineHeaderTag {
		return lineHeader{}, nil, bilevel.ErrBadLineHeader.WithMessagef(
			"expected tag %#04x, got %#04x", LineHeaderTag, tag)
	}

	header := lineHeader{
		WordCount:  int(words.At(1)),
		LineNumber: int(words.At(2)),
	}
	end := LineHeaderWords + header.WordCount
	if end > words.Len() {
		return header, nil, bilevel.ErrHeaderWordCount.WithMessagef(
			"header declares %d words, %d left",
			header.WordCount,
			words.Len()-LineHeaderWords,
		)
	}
	return header, words.Slice(LineHeaderWords, end), nil
}
