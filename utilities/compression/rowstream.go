package compression

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dargueta/bilevel"
)

// RowStream gives random access to the rows of a compressed image stored in a
// seekable stream, using a [LineIndex] to find each row.
//
// The exposed fields are for informational purposes only and should never be
// changed.
type RowStream struct {
	// Width is the number of pixels in a row.
	Width int
	// LineHeaders is true if every row in the stream has a line header.
	LineHeaders bool
	// StartOffset is an offset from the beginning of the stream, in bytes, that
	// will be considered word 0 of the compressed image. This is useful for
	// images embedded in a larger file.
	StartOffset int64
	index       *LineIndex
	stream      io.ReadSeeker
}

// NewRowStream creates a RowStream over `stream` with the compressed image
// starting at `startOffset`.
func NewRowStream(
	stream io.ReadSeeker, index *LineIndex, width int, headers bool, startOffset int64,
) *RowStream {
	return &RowStream{
		Width:       width,
		LineHeaders: headers,
		StartOffset: startOffset,
		index:       index,
		stream:      stream,
	}
}

// RowToFileOffset converts a row number into a byte offset into the backing
// stream.
func (rs *RowStream) RowToFileOffset(row int) (int64, error) {
	offset, err := rs.index.Offset(row)
	if err != nil {
		return -1, err
	}
	return rs.StartOffset + int64(offset)*2, nil
}

// seekToRow positions the stream pointer at the byte offset where the given
// row starts.
func (rs *RowStream) seekToRow(row int) error {
	offset, err := rs.RowToFileOffset(row)
	if err != nil {
		return err
	}
	_, err = rs.stream.Seek(offset, io.SeekStart)
	return err
}

// rowLength returns the number of words the row occupies if the index knows
// where the next row starts, or -1 if it doesn't.
func (rs *RowStream) rowLength(row int) int {
	if !rs.index.Has(row + 1) {
		return -1
	}
	start, _ := rs.index.Offset(row)
	end, _ := rs.index.Offset(row + 1)
	if end < start {
		return -1
	}
	return int(end - start)
}

// readRowWords reads the raw words of a row, including its line header.
func (rs *RowStream) readRowWords(row int) (wordSlice, error) {
	err := rs.seekToRow(row)
	if err != nil {
		return nil, err
	}

	if rs.LineHeaders {
		header := make([]byte, LineHeaderWords*2)
		_, err = io.ReadFull(rs.stream, header)
		if err != nil {
			return nil, bilevel.ErrShortSource.Wrap(err)
		}

		count := int(binary.LittleEndian.Uint16(header[2:]))
		buffer := make([]byte, len(header)+count*2)
		copy(buffer, header)
		_, err = io.ReadFull(rs.stream, buffer[len(header):])
		if err != nil {
			return nil, bilevel.ErrShortSource.Wrap(err)
		}
		return wordSlice(buffer), nil
	}

	if length := rs.rowLength(row); length >= 0 {
		buffer := make([]byte, length*2)
		_, err = io.ReadFull(rs.stream, buffer)
		if err != nil {
			return nil, bilevel.ErrShortSource.Wrap(err)
		}
		return wordSlice(buffer), nil
	}

	// Last indexed row. Everything up to the end of the stream might be part of
	// it, but the walk below only consumes as much as it needs.
	buffer, err := io.ReadAll(rs.stream)
	if err != nil {
		return nil, err
	}
	return wordSlice(buffer), nil
}

// readRow reads a row and walks its runs with `visit`.
func (rs *RowStream) readRow(row int, visit runVisitor) (wordSlice, rowWalk, error) {
	words, err := rs.readRowWords(row)
	if err != nil {
		return nil, rowWalk{}, fmt.Errorf("row %d: %w", row, err)
	}

	if rs.LineHeaders {
		_, words, err = readLineHeader(words)
		if err != nil {
			return nil, rowWalk{}, fmt.Errorf("row %d: %w", row, err)
		}
	}

	walk, err := walkRow(words, rs.Width, visit)
	if err != nil {
		return nil, rowWalk{}, fmt.Errorf("row %d: %w", row, err)
	}
	return words, walk, nil
}

// ReadRow decodes a single row into `dst`, which must hold at least
// `(Width + 7) / 8` bytes. Bits past the end of the row are cleared.
func (rs *RowStream) ReadRow(row int, dst []byte) error {
	stride := (rs.Width + 7) / 8
	if len(dst) < stride {
		return bilevel.ErrBufferTooSmall.WithMessagef(
			"a %d-pixel row needs %d bytes, got %d", rs.Width, stride, len(dst))
	}

	out := dst[:stride]
	clear(out)
	_, _, err := rs.readRow(row, renderInto(out))
	return err
}

// ReadRowRuns returns the run words of a single row as stored, without its
// line header.
func (rs *RowStream) ReadRowRuns(row int) ([]uint16, error) {
	words, walk, err := rs.readRow(row, nil)
	if err != nil {
		return nil, err
	}

	runs := make([]uint16, walk.Words)
	for i := range runs {
		runs[i] = words.At(i)
	}
	return runs, nil
}
