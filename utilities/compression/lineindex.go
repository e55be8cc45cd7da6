package compression

import (
	"io"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/bilevel"
	"github.com/gocarina/gocsv"
)

// LineIndex maps row numbers to the word offset at which each row begins in a
// compressed stream. Offsets are absolute: they count from the first word of
// the first subset, not from the start of the buffer passed to a single call.
//
// Only rows that have been processed (or loaded) have an offset.
type LineIndex struct {
	offsets  []uint32
	recorded bitmap.Bitmap
}

type lineIndexRecord struct {
	Row    int    `csv:"row"`
	Offset uint32 `csv:"offset"`
}

// NewLineIndex creates an empty index for an image with `rows` rows.
func NewLineIndex(rows int) *LineIndex {
	return &LineIndex{
		offsets:  make([]uint32, rows),
		recorded: bitmap.New(rows),
	}
}

// Len returns the number of rows the index covers.
func (index *LineIndex) Len() int {
	return len(index.offsets)
}

func (index *LineIndex) checkRow(row int) error {
	if row < 0 || row >= len(index.offsets) {
		return bilevel.ErrRowOutOfRange.WithMessagef(
			"row %d not in [0, %d)", row, len(index.offsets))
	}
	return nil
}

// Offset returns the word offset of `row`.
func (index *LineIndex) Offset(row int) (uint32, error) {
	if err := index.checkRow(row); err != nil {
		return 0, err
	}
	if !index.recorded.Get(row) {
		return 0, bilevel.ErrRowNotIndexed.WithMessagef("row %d", row)
	}
	return index.offsets[row], nil
}

// Has returns true if `row` has a recorded offset. It's safe to call on a nil
// index.
func (index *LineIndex) Has(row int) bool {
	return index != nil && row >= 0 && row < len(index.offsets) && index.recorded.Get(row)
}

// Entries returns a copy of the table. Rows without a recorded offset read as 0.
func (index *LineIndex) Entries() []uint32 {
	entries := make([]uint32, len(index.offsets))
	copy(entries, index.offsets)
	return entries
}

// Set replaces the whole table with `entries`, which must have exactly one
// entry per row. Every row is marked as recorded.
func (index *LineIndex) Set(entries []uint32) error {
	if len(entries) != len(index.offsets) {
		return bilevel.ErrIndexSize.WithMessagef(
			"got %d entries for a %d-row index", len(entries), len(index.offsets))
	}
	copy(index.offsets, entries)
	for i := range index.offsets {
		index.recorded.Set(i, true)
	}
	return nil
}

// Record sets the offset of a single row.
func (index *LineIndex) Record(row int, offset uint64) error {
	if err := index.checkRow(row); err != nil {
		return err
	}
	if offset > 0xffffffff {
		return bilevel.ErrOffsetOverflow.WithMessagef(
			"row %d starts at word %d", row, offset)
	}
	index.offsets[row] = uint32(offset)
	index.recorded.Set(row, true)
	return nil
}

// WriteCSV writes every recorded row and its offset as CSV with a header line.
func (index *LineIndex) WriteCSV(output io.Writer) error {
	records := make([]lineIndexRecord, 0, len(index.offsets))
	for row, offset := range index.offsets {
		if index.recorded.Get(row) {
			records = append(records, lineIndexRecord{Row: row, Offset: offset})
		}
	}
	return gocsv.Marshal(records, output)
}

// ReadCSV loads rows and offsets written by [LineIndex.WriteCSV]. Rows not
// present in the input keep whatever offset they had.
func (index *LineIndex) ReadCSV(input io.Reader) error {
	records := []lineIndexRecord{}
	err := gocsv.Unmarshal(input, &records)
	if err != nil {
		return err
	}

	for _, record := range records {
		err = index.Record(record.Row, uint64(record.Offset))
		if err != nil {
			return err
		}
	}
	return nil
}
