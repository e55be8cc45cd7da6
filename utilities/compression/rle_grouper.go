package compression

import (
	"encoding/binary"
	"io"
)

// BitRun represents a single run of pixels in one state.
type BitRun struct {
	// State is the value of every pixel in the run.
	State State
	// RunLength gives the number of pixels in the run.
	//
	// A valid run will always have this be 1 or greater. A value less than 1
	// indicates the end of the row was reached.
	RunLength int
}

// InvalidBitRun is returned by [BitRunGrouper.GetNextRun] once the row has been
// exhausted.
var InvalidBitRun = BitRun{State: StateA, RunLength: 0}

// BitRunGrouper splits a packed row of pixels into runs of identical bits.
//
// Whole 32-bit words and whole bytes of a single state are skipped at once;
// only the bytes where the state changes are examined bit by bit.
type BitRunGrouper struct {
	row    []byte
	pixels int
	pos    int
}

// NewBitRunGrouper creates a grouper over the first `pixels` bits of `row`.
// `row` must hold at least `(pixels + 7) / 8` bytes.
func NewBitRunGrouper(row []byte, pixels int) *BitRunGrouper {
	return &BitRunGrouper{row: row, pixels: pixels}
}

func (grouper *BitRunGrouper) stateAt(pos int) State {
	return State((grouper.row[pos>>3] >> (7 - uint(pos&7))) & 1)
}

// GetNextRun returns a [BitRun] for the next run of pixels in the row. Once the
// row is exhausted it returns [InvalidBitRun] and [io.EOF].
func (grouper *BitRunGrouper) GetNextRun() (BitRun, error) {
	if grouper.pos >= grouper.pixels {
		return InvalidBitRun, io.EOF
	}

	state := grouper.stateAt(grouper.pos)
	fillByte := byte(0)
	fillWord := uint32(0)
	if state == StateB {
		fillByte = 0xff
		fillWord = 0xffffffff
	}

	start := grouper.pos
	for grouper.pos < grouper.pixels {
		remaining := grouper.pixels - grouper.pos
		if grouper.pos&7 == 0 {
			offset := grouper.pos >> 3
			if remaining >= 32 && binary.BigEndian.Uint32(grouper.row[offset:]) == fillWord {
				grouper.pos += 32
				continue
			}
			if remaining >= 8 && grouper.row[offset] == fillByte {
				grouper.pos += 8
				continue
			}
		}
		if grouper.stateAt(grouper.pos) != state {
			break
		}
		grouper.pos++
	}
	return BitRun{State: state, RunLength: grouper.pos - start}, nil
}
