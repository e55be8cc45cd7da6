package compression

import (
	"encoding/binary"

	"github.com/dargueta/bilevel"
)

// MaxRunLength is the longest run a single word may hold.
const MaxRunLength = 32767

// State is one of the two pixel values a run can describe.
type State uint8

const (
	// StateA is a clear bit. Every row starts and ends with a StateA run.
	StateA State = iota
	// StateB is a set bit.
	StateB
)

// Flip returns the other state.
func (s State) Flip() State {
	return s ^ 1
}

func (s State) String() string {
	if s == StateA {
		return "A"
	}
	return "B"
}

// flushRun appends a run of `length` pixels to `out` and returns the extended
// slice along with the state of the next run. Runs longer than [MaxRunLength]
// are written as (32767, 0) pairs followed by the remainder.
func flushRun(out []uint16, length int, state State) ([]uint16, State) {
	for length > MaxRunLength {
		out = append(out, MaxRunLength, 0)
		length -= MaxRunLength
	}
	return append(out, uint16(length)), state.Flip()
}

// terminateRow appends the zero-length StateA run a row needs if its last run
// was StateB. `next` is the state the next run would have had.
func terminateRow(out []uint16, next State) []uint16 {
	if next == StateA {
		out = append(out, 0)
	}
	return out
}

// wordSlice is a read-only view of little-endian words stored in a byte slice.
type wordSlice []byte

func (w wordSlice) Len() int {
	return len(w) / 2
}

func (w wordSlice) At(i int) uint16 {
	return binary.LittleEndian.Uint16(w[2*i:])
}

// Slice returns the words in [start, end).
func (w wordSlice) Slice(start, end int) wordSlice {
	return w[2*start : 2*end]
}

// runVisitor receives the runs of a row as the row is walked. `start` is the
// index of the first pixel of the run within the row. Runs are clamped to the
// row width, and zero-length runs aren't reported.
type runVisitor func(state State, start, length int)

// rowWalk describes how a row's runs were laid out in the stream.
type rowWalk struct {
	// Words is the number of words the row's runs occupy, including the
	// terminating zero-length run if there is one.
	Words int
	// Overshoot is the number of pixels the runs declared beyond the row
	// width. It's nonzero only for malformed rows.
	Overshoot int
}

// walkRow reads the runs of one `width`-pixel row from the start of `words`,
// calling `visit` for each one. `visit` may be nil.
//
// Reading stops as soon as the runs cover the row. If that happens exactly on a
// StateB run and the next word is zero, the zero is taken to be the row's
// terminating StateA run and is consumed as well. A run that would overshoot
// the row is clamped and ends the row; none of the words following it are
// consumed, not even a zero.
//
// If `words` runs out before the row is covered, walkRow returns
// [bilevel.ErrShortSource].
func walkRow(words wordSlice, width int, visit runVisitor) (rowWalk, error) {
	walk := rowWalk{}
	state := StateA
	pixels := 0
	available := words.Len()

	for pixels < width {
		if walk.Words >= available {
			return walk, bilevel.ErrShortSource.WithMessagef(
				"runs cover %d of %d pixels after %d words", pixels, width, walk.Words)
		}
		length := int(words.At(walk.Words))
		walk.Words++

		if pixels+length > width {
			walk.Overshoot = pixels + length - width
			length = width - pixels
		}
		if visit != nil && length > 0 {
			visit(state, pixels, length)
		}
		pixels += length
		state = state.Flip()
	}

	if walk.Overshoot == 0 && walk.Words%2 == 0 && walk.Words < available &&
		words.At(walk.Words) == 0 {
		walk.Words++
	}
	return walk, nil
}
