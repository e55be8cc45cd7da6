package compression

import (
	"fmt"

	"github.com/dargueta/bilevel"
	"github.com/hashicorp/go-multierror"
)

// PacketView is read-only access to a per-row run container (an "RLE packet").
// Each row holds that row's runs in the same alternating format as the run
// stream, without line headers.
type PacketView interface {
	// Width is the number of pixels in each row.
	Width() int
	// Height is the number of rows in the packet.
	Height() int
	// Row returns the runs of a row. Callers must not modify the slice.
	Row(row int) []uint16
}

// Packet is a per-row run container that owns its row buffers. Unlike a
// borrowed [PacketView], a Packet may have its rows replaced or grown, so it's
// the only kind of container [Codec.DecompressSubsetToRLE] accepts.
type Packet struct {
	width int
	rows  [][]uint16
	sizes []int
}

// NewPacket creates an empty packet of `height` rows, each `width` pixels wide.
func NewPacket(width, height int) *Packet {
	return &Packet{
		width: width,
		rows:  make([][]uint16, height),
		sizes: make([]int, height),
	}
}

func (p *Packet) Width() int {
	return p.width
}

func (p *Packet) Height() int {
	return len(p.rows)
}

func (p *Packet) Row(row int) []uint16 {
	return p.rows[row][:p.sizes[row]/2]
}

// RowSize returns the number of bytes of run data stored in a row.
func (p *Packet) RowSize(row int) int {
	return p.sizes[row]
}

// Capacity returns the number of words a row can hold before its buffer has
// to be reallocated.
func (p *Packet) Capacity(row int) int {
	return cap(p.rows[row])
}

// Reserve makes sure a row's buffer can hold at least `words` words without
// being reallocated. The row's contents are preserved.
func (p *Packet) Reserve(row int, words int) {
	if cap(p.rows[row]) >= words {
		return
	}
	buffer := make([]uint16, len(p.rows[row]), words)
	copy(buffer, p.rows[row])
	p.rows[row] = buffer
}

// SetRow replaces a row's runs with a copy of `runs`.
func (p *Packet) SetRow(row int, runs []uint16) {
	p.store(row, append(p.rows[row][:0], runs...))
}

// buffer returns a row's buffer emptied for reuse.
func (p *Packet) buffer(row int) []uint16 {
	return p.rows[row][:0]
}

// store makes `runs`, which may be a grown copy of the row's buffer, the row's
// contents.
func (p *Packet) store(row int, runs []uint16) {
	p.rows[row] = runs
	p.sizes[row] = len(runs) * 2
}

// Validate checks every row of the packet. See [ValidatePacket].
func (p *Packet) Validate() error {
	return ValidatePacket(p)
}

type packetView struct {
	width int
	rows  [][]uint16
}

// NewPacketView wraps run arrays owned by someone else. The result can be
// compressed but never written to.
func NewPacketView(width int, rows [][]uint16) PacketView {
	return packetView{width: width, rows: rows}
}

func (v packetView) Width() int {
	return v.width
}

func (v packetView) Height() int {
	return len(v.rows)
}

func (v packetView) Row(row int) []uint16 {
	return v.rows[row]
}

// ValidatePacket checks that every row's runs add up to exactly the packet
// width and that every row has an odd number of runs. All problems found are
// returned together in a [multierror.Error]; nil means the packet is valid.
func ValidatePacket(packet PacketView) error {
	var result error
	width := packet.Width()

	for row := 0; row < packet.Height(); row++ {
		runs := packet.Row(row)
		pixels := 0
		for _, run := range runs {
			pixels += int(run)
		}

		if pixels > width {
			result = multierror.Append(
				result,
				fmt.Errorf(
					"row %d: %w",
					row,
					bilevel.ErrRunOverflow.WithMessagef("%d pixels in a %d-pixel row", pixels, width),
				),
			)
		} else if pixels < width {
			result = multierror.Append(
				result,
				fmt.Errorf(
					"row %d: %w",
					row,
					bilevel.ErrRunUnderflow.WithMessagef("%d pixels in a %d-pixel row", pixels, width),
				),
			)
		}

		if len(runs)%2 == 0 {
			result = multierror.Append(
				result,
				fmt.Errorf(
					"row %d: %w", row, bilevel.ErrRunParity.WithMessagef("%d runs", len(runs)),
				),
			)
		}
	}
	return result
}
