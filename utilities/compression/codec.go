package compression

import (
	"github.com/dargueta/bilevel"
)

// Mode is the state of a codec's current pass over an image.
type Mode int

const (
	Idle Mode = iota
	Compressing
	Decompressing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Compressing:
		return "compressing"
	case Decompressing:
		return "decompressing"
	default:
		return "invalid"
	}
}

// Codec converts bilevel images between packed bitmaps and the RLE1 run
// stream, one subset at a time.
//
// A Codec is created once per image (or page, or resolution) and processes the
// image's subsets in order. It reads the image geometry and the subset cursor
// from its [bilevel.Geometry] on every call, and advances the cursor when a call
// succeeds. A pass starts when the cursor is at row 0 and ends when it reaches
// the image height, at which point the codec goes back to [Idle].
//
// A Codec is not safe for concurrent use.
type Codec struct {
	geometry bilevel.Geometry
	options  bilevel.Options
	mode     Mode
	// streamWords is the number of words compressed or consumed since the
	// start of the current pass.
	streamWords uint64
	index       *LineIndex
	scratch     []uint16
}

// NewCodec creates a codec reading its dimensions from `geometry`. If
// `options` includes [bilevel.LineIndexing] the line index is allocated
// immediately, sized to the current image height.
func NewCodec(geometry bilevel.Geometry, options bilevel.Options) *Codec {
	codec := &Codec{
		geometry: geometry,
		options:  options,
	}
	if options.Has(bilevel.LineIndexing) {
		codec.index = NewLineIndex(geometry.ImageHeight())
	}
	return codec
}

// Mode returns the codec's current mode.
func (codec *Codec) Mode() Mode {
	return codec.mode
}

// StreamOffset returns the number of words compressed or decompressed since
// the start of the current pass. This is where the next row will begin.
func (codec *Codec) StreamOffset() uint64 {
	return codec.streamWords
}

// Options returns the codec's configuration flags.
func (codec *Codec) Options() bilevel.Options {
	return codec.options
}

func (codec *Codec) checkIdle() error {
	if codec.mode != Idle {
		return bilevel.ErrModeConflict.WithMessagef(
			"can't reconfigure while %s at row %d", codec.mode, codec.geometry.SubsetRow())
	}
	return nil
}

// SetLineHeaders enables or disables line headers.
func (codec *Codec) SetLineHeaders(enabled bool) error {
	if err := codec.checkIdle(); err != nil {
		return err
	}
	codec.options = codec.options.With(bilevel.LineHeaders, enabled)
	return nil
}

// LineHeaders returns true if line headers are enabled.
func (codec *Codec) LineHeaders() bool {
	return codec.options.Has(bilevel.LineHeaders)
}

// SetOneLine enables or disables one-line mode.
func (codec *Codec) SetOneLine(enabled bool) error {
	if err := codec.checkIdle(); err != nil {
		return err
	}
	codec.options = codec.options.With(bilevel.OneLine, enabled)
	return nil
}

// OneLine returns true if one-line mode is enabled.
func (codec *Codec) OneLine() bool {
	return codec.options.Has(bilevel.OneLine)
}

// SetLineIndexing enables or disables the line index. Enabling it always
// allocates a new, empty table sized to the current image height, so it must
// be called again whenever the image dimensions change.
func (codec *Codec) SetLineIndexing(enabled bool) error {
	if err := codec.checkIdle(); err != nil {
		return err
	}
	codec.options = codec.options.With(bilevel.LineIndexing, enabled)
	if enabled {
		codec.index = NewLineIndex(codec.geometry.ImageHeight())
	} else {
		codec.index = nil
	}
	return nil
}

// LineIndex returns the line index, or nil if indexing is disabled.
func (codec *Codec) LineIndex() *LineIndex {
	return codec.index
}

// SetLineIndex replaces the line index table with a copy of `entries`, which
// must have one entry per image row. Indexing must already be enabled.
func (codec *Codec) SetLineIndex(entries []uint32) error {
	if codec.index == nil {
		return bilevel.ErrIndexSize.WithMessage("line indexing is disabled")
	}
	return codec.index.Set(entries)
}

// subset describes the rows a single codec call works on.
type subset struct {
	// FirstRow is the image row the subset starts at.
	FirstRow int
	// Rows is the number of image rows in the subset.
	Rows int
	// Width is the number of pixels in each row.
	Width int
	// Stride is the size of one packed row, in bytes.
	Stride int
}

// begin validates the geometry for the next subset and enters `mode`.
func (codec *Codec) begin(mode Mode) (subset, error) {
	geometry := codec.geometry
	sub := subset{
		FirstRow: geometry.SubsetRow(),
		Rows:     geometry.SubsetHeight(),
		Width:    geometry.SubsetWidth(),
		Stride:   bilevel.RowStride(geometry),
	}
	height := geometry.ImageHeight()

	if sub.FirstRow < 0 || sub.FirstRow >= height {
		return sub, bilevel.ErrRowOutOfRange.WithMessagef(
			"subset cursor at row %d of a %d-row image", sub.FirstRow, height)
	}
	if sub.Width <= 0 || geometry.PaddingBits() < 0 || sub.Stride < 0 {
		return sub, bilevel.ErrInvalidGeometry.WithMessagef(
			"%d pixels plus %d padding bits isn't a whole number of bytes",
			sub.Width,
			geometry.PaddingBits(),
		)
	}
	if sub.Rows <= 0 || sub.FirstRow+sub.Rows > height {
		return sub, bilevel.ErrInvalidGeometry.WithMessagef(
			"can't process %d rows starting at %d of a %d-row image",
			sub.Rows,
			sub.FirstRow,
			height,
		)
	}
	if codec.index != nil && codec.index.Len() != height {
		return sub, bilevel.ErrIndexSize.WithMessagef(
			"index has %d rows, image has %d; re-enable line indexing after resizing",
			codec.index.Len(),
			height,
		)
	}

	if codec.mode != Idle && codec.mode != mode {
		if sub.FirstRow != 0 {
			return sub, bilevel.ErrModeConflict.WithMessagef(
				"can't start %s at row %d while %s", mode, sub.FirstRow, codec.mode)
		}
		Logger().Debug("abandoning unfinished pass", "mode", codec.mode.String())
	}
	if sub.FirstRow == 0 {
		codec.streamWords = 0
	} else if codec.mode == Idle && codec.index.Has(sub.FirstRow) {
		// Resuming partway through an image; pick up the offset from the index.
		offset, _ := codec.index.Offset(sub.FirstRow)
		codec.streamWords = uint64(offset)
	}
	if codec.mode != mode {
		Logger().Debug("codec mode change", "from", codec.mode.String(), "to", mode.String())
		codec.mode = mode
	}
	return sub, nil
}

// process runs one subset call in `mode`. `body` returns the number of bytes to
// report to the caller and the number of stream words the subset occupies. If
// it fails, the codec's mode and stream offset are restored and the cursor
// doesn't move.
func (codec *Codec) process(
	mode Mode, body func(sub subset) (int, int, error),
) (int, error) {
	previousMode, previousWords := codec.mode, codec.streamWords
	sub, err := codec.begin(mode)
	if err != nil {
		return 0, err
	}

	n, words, err := body(sub)
	if err != nil {
		codec.mode, codec.streamWords = previousMode, previousWords
		return 0, err
	}
	codec.finish(sub, words)
	return n, nil
}

// finish advances the cursor past `sub` and the stream offset past `words`
// words, returning to [Idle] at the end of the image.
func (codec *Codec) finish(sub subset, words int) {
	next := sub.FirstRow + sub.Rows
	codec.geometry.SetSubsetRow(next)
	codec.streamWords += uint64(words)

	if next >= codec.geometry.ImageHeight() {
		Logger().Debug(
			"pass complete", "mode", codec.mode.String(), "words", codec.streamWords)
		codec.mode = Idle
	}
}

// recordRow stores the offset of `row`, which begins `localWords` words into
// the current call's stream. It's a no-op if indexing is disabled.
func (codec *Codec) recordRow(row int, localWords int) error {
	if codec.index == nil {
		return nil
	}
	return codec.index.Record(row, codec.streamWords+uint64(localWords))
}

// MaxCompressedSize returns the largest number of bytes `rows` rows of `pixels`
// pixels each can compress to.
func MaxCompressedSize(pixels, rows int, headers bool) int {
	// Worst case is every pixel differing from its neighbor, plus a leading and
	// a terminating zero-length run, plus two words for every split.
	words := pixels + 2 + 2*(pixels/MaxRunLength)
	if headers {
		words += LineHeaderWords
	}
	return words * rows * 2
}
