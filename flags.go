package bilevel

// Options is a set of codec configuration flags. They're set before the first
// subset of an image is processed and must not change until the last one is
// done.
type Options uint

const (
	// LineHeaders frames every row with a four-word header so that rows can be
	// located and skipped without decoding their runs.
	LineHeaders Options = 1 << iota
	// OneLine treats each subset as a single logical row of
	// `(width + padding) * rows` pixels. No per-row framing is written.
	OneLine
	// LineIndexing records the stream offset of every row in a table sized to
	// the image height.
	LineIndexing
)

const NoOptions = Options(0)

// Has returns true if every flag in `flags` is set.
func (o Options) Has(flags Options) bool {
	return o&flags == flags
}

// With returns a copy of the options with `flags` set or cleared.
func (o Options) With(flags Options, enabled bool) Options {
	if enabled {
		return o | flags
	}
	return o &^ flags
}
