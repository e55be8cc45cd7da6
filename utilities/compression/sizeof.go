package compression

import (
	"fmt"

	"github.com/dargueta/bilevel"
)

// GetSizeOf returns the number of bytes `height` rows of `width` pixels occupy
// at the start of the header-less run stream `src`, without decoding them.
//
// It consumes exactly what [Codec.DecompressSubset] would for the same rows, so
// it can be used to skip over a compressed region.
func GetSizeOf(src []byte, width, height int) (int, error) {
	if width <= 0 || height < 0 {
		return 0, bilevel.ErrInvalidGeometry.WithMessagef(
			"can't measure %d rows of %d pixels", height, width)
	}

	words := wordSlice(src)
	position := 0
	for row := 0; row < height; row++ {
		walk, err := walkRow(words.Slice(position, words.Len()), width, nil)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", row, err)
		}
		position += walk.Words
	}
	return position * 2, nil
}
