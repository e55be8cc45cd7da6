package testing

import (
	"strings"
	"testing"

	"github.com/dargueta/bilevel"
	"github.com/stretchr/testify/require"
)

// CreateRaster creates a raster or fails the test.
func CreateRaster(t *testing.T, width, height, subsetRows int) *bilevel.Raster {
	raster, err := bilevel.NewRaster(width, height, subsetRows)
	require.NoErrorf(t, err, "failed to create %dx%d raster", width, height)
	return raster
}

// PackRows builds a packed bitmap from rows drawn as text, one string per row.
// '#' is a set pixel; anything else is a clear one. Every row must be exactly
// the raster width.
//
//	PackRows(t, raster,
//	    "..##....",
//	    "#......#",
//	)
func PackRows(t *testing.T, raster *bilevel.Raster, rows ...string) []byte {
	require.Equal(t, raster.ImageHeight(), len(rows), "wrong number of rows")

	stride := raster.Stride()
	bitmap := make([]byte, stride*len(rows))
	for y, row := range rows {
		require.Equalf(t, raster.ImageWidth(), len(row), "row %d is the wrong width", y)
		for x, c := range row {
			if c == '#' {
				bitmap[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return bitmap
}

// RowString draws the first `width` pixels of a packed row as text.
func RowString(row []byte, width int) string {
	builder := strings.Builder{}
	for x := 0; x < width; x++ {
		if row[x/8]&(0x80>>uint(x%8)) != 0 {
			builder.WriteByte('#')
		} else {
			builder.WriteByte('.')
		}
	}
	return builder.String()
}

// RunsString draws a row given as alternating runs as text, stopping after
// `width` pixels.
func RunsString(runs []uint16, width int) string {
	builder := strings.Builder{}
	set := false
	for _, run := range runs {
		for i := 0; i < int(run) && builder.Len() < width; i++ {
			if set {
				builder.WriteByte('#')
			} else {
				builder.WriteByte('.')
			}
		}
		set = !set
	}
	return builder.String()
}
