// Package bilevel defines the boundary between 1-bit raster codecs and the
// raster files that own them.
//
// A raster file knows how large its image is and decides how many scanlines
// are handed to a codec in a single call (a "subset"). It also owns the
// vertical cursor recording how far into the image the current pass has gone.
// Codecs in this module never track image size themselves; they read it
// through a [Geometry] on every call and advance its cursor when they finish.
package bilevel

// Geometry supplies image and subset dimensions to a codec and owns the subset
// cursor.
//
// Image rows are packed one bit per pixel, most significant bit first. Each row
// occupies `SubsetWidth() + PaddingBits()` bits, which must be a whole number of
// bytes.
type Geometry interface {
	// ImageWidth is the width of the whole image, in pixels.
	ImageWidth() int
	// ImageHeight is the number of rows in the whole image.
	ImageHeight() int
	// SubsetWidth is the number of meaningful pixels in each row of a subset.
	SubsetWidth() int
	// SubsetHeight is the number of rows the next codec call will process.
	SubsetHeight() int
	// PaddingBits is the number of bits following the last pixel of each row
	// that round the row up to a byte boundary.
	PaddingBits() int
	// SubsetRow is the index of the first row of the next subset.
	SubsetRow() int
	// SetSubsetRow moves the subset cursor. Codecs call this once per subset.
	SetSubsetRow(row int)
}

// RowStride returns the number of bytes a single packed row of `geometry`
// occupies, or -1 if the row doesn't end on a byte boundary.
func RowStride(geometry Geometry) int {
	bits := geometry.SubsetWidth() + geometry.PaddingBits()
	if bits%8 != 0 {
		return -1
	}
	return bits / 8
}
