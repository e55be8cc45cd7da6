package bilevel

// Raster is a minimal [Geometry] for a packed bilevel image. It's what a raster
// file would hand to a codec: the image size, the number of rows it feeds the
// codec at a time, and the cursor recording where the current pass is.
//
// The exposed methods are the only way to change a Raster; codecs only ever
// move the cursor.
type Raster struct {
	width      int
	height     int
	padding    int
	subsetRows int
	row        int
}

// NewRaster creates a raster of `width` x `height` pixels that is processed
// `subsetRows` rows at a time. Rows are padded to the nearest byte.
func NewRaster(width, height, subsetRows int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidGeometry.WithMessagef(
			"image must be at least 1x1, got %dx%d", width, height)
	}
	if subsetRows <= 0 {
		return nil, ErrInvalidGeometry.WithMessagef(
			"subsets must have at least one row, got %d", subsetRows)
	}
	return &Raster{
		width:      width,
		height:     height,
		padding:    minimumPadding(width),
		subsetRows: subsetRows,
	}, nil
}

func minimumPadding(width int) int {
	return (8 - width%8) % 8
}

func (r *Raster) ImageWidth() int {
	return r.width
}

func (r *Raster) ImageHeight() int {
	return r.height
}

func (r *Raster) SubsetWidth() int {
	return r.width
}

// SubsetHeight returns the configured subset size, or however many rows are
// left in the image if that's fewer.
func (r *Raster) SubsetHeight() int {
	remaining := r.height - r.row
	if remaining < r.subsetRows {
		return remaining
	}
	return r.subsetRows
}

func (r *Raster) PaddingBits() int {
	return r.padding
}

func (r *Raster) SubsetRow() int {
	return r.row
}

func (r *Raster) SetSubsetRow(row int) {
	r.row = row
}

// Stride returns the size of one packed row, in bytes.
func (r *Raster) Stride() int {
	return (r.width + r.padding) / 8
}

// Size returns the size of the whole packed image, in bytes.
func (r *Raster) Size() int {
	return r.Stride() * r.height
}

// SetPadding changes the number of padding bits at the end of each row. Some
// formats align rows to 16 or 32 bits instead of 8.
func (r *Raster) SetPadding(bits int) error {
	if bits < 0 || (r.width+bits)%8 != 0 {
		return ErrInvalidGeometry.WithMessagef(
			"%d padding bits don't bring a %d-pixel row to a byte boundary",
			bits,
			r.width,
		)
	}
	r.padding = bits
	return nil
}

// SetSubsetRows changes how many rows each subset holds.
func (r *Raster) SetSubsetRows(rows int) error {
	if rows <= 0 {
		return ErrInvalidGeometry.WithMessagef(
			"subsets must have at least one row, got %d", rows)
	}
	r.subsetRows = rows
	return nil
}

// Resize changes the image dimensions and rewinds the cursor. Padding is reset
// to the minimum for the new width. Codecs with line indexing enabled must have
// it re-enabled afterwards so the table matches the new height.
func (r *Raster) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidGeometry.WithMessagef(
			"image must be at least 1x1, got %dx%d", width, height)
	}
	r.width = width
	r.height = height
	r.padding = minimumPadding(width)
	r.row = 0
	return nil
}

// Rewind moves the cursor back to the first row.
func (r *Raster) Rewind() {
	r.row = 0
}

// Done returns true once every row of the image has been processed.
func (r *Raster) Done() bool {
	return r.row >= r.height
}
