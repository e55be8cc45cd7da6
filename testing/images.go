package testing

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dargueta/bilevel"
	"github.com/dargueta/bilevel/utilities/compression"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// CreateRandomBitmap creates a packed bitmap the size of `raster` filled with
// random pixels. Padding bits are always clear. It is guaranteed to either
// return a valid slice or fail the test and abort.
func CreateRandomBitmap(t *testing.T, raster *bilevel.Raster) []byte {
	bitmap := make([]byte, raster.Size())
	_, err := rand.Read(bitmap)
	require.NoErrorf(
		t,
		err,
		"failed to fill a %dx%d bitmap with random bytes",
		raster.ImageWidth(),
		raster.ImageHeight(),
	)

	ClearPadding(bitmap, raster)
	return bitmap
}

// ClearPadding clears every bit of `bitmap` past the end of a row.
func ClearPadding(bitmap []byte, raster *bilevel.Raster) {
	stride := raster.Stride()
	width := raster.ImageWidth()
	for row := 0; row < raster.ImageHeight(); row++ {
		for bit := width; bit < stride*8; bit++ {
			bitmap[row*stride+bit/8] &^= 0x80 >> uint(bit%8)
		}
	}
}

// CompressBitmap compresses a whole bitmap with a fresh codec, failing the test
// on error. The raster is rewound before and after.
func CompressBitmap(
	t *testing.T, bitmap []byte, raster *bilevel.Raster, options bilevel.Options,
) ([]byte, *compression.LineIndex) {
	output := bytes.Buffer{}
	_, index, err := compression.CompressImage(
		bytes.NewReader(bitmap), &output, raster, options)
	require.NoError(t, err, "failed to compress bitmap")

	raster.Rewind()
	return output.Bytes(), index
}

// LoadStream takes a compressed image and returns a seekable stream over a copy
// of it.
//
//   - Writes to the stream do not affect `compressed`.
//   - The stream's size is fixed to `len(compressed)`. Attempting to write past
//     the end of this buffer will trigger an error.
func LoadStream(t *testing.T, compressed []byte) io.ReadWriteSeeker {
	require.Greater(t, len(compressed), 0, "compressed image is empty")

	streamBytes := make([]byte, len(compressed))
	copy(streamBytes, compressed)
	return bytesextra.NewReadWriteSeeker(streamBytes)
}
