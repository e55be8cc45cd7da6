package compression_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/dargueta/bilevel"
	bt "github.com/dargueta/bilevel/testing"
	c "github.com/dargueta/bilevel/utilities/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageC9nTestRunner struct {
	Name     string
	Function func(t *testing.T, raster *bilevel.Raster, options bilevel.Options, d []byte)
}

type imageC9nTestData struct {
	Name       string
	Width      int
	Height     int
	SubsetRows int
}

var imageOptions = []struct {
	Name    string
	Options bilevel.Options
}{
	{"plain", bilevel.NoOptions},
	{"headers", bilevel.LineHeaders},
	{"indexed", bilevel.LineIndexing},
	{"headers_indexed", bilevel.LineHeaders | bilevel.LineIndexing},
	{"one_line", bilevel.OneLine},
	{"one_line_headers", bilevel.OneLine | bilevel.LineHeaders},
}

// compressImageToBytes is a convenience function wrapping [CompressImage]. It
// functions identically, except it returns the compressed data in a new byte
// slice instead of writing to an [io.Writer].
func compressImageToBytes(
	bitmap []byte, raster *bilevel.Raster, options bilevel.Options,
) ([]byte, error) {
	buffer := bytes.Buffer{}
	writer := bufio.NewWriter(&buffer)
	_, _, err := c.CompressImage(bytes.NewReader(bitmap), writer, raster, options)
	if err != nil {
		return nil, err
	}

	writer.Flush()

	outputSlice := make([]byte, buffer.Len())
	copy(outputSlice, buffer.Bytes())
	return outputSlice, nil
}

func TestRoundTripImageCompression(t *testing.T) {
	testRunners := []imageC9nTestRunner{
		{"to_stream", runRoundTripCompressionTest},
		{"to_bytes", runRoundTripCompressionToBytesTest},
	}

	testData := []imageC9nTestData{
		{"single_pixel", 1, 1, 1},
		{"odd_width", 13, 5, 2},
		{"byte_width", 64, 9, 4},
		{"one_subset", 100, 17, 17},
		{"row_by_row", 1000, 4, 1},
	}

	for _, runner := range testRunners {
		t.Run(
			runner.Name,
			func(tSub *testing.T) {
				for _, data := range testData {
					for _, options := range imageOptions {
						tSub.Run(
							data.Name+"/"+options.Name,
							func(tSubSub *testing.T) {
								raster := bt.CreateRaster(
									tSubSub, data.Width, data.Height, data.SubsetRows)
								bitmap := bt.CreateRandomBitmap(tSubSub, raster)
								runner.Function(tSubSub, raster, options.Options, bitmap)
							},
						)
					}
				}
			},
		)
	}
}

func runRoundTripCompressionTest(
	t *testing.T, raster *bilevel.Raster, options bilevel.Options, sourceData []byte,
) {
	compressedBuffer := make([]byte, c.MaxCompressedSize(
		raster.ImageWidth()+raster.PaddingBits(), raster.ImageHeight(), true))
	compressedWriter := bytewriter.New(compressedBuffer)

	compressedSize, index, err := c.CompressImage(
		bytes.NewReader(sourceData), compressedWriter, raster, options)
	require.NoError(t, err, "unexpected error while compressing")
	t.Logf("image size after compression: %d -> %d", len(sourceData), compressedSize)

	if options.Has(bilevel.LineIndexing) {
		require.NotNil(t, index, "line index should have been returned")
		assert.Equal(t, raster.ImageHeight(), index.Len())
	} else {
		assert.Nil(t, index, "no line index should have been returned")
	}

	decompressedBuffer := make([]byte, len(sourceData))
	decompressedWriter := bytewriter.New(decompressedBuffer)
	compressedReader := bytes.NewReader(compressedBuffer[:compressedSize])

	n, err := c.DecompressImage(compressedReader, decompressedWriter, raster, options)
	require.NoError(t, err, "unexpected error while decompressing")
	assert.EqualValues(t, len(sourceData), n, "decompressed image has wrong size")
	assert.Equal(t, sourceData, decompressedBuffer, "decompressed data is wrong")
}

func runRoundTripCompressionToBytesTest(
	t *testing.T, raster *bilevel.Raster, options bilevel.Options, originalData []byte,
) {
	compressed, err := compressImageToBytes(originalData, raster, options)
	require.NoError(t, err, "error while compressing")
	t.Logf("image compressed %d -> %d", len(originalData), len(compressed))

	decompressed, err := c.DecompressImageToBytes(
		bytes.NewReader(compressed), raster, options)
	require.NoError(t, err, "error while decompressing")

	assert.Equal(
		t, len(originalData), len(decompressed), "decompressed data length is wrong")
	assert.Equal(t, originalData, decompressed, "decompressed data is wrong")
}

func TestCompressImage__ShortInput(t *testing.T) {
	raster := bt.CreateRaster(t, 16, 4, 2)
	output := bytes.Buffer{}

	_, _, err := c.CompressImage(
		bytes.NewReader(make([]byte, 5)), &output, raster, bilevel.NoOptions)
	assert.Error(t, err)
}

func TestDecompressImage__Truncated(t *testing.T) {
	raster := bt.CreateRaster(t, 40, 6, 3)
	bitmap := bt.CreateRandomBitmap(t, raster)
	compressed, _ := bt.CompressBitmap(t, bitmap, raster, bilevel.NoOptions)

	_, err := c.DecompressImageToBytes(
		bytes.NewReader(compressed[:len(compressed)-4]), raster, bilevel.NoOptions)
	assert.ErrorIs(t, err, bilevel.ErrShortSource)
}

func TestReframeImage__AddAndStripHeaders(t *testing.T) {
	raster := bt.CreateRaster(t, 70, 11, 4)
	bitmap := bt.CreateRandomBitmap(t, raster)

	plain, _ := bt.CompressBitmap(t, bitmap, raster, bilevel.NoOptions)
	framed, _ := bt.CompressBitmap(t, bitmap, raster, bilevel.LineHeaders)

	output := bytes.Buffer{}
	n, err := c.ReframeImage(
		bytes.NewReader(plain), &output, raster, bilevel.NoOptions, bilevel.LineHeaders)
	require.NoError(t, err, "failed to add headers")
	assert.EqualValues(t, len(framed), n)
	assert.Equal(t, framed, output.Bytes(), "reframed stream should match a direct compression")

	output.Reset()
	_, err = c.ReframeImage(
		bytes.NewReader(framed), &output, raster, bilevel.LineHeaders, bilevel.NoOptions)
	require.NoError(t, err, "failed to strip headers")
	assert.Equal(t, plain, output.Bytes(), "stripping headers should restore the original")
}

func TestReframeImage__OneLineRejected(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 2, 2)
	output := bytes.Buffer{}

	_, err := c.ReframeImage(
		bytes.NewReader(bt.Stream(8, 8)), &output, raster, bilevel.OneLine, bilevel.NoOptions)
	assert.ErrorIs(t, err, bilevel.ErrOneLineMode)
}
