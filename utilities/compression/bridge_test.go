package compression_test

import (
	"testing"

	"github.com/dargueta/bilevel"
	bt "github.com/dargueta/bilevel/testing"
	c "github.com/dargueta/bilevel/utilities/compression"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressPacket(
	t *testing.T, packet c.PacketView, options bilevel.Options,
) []uint16 {
	raster := bt.CreateRaster(t, packet.Width(), packet.Height(), packet.Height())
	codec := c.NewCodec(raster, options)
	dst := make([]byte, c.MaxCompressedSize(packet.Width(), packet.Height(), true))

	n, err := codec.CompressSubsetFromRLE(packet, dst)
	require.NoError(t, err)
	return bt.Words(dst[:n])
}

func TestCompressSubsetFromRLE__Rechunks(t *testing.T) {
	testCases := []struct {
		Name     string
		Width    int
		Runs     []uint16
		Expected []uint16
	}{
		{"canonical", 8, []uint16{2, 2, 4}, []uint16{2, 2, 4}},
		{"split_clear_run", 20, []uint16{5, 0, 5, 10, 0}, []uint16{10, 10, 0}},
		{"split_set_run", 8, []uint16{1, 3, 0, 4, 0}, []uint16{1, 7, 0}},
		{"leading_set", 8, []uint16{0, 8, 0}, []uint16{0, 8, 0}},
		{"long_run", 70000, []uint16{40000, 0, 30000}, []uint16{32767, 0, 32767, 0, 4466}},
	}

	for _, tc := range testCases {
		t.Run(
			tc.Name,
			func(t *testing.T) {
				packet := c.NewPacketView(tc.Width, [][]uint16{tc.Runs})
				words := compressPacket(t, packet, bilevel.NoOptions)
				assert.Equal(t, tc.Expected, words)
				assert.Equal(
					t,
					bt.RunsString(tc.Runs, tc.Width),
					bt.RunsString(words, tc.Width),
					"pixels changed",
				)
			},
		)
	}
}

func TestCompressSubsetFromRLE__Headers(t *testing.T) {
	packet := c.NewPacketView(8, [][]uint16{{2, 2, 4}, {0, 8, 0}})
	words := compressPacket(t, packet, bilevel.LineHeaders)
	assert.Equal(
		t,
		[]uint16{0x5900, 3, 1, 0, 2, 2, 4, 0x5900, 3, 2, 0, 0, 8, 0},
		words,
	)
}

func TestCompressSubsetFromRLE__BadRows(t *testing.T) {
	testCases := []struct {
		Name     string
		Runs     []uint16
		Expected error
	}{
		{"underflow", []uint16{2, 2, 3}, bilevel.ErrRunUnderflow},
		{"overflow", []uint16{2, 2, 5}, bilevel.ErrRunOverflow},
	}

	for _, tc := range testCases {
		t.Run(
			tc.Name,
			func(t *testing.T) {
				raster := bt.CreateRaster(t, 8, 1, 1)
				codec := c.NewCodec(raster, bilevel.NoOptions)
				packet := c.NewPacketView(8, [][]uint16{tc.Runs})

				_, err := codec.CompressSubsetFromRLE(packet, make([]byte, 64))
				assert.ErrorIs(t, err, tc.Expected)
				assert.Equal(t, 0, raster.SubsetRow())
			},
		)
	}
}

func TestCompressSubsetFromRLE__WidthMismatch(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 1, 1)
	codec := c.NewCodec(raster, bilevel.NoOptions)

	_, err := codec.CompressSubsetFromRLE(
		c.NewPacketView(9, [][]uint16{{9}}), make([]byte, 64))
	assert.ErrorIs(t, err, bilevel.ErrWidthMismatch)
}

func TestCompressSubsetFromRLE__TooFewRows(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 3, 3)
	codec := c.NewCodec(raster, bilevel.NoOptions)

	_, err := codec.CompressSubsetFromRLE(
		c.NewPacketView(8, [][]uint16{{8}, {8}}), make([]byte, 64))
	assert.ErrorIs(t, err, bilevel.ErrInvalidGeometry)
}

func TestBridge__OneLineMode(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 1, 1)
	codec := c.NewCodec(raster, bilevel.OneLine)

	_, err := codec.CompressSubsetFromRLE(
		c.NewPacketView(8, [][]uint16{{8}}), make([]byte, 64))
	assert.ErrorIs(t, err, bilevel.ErrOneLineMode)

	_, err = codec.DecompressSubsetToRLE(bt.Stream(8), c.NewPacket(8, 1))
	assert.ErrorIs(t, err, bilevel.ErrOneLineMode)
	assert.Equal(t, c.Idle, codec.Mode())
}

func TestDecompressSubsetToRLE__MatchesBitmap(t *testing.T) {
	for _, options := range []bilevel.Options{bilevel.NoOptions, bilevel.LineHeaders} {
		raster := bt.CreateRaster(t, 45, 9, 9)
		bitmap := bt.CreateRandomBitmap(t, raster)
		compressed, _ := bt.CompressBitmap(t, bitmap, raster, options)

		codec := c.NewCodec(raster, options)
		packet := c.NewPacket(45, 9)
		n, err := codec.DecompressSubsetToRLE(compressed, packet)
		require.NoError(t, err)
		assert.Equal(t, len(compressed), n)
		assert.NoError(t, packet.Validate())

		stride := raster.Stride()
		for row := 0; row < 9; row++ {
			assert.Equalf(
				t,
				bt.RowString(bitmap[row*stride:], 45),
				bt.RunsString(packet.Row(row), 45),
				"row %d differs",
				row,
			)
		}
	}
}

// Compressing a packet and decompressing it again must describe the same pixels.
func TestBridge__RoundTrip(t *testing.T) {
	rows := [][]uint16{
		{5, 0, 5, 10, 0},
		{0, 20, 0},
		{20},
		{1, 1, 1, 1, 16},
	}
	compressed := bt.Stream(compressPacket(t, c.NewPacketView(20, rows), bilevel.NoOptions)...)

	raster := bt.CreateRaster(t, 20, len(rows), len(rows))
	codec := c.NewCodec(raster, bilevel.NoOptions)
	packet := c.NewPacket(20, len(rows))
	n, err := codec.DecompressSubsetToRLE(compressed, packet)
	require.NoError(t, err)
	assert.Equal(t, len(compressed), n)

	for i, runs := range rows {
		assert.Equalf(
			t, bt.RunsString(runs, 20), bt.RunsString(packet.Row(i), 20), "row %d differs", i)
	}
}

func TestDecompressSubsetToRLE__Overshoot(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 3, 3)
	codec := c.NewCodec(raster, bilevel.NoOptions)
	packet := c.NewPacket(8, 3)

	src := bt.Stream(13, 3, 10, 2, 2, 4)
	n, err := codec.DecompressSubsetToRLE(src, packet)
	require.NoError(t, err)
	assert.Equal(t, len(src), n)

	assert.Equal(t, []uint16{8}, packet.Row(0))
	assert.Equal(t, 2, packet.RowSize(0))
	assert.Equal(t, []uint16{3, 5, 0}, packet.Row(1))
	assert.Equal(t, 6, packet.RowSize(1))
	assert.Equal(t, []uint16{2, 2, 4}, packet.Row(2))
	assert.NoError(t, packet.Validate())
}

func TestDecompressSubsetToRLE__ParityFixed(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 2, 2)
	codec := c.NewCodec(raster, bilevel.NoOptions)
	packet := c.NewPacket(8, 2)

	// The first row's terminating zero-length run is missing.
	n, err := codec.DecompressSubsetToRLE(bt.Stream(6, 2, 8), packet)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []uint16{6, 2, 0}, packet.Row(0))
	assert.Equal(t, []uint16{8}, packet.Row(1))
}

func TestDecompressSubsetToRLE__GrowsRows(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 1, 1)
	codec := c.NewCodec(raster, bilevel.NoOptions)
	packet := c.NewPacket(8, 1)
	assert.Equal(t, 0, packet.Capacity(0))

	_, err := codec.DecompressSubsetToRLE(bt.Stream(0, 1, 1, 1, 1, 1, 1, 1, 1), packet)
	require.NoError(t, err)
	assert.Equal(t, 18, packet.RowSize(0))
	assert.GreaterOrEqual(t, packet.Capacity(0), 9)
}

func TestDecompressSubsetToRLE__Errors(t *testing.T) {
	raster := bt.CreateRaster(t, 8, 1, 1)

	codec := c.NewCodec(raster, bilevel.NoOptions)
	_, err := codec.DecompressSubsetToRLE(bt.Stream(2, 2), c.NewPacket(8, 1))
	assert.ErrorIs(t, err, bilevel.ErrShortSource)

	codec = c.NewCodec(raster, bilevel.LineHeaders)
	_, err = codec.DecompressSubsetToRLE(bt.Stream(0x5900, 2, 1, 0, 2, 2, 4), c.NewPacket(8, 1))
	assert.ErrorIs(t, err, bilevel.ErrHeaderWordCount)

	_, err = codec.DecompressSubsetToRLE(bt.Stream(8), c.NewPacket(7, 1))
	assert.ErrorIs(t, err, bilevel.ErrWidthMismatch)
	assert.Equal(t, 0, raster.SubsetRow())
}

func TestPacket__ReserveAndSetRow(t *testing.T) {
	packet := c.NewPacket(8, 2)
	packet.Reserve(0, 16)
	assert.GreaterOrEqual(t, packet.Capacity(0), 16)
	assert.Empty(t, packet.Row(0))

	runs := []uint16{2, 2, 4}
	packet.SetRow(1, runs)
	runs[0] = 7
	assert.Equal(t, []uint16{2, 2, 4}, packet.Row(1), "SetRow should copy its input")
	assert.Equal(t, 6, packet.RowSize(1))
}

func TestValidatePacket(t *testing.T) {
	valid := c.NewPacketView(8, [][]uint16{{8}, {0, 8, 0}, {2, 2, 4}})
	assert.NoError(t, c.ValidatePacket(valid))

	invalid := c.NewPacketView(8, [][]uint16{{8}, {4, 5}, {2, 2}, {1, 1, 1}})
	err := c.ValidatePacket(invalid)
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "expected a multierror, got %T", err)
	assert.Len(t, merr.Errors, 5)
	assert.ErrorIs(t, err, bilevel.ErrRunOverflow)
	assert.ErrorIs(t, err, bilevel.ErrRunUnderflow)
	assert.ErrorIs(t, err, bilevel.ErrRunParity)
}
