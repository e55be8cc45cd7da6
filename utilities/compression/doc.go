// Package compression implements the RLE1 scanline codec for bilevel (1-bit)
// raster images.
//
// An uncompressed image is a packed bitmap: one bit per pixel, most significant
// bit first, every row padded to a byte boundary. A compressed image is a
// sequence of little-endian 16-bit words, each the length of a run of pixels.
// Runs alternate between two states. Every row starts with a run of state A
// (a clear bit) and ends with one, so a row always holds an odd number of runs.
// Either of those end runs may be zero pixels long:
//
//	pixels  0000011100000000    (width 16)
//	runs    5 3 8
//
//	pixels  1100000000000011
//	runs    0 2 12 2 0
//
// A run can't be longer than 32767 pixels. Longer runs are split into 32767
// pixel pieces joined by zero-length runs of the other state, which flip the
// state back without consuming any pixels. A run of 70000 clear pixels is
// written `32767 0 32767 0 4466`.
//
// # Line headers
//
// When line headers are enabled each row is preceded by four words:
//
//	0x5900      tag
//	count       number of run words following the header
//	row         1-based row number
//	0           reserved
//
// Headers let a reader skip a row without decoding it, and they're the only way
// to recover from legacy encoders that declare more pixels than a row holds.
//
// # Line index
//
// With line indexing enabled the codec records the absolute word offset of
// every row it processes, counted from the beginning of the first subset. See
// [LineIndex] and [RowStream].
//
// # RLE packets
//
// Other parts of a raster library keep runs per row in an in-memory container
// rather than in one long stream. [Codec.CompressSubsetFromRLE] and
// [Codec.DecompressSubsetToRLE] convert between this codec's stream and such a
// container, see [Packet].
package compression
