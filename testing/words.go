package testing

import "encoding/binary"

// Words decodes a compressed stream into its little-endian words. A trailing odd
// byte is ignored.
func Words(stream []byte) []uint16 {
	words := make([]uint16, len(stream)/2)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(stream[2*i:])
	}
	return words
}

// Stream encodes words as a little-endian compressed stream.
func Stream(words ...uint16) []byte {
	stream := make([]byte, len(words)*2)
	for i, word := range words {
		binary.LittleEndian.PutUint16(stream[2*i:], word)
	}
	return stream
}
