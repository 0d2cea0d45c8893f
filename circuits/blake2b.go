package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

const (
	BlockBytes    = 128
	BlockBits     = BlockBytes * 8
	BlockWords    = 16
	DigestBytes   = 32
	DigestBits    = DigestBytes * 8
	MaxBlockCount = 8
	MaxDataBytes  = MaxBlockCount * BlockBytes

	rounds = 12

	// rotation constants of G, all rotate right
	r1 = 32
	r2 = 24
	r3 = 16
	r4 = 63
)

var iv = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b, 0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f, 0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

// sigma holds the message word schedule, one row per round. Rows 10 and 11 repeat rows 0 and 1.
var sigma = [rounds][BlockWords]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
}

// Block is one 128-byte message block.
type Block [BlockWords]Word

// IV returns the BLAKE2b initialization vector as constant words.
func IV() [8]Word {
	var out [8]Word
	for i, x := range iv {
		out[i] = ConstantWord(x)
	}
	return out
}

// BlockCount returns the number of compressed blocks for a message of nbBytes bytes.
// An empty message still occupies one block.
func BlockCount(nbBytes int) int {
	if nbBytes <= 0 {
		return 1
	}
	return (nbBytes + BlockBytes - 1) / BlockBytes
}

// initialState returns the chaining value for an unkeyed 32-byte digest.
func initialState(keyLength int) [8]Word {
	if keyLength != 0 {
		panic("keyed BLAKE2b is not implemented")
	}
	h := iv
	h[0] ^= 0x01010000 ^ uint64(keyLength)<<8 ^ DigestBytes

	var out [8]Word
	for i, x := range h {
		out[i] = ConstantWord(x)
	}
	return out
}

// Compress is the BLAKE2b compression function F.
// offset is the number of message bytes processed so far including m, final marks the last block.
func Compress(api frontend.API, ivWords [8]Word, h [8]Word, m Block, offset frontend.Variable, final bool) [8]Word {
	var v [16]Word
	copy(v[:8], h[:])
	copy(v[8:], ivWords[:])

	lo, hi := splitOffset(api, offset)
	v[12] = XorWords(api, v[12], lo)
	v[13] = XorWords(api, v[13], hi)
	if final {
		v[14] = NotWord(api, v[14])
	}

	for i := 0; i < rounds; i++ {
		s := sigma[i]

		v = Mix(api, v, 0, 4, 8, 12, m[s[0]], m[s[1]])
		v = Mix(api, v, 1, 5, 9, 13, m[s[2]], m[s[3]])
		v = Mix(api, v, 2, 6, 10, 14, m[s[4]], m[s[5]])
		v = Mix(api, v, 3, 7, 11, 15, m[s[6]], m[s[7]])

		v = Mix(api, v, 0, 5, 10, 15, m[s[8]], m[s[9]])
		v = Mix(api, v, 1, 6, 11, 12, m[s[10]], m[s[11]])
		v = Mix(api, v, 2, 7, 8, 13, m[s[12]], m[s[13]])
		v = Mix(api, v, 3, 4, 9, 14, m[s[14]], m[s[15]])
	}

	var out [8]Word
	for i := range out {
		out[i] = TripleXorWords(api, h[i], v[i], v[i+8])
	}
	return out
}

// Mix is the BLAKE2b quarter round G on positions a, b, c, d of v with message words x and y.
//
//	v[a] := v[a] + v[b] + x
//	v[d] := (v[d] ^ v[a]) >>> 32
//	v[c] := v[c] + v[d]
//	v[b] := (v[b] ^ v[c]) >>> 24
//	v[a] := v[a] + v[b] + y
//	v[d] := (v[d] ^ v[a]) >>> 16
//	v[c] := v[c] + v[d]
//	v[b] := (v[b] ^ v[c]) >>> 63
func Mix(api frontend.API, v [16]Word, a, b, c, d int, x, y Word) [16]Word {
	v[a] = TripleAddWordsWrapping(api, v[a], v[b], x)
	v[d] = RotateRightWord(XorWords(api, v[d], v[a]), r1)
	v[c] = AddWordsWrapping(api, v[c], v[d])
	v[b] = RotateRightWord(XorWords(api, v[b], v[c]), r2)

	v[a] = TripleAddWordsWrapping(api, v[a], v[b], y)
	v[d] = RotateRightWord(XorWords(api, v[d], v[a]), r3)
	v[c] = AddWordsWrapping(api, v[c], v[d])
	v[b] = RotateRightWord(XorWords(api, v[b], v[c]), r4)
	return v
}

// Blake2bFromMessageBits hashes whole bytes given as boolean wires (most significant bit first per byte).
// The finalization offset is the constant byte length of message.
func Blake2bFromMessageBits(api frontend.API, message []frontend.Variable) [DigestBits]frontend.Variable {
	return Blake2bFromMessageBitsAndLength(api, message, len(message)/8)
}

// Blake2bFromMessageBitsAndLength hashes message and finalizes with the given byte length.
//
// The calling side is responsible for controlling length: it is used as is for the offset of the
// last compression and is not checked against len(message). Callers that witness the length must
// constrain it themselves, as the variable-length circuit does.
//
// The message wires are only recomposed into words, never constrained here. Callers must
// assert them boolean.
func Blake2bFromMessageBitsAndLength(api frontend.API, message []frontend.Variable, length frontend.Variable) [DigestBits]frontend.Variable {
	if len(message)%8 != 0 {
		panic(fmt.Sprintf("message bit length %d is not a multiple of 8", len(message)))
	}

	dd := BlockCount(len(message) / 8)
	padded := make([]frontend.Variable, dd*BlockBits)
	copy(padded, message)
	for i := len(message); i < len(padded); i++ {
		padded[i] = 0
	}

	ivWords := IV()
	h := initialState(0)
	for i := 0; i < dd-1; i++ {
		h = Compress(api, ivWords, h, blockAt(padded, i), (i+1)*BlockBytes, false)
	}
	h = Compress(api, ivWords, h, blockAt(padded, dd-1), length, true)

	var digest [DigestBits]frontend.Variable
	for i := 0; i < DigestBits/WordBits; i++ {
		copy(digest[i*WordBits:(i+1)*WordBits], h[i][:])
	}
	return digest
}

func blockAt(padded []frontend.Variable, i int) Block {
	var m Block
	base := i * BlockBits
	for j := range m {
		m[j] = WordFromBits(padded[base+j*WordBits : base+(j+1)*WordBits])
	}
	return m
}
