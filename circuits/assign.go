package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"golang.org/x/crypto/blake2b"
)

// BytesToBits expands data into boolean witness values, most significant bit first per byte.
func BytesToBits(data []byte) []frontend.Variable {
	out := make([]frontend.Variable, 0, len(data)*8)
	for _, b := range data {
		for j := 7; j >= 0; j-- {
			out = append(out, (b>>j)&1)
		}
	}
	return out
}

// DigestToBits expands a 32-byte digest into the digest wire layout.
func DigestToBits(digest [DigestBytes]byte) [DigestBits]frontend.Variable {
	var out [DigestBits]frontend.Variable
	copy(out[:], BytesToBits(digest[:]))
	return out
}

// BitsToBytes packs solved boolean values back into bytes. Values must be 0 or 1.
func BitsToBytes(bits []uint8) []byte {
	if len(bits)%8 != 0 {
		panic(fmt.Sprintf("bit length %d is not a multiple of 8", len(bits)))
	}
	out := make([]byte, len(bits)/8)
	for i, bit := range bits {
		out[i/8] |= (bit & 1) << (7 - i%8)
	}
	return out
}

// Sum256 is the native digest matching the circuits.
func Sum256(data []byte) [DigestBytes]byte {
	return blake2b.Sum256(data)
}

func padData(data []byte) []frontend.Variable {
	if len(data) > MaxDataBytes {
		panic(fmt.Sprintf("data of %d bytes exceeds %d bytes", len(data), MaxDataBytes))
	}
	padded := make([]byte, MaxDataBytes)
	copy(padded, data)
	return BytesToBits(padded)
}
