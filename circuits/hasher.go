package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/math/uints"
)

var _ hash.BinaryFixedLengthHasher = (*Hasher)(nil)

// Hasher is an in-circuit BLAKE2b-256 over bytes.
type Hasher struct {
	api  frontend.API
	uapi *uints.BinaryField[uints.U32]
	data []uints.U8
}

// NewHasher returns an empty hasher bound to api.
func NewHasher(api frontend.API) (*Hasher, error) {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return nil, err
	}
	return &Hasher{api: api, uapi: uapi}, nil
}

// Write appends data to the message. Nothing is compressed before Sum.
func (h *Hasher) Write(data []uints.U8) {
	h.data = append(h.data, data...)
}

// Reset drops everything written so far.
func (h *Hasher) Reset() {
	h.data = nil
}

// Size is the digest length in bytes.
func (h *Hasher) Size() int {
	return DigestBytes
}

// BlockSize is the compression block length in bytes.
func (h *Hasher) BlockSize() int {
	return BlockBytes
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() []uints.U8 {
	return h.FixedLengthSum(len(h.data))
}

// FixedLengthSum finalizes with length as the byte counter of the last block.
// The written bytes from length on must be zero and length must fall inside the
// last written block. As with Blake2bFromMessageBitsAndLength, the caller owns these checks.
func (h *Hasher) FixedLengthSum(length frontend.Variable) []uints.U8 {
	message := make([]frontend.Variable, 0, len(h.data)*8)
	for _, b := range h.data {
		le := bits.ToBinary(h.api, b.Val, bits.WithNbDigits(8))
		for j := 7; j >= 0; j-- {
			message = append(message, le[j])
		}
	}

	digest := Blake2bFromMessageBitsAndLength(h.api, message, length)

	out := make([]uints.U8, DigestBytes)
	for i := range out {
		le := make([]frontend.Variable, 8)
		for j := 0; j < 8; j++ {
			le[j] = digest[i*8+7-j]
		}
		out[i] = h.uapi.ByteValueOf(bits.FromBinary(h.api, le, bits.WithUnconstrainedInputs()))
	}
	return out
}
