package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
)

// VariativeBlake2bCircuit proves the digest of up to blockCount*128 bytes of Data whose byte
// length is the witnessed Length. One variant exists per block count, all sharing the same
// public input layout [Data bits][Length][Digest bits].
type VariativeBlake2bCircuit struct {
	Data   [MaxDataBytes * 8]frontend.Variable `gnark:",public"`
	Length frontend.Variable                   `gnark:",public"`
	Digest [DigestBits]frontend.Variable       `gnark:",public"`

	blockCount int
	padding    int
}

// NewVariativeBlake2bCircuit returns the variant for blockCount blocks, extended by padding
// no-op gates so that every variant can be brought to the same constraint count.
func NewVariativeBlake2bCircuit(blockCount, padding int) *VariativeBlake2bCircuit {
	if blockCount < 1 || blockCount > MaxBlockCount {
		panic(fmt.Sprintf("block count must be in [1, %d], got %d", MaxBlockCount, blockCount))
	}
	if padding < 0 {
		panic(fmt.Sprintf("negative padding %d", padding))
	}
	return &VariativeBlake2bCircuit{
		blockCount: blockCount,
		padding:    padding,
	}
}

func (c *VariativeBlake2bCircuit) BlockCount() int {
	return c.blockCount
}

func (c *VariativeBlake2bCircuit) Define(api frontend.API) error {
	if c.blockCount < 1 || c.blockCount > MaxBlockCount {
		return fmt.Errorf("block count %d out of range", c.blockCount)
	}
	capacity := c.blockCount * BlockBytes

	for _, b := range c.Data {
		api.AssertIsBoolean(b)
	}

	c.assertLengthRange(api, capacity)
	c.assertZeroPadding(api, capacity)

	digest := Blake2bFromMessageBitsAndLength(api, c.Data[:capacity*8], c.Length)
	for i := range digest {
		api.AssertIsEqual(digest[i], c.Digest[i])
	}

	c.pad(api)
	return nil
}

// assertLengthRange binds Length to the blocks this variant compresses.
// A single block accepts [0, 128], otherwise Length must lie in ((bc-1)*128, bc*128].
func (c *VariativeBlake2bCircuit) assertLengthRange(api frontend.API, capacity int) {
	tail := api.Sub(capacity, c.Length)
	if c.blockCount == 1 {
		bits.ToBinary(api, c.Length, bits.WithNbDigits(8))
		bits.ToBinary(api, tail, bits.WithNbDigits(8))
		return
	}
	bits.ToBinary(api, tail, bits.WithNbDigits(7))
}

// assertZeroPadding forces every byte at or after Length to zero.
func (c *VariativeBlake2bCircuit) assertZeroPadding(api frontend.API, capacity int) {
	var passed frontend.Variable = 0
	for i := 0; i < capacity; i++ {
		passed = api.Or(passed, api.IsZero(api.Sub(c.Length, i)))
		for j := 0; j < 8; j++ {
			api.AssertIsEqual(api.Mul(passed, c.Data[i*8+j]), 0)
		}
	}
	// bytes past the capacity never reach the hash
	for i := capacity * 8; i < len(c.Data); i++ {
		api.AssertIsEqual(c.Data[i], 0)
	}
}

func (c *VariativeBlake2bCircuit) pad(api frontend.API) {
	acc := c.Length
	for i := 0; i < c.padding; i++ {
		acc = api.Mul(acc, c.Length)
	}
}

// VariativeAssignment returns the witness for data, to be proven against the variant of
// BlockCount(len(data)) blocks. It panics if data exceeds MaxDataBytes.
func VariativeAssignment(data []byte) *VariativeBlake2bCircuit {
	a := &VariativeBlake2bCircuit{
		Length:     len(data),
		Digest:     DigestToBits(Sum256(data)),
		blockCount: BlockCount(len(data)),
	}
	copy(a.Data[:], padData(data))
	return a
}
