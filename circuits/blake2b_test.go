package circuit

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnark_test "github.com/consensys/gnark/test"
	gethblake2b "github.com/ethereum/go-ethereum/crypto/blake2b"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

type compressCircuit struct {
	H      [8]Word
	M      Block
	Offset frontend.Variable
	Out    [8]Word

	final bool
}

func (c *compressCircuit) Define(api frontend.API) error {
	for i := range c.M {
		for _, b := range c.M[i] {
			api.AssertIsBoolean(b)
		}
	}
	for i := range c.H {
		for _, b := range c.H[i] {
			api.AssertIsBoolean(b)
		}
	}
	out := Compress(api, IV(), c.H, c.M, c.Offset, c.final)
	for i := range out {
		for j := range out[i] {
			api.AssertIsEqual(out[i][j], c.Out[i][j])
		}
	}
	return nil
}

type messageLengthCircuit struct {
	Message []frontend.Variable
	Length  frontend.Variable
	Digest  [DigestBits]frontend.Variable
}

func (c *messageLengthCircuit) Define(api frontend.API) error {
	digest := Blake2bFromMessageBitsAndLength(api, c.Message, c.Length)
	for i := range digest {
		api.AssertIsEqual(digest[i], c.Digest[i])
	}
	return nil
}

func TestCompress(t *testing.T) {
	var h [8]uint64
	for i := range h {
		h[i] = iv[i] * uint64(i+3)
	}
	var m [16]uint64
	for i := range m {
		m[i] = 0x0101010101010101 * uint64(i+1)
	}

	for _, final := range []bool{false, true} {
		offset := uint64(256)
		out := h
		gethblake2b.F(&out, m, [2]uint64{offset, 0}, final, 12)

		witness := &compressCircuit{Offset: offset, final: final}
		for i := range h {
			witness.H[i] = ConstantWord(h[i])
			witness.Out[i] = ConstantWord(out[i])
		}
		for i := range m {
			witness.M[i] = ConstantWord(m[i])
		}

		err := gnark_test.IsSolved(&compressCircuit{final: final}, witness, ecc.BN254.ScalarField())
		require.NoError(t, err, "final=%v", final)
	}
}

func TestBlake2bCircuit(t *testing.T) {
	cases := map[string][]byte{
		"empty":           {},
		"one block 0x0A":  bytes.Repeat([]byte{0x0A}, 128),
		"four bytes 0x0A": bytes.Repeat([]byte{0x0A}, 4),
		"eight bytes":     {1, 70, 4, 100, 28, 130, 12, 120},
		"two blocks":      bytes.Repeat([]byte{0xA5}, 129),
		"unaligned":       []byte("The quick brown fox jumps over the lazy dog"),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			witness := Blake2bAssignment(data)
			expected := blake2b.Sum256(data)
			require.Equal(t, DigestToBits(expected), witness.Digest)

			err := gnark_test.IsSolved(NewBlake2bCircuit(len(data)), witness, ecc.BN254.ScalarField())
			require.NoError(t, err)
			t.Logf("✓ %d bytes -> %x", len(data), expected)
		})
	}
}

func TestBlake2bCircuit_WrongDigest(t *testing.T) {
	data := bytes.Repeat([]byte{0x0A}, 4)
	witness := Blake2bAssignment(data)
	witness.Digest = DigestToBits(blake2b.Sum256(bytes.Repeat([]byte{0x0A}, 5)))

	err := gnark_test.IsSolved(NewBlake2bCircuit(len(data)), witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestBlake2bFromMessageBitsAndLength(t *testing.T) {
	// the finalization counter is taken from Length, so trailing zero bytes past Length
	// produce the digest of the shorter message
	data := []byte{1, 2, 3, 4}
	padded := append(append([]byte{}, data...), 0, 0, 0, 0)

	witness := &messageLengthCircuit{
		Message: BytesToBits(padded),
		Length:  len(data),
		Digest:  DigestToBits(blake2b.Sum256(data)),
	}
	circuit := &messageLengthCircuit{Message: make([]frontend.Variable, len(padded)*8)}
	require.NoError(t, gnark_test.IsSolved(circuit, witness, ecc.BN254.ScalarField()))

	witness.Length = len(padded)
	require.Error(t, gnark_test.IsSolved(circuit, witness, ecc.BN254.ScalarField()))
}

func TestBlake2bMisuse(t *testing.T) {
	require.Panics(t, func() { initialState(16) })

	odd := &messageLengthCircuit{Message: make([]frontend.Variable, 12)}
	witness := &messageLengthCircuit{Message: make([]frontend.Variable, 12), Length: 1}
	for i := range witness.Message {
		witness.Message[i] = 0
	}
	for i := range witness.Digest {
		witness.Digest[i] = 0
	}
	requireRejected(t, func() error {
		return gnark_test.IsSolved(odd, witness, ecc.BN254.ScalarField())
	})

	requireRejected(t, func() error {
		_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &Blake2bCircuit{Message: make([]frontend.Variable, 9)})
		return err
	})
}

func TestBlockCount(t *testing.T) {
	require.Equal(t, 1, BlockCount(0))
	require.Equal(t, 1, BlockCount(1))
	require.Equal(t, 1, BlockCount(128))
	require.Equal(t, 2, BlockCount(129))
	require.Equal(t, MaxBlockCount, BlockCount(MaxDataBytes))
}

func TestInitialState(t *testing.T) {
	h := initialState(0)
	expected := uint64(0x6a09e667f3bcc908) ^ 0x01010020
	require.Equal(t, ConstantWord(expected), h[0])

	// word wires are the little-endian bytes of the value
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], expected)
	require.Equal(t, BytesToBits(buf[:]), toUint8s(h[0].Bits()))
}

func TestBlake2bCircuit_NonBooleanMessage(t *testing.T) {
	// 2 at the lowest bit of byte 0 adds like 0 with a carry into the next bit, as 0x02 would
	witness := Blake2bAssignment([]byte{0x02, 0x00})
	witness.Message[6] = 0
	witness.Message[7] = 2
	err := gnark_test.IsSolved(NewBlake2bCircuit(2), witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}
