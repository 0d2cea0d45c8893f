package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

type hasherCircuit struct {
	In       []uints.U8
	Expected [DigestBytes]uints.U8
}

func (c *hasherCircuit) Define(api frontend.API) error {
	h, err := NewHasher(api)
	if err != nil {
		return err
	}
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return err
	}

	// split writes must not change the digest
	half := len(c.In) / 2
	h.Write(c.In[:half])
	h.Write(c.In[half:])
	res := h.Sum()
	if len(res) != h.Size() {
		panic("unexpected digest size")
	}
	for i := range c.Expected {
		uapi.ByteAssertEq(c.Expected[i], res[i])
	}
	return nil
}

func TestHasher(t *testing.T) {
	for _, msg := range [][]byte{
		[]byte("abc"),
		{1, 70, 4, 100, 28, 130, 12, 120},
		make([]byte, 200),
	} {
		digest := blake2b.Sum256(msg)
		witness := &hasherCircuit{In: uints.NewU8Array(msg)}
		copy(witness.Expected[:], uints.NewU8Array(digest[:]))

		circuit := &hasherCircuit{In: make([]uints.U8, len(msg))}
		err := gnark_test.IsSolved(circuit, witness, ecc.BN254.ScalarField())
		require.NoError(t, err, "message %x", msg)
	}
}

func TestHasher_Sizes(t *testing.T) {
	h := &Hasher{}
	require.Equal(t, 32, h.Size())
	require.Equal(t, 128, h.BlockSize())

	h.Write(uints.NewU8Array([]byte{1, 2, 3}))
	h.Reset()
	require.Empty(t, h.data)
}
