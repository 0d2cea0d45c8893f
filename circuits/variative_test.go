package circuit

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
)

func TestVariativeBlake2bCircuit(t *testing.T) {
	lengths := []int{0, 1, 9, 127, 128, 129, 300, MaxDataBytes - 1, MaxDataBytes}

	for _, n := range lengths {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i*7 + 3)
		}

		witness := VariativeAssignment(data)
		require.Equal(t, BlockCount(n), witness.BlockCount())

		err := gnark_test.IsSolved(NewVariativeBlake2bCircuit(BlockCount(n), 0), witness, ecc.BN254.ScalarField())
		require.NoError(t, err, "length %d", n)
		t.Logf("✓ %d bytes solved with %d blocks", n, BlockCount(n))
	}
}

func TestVariativeBlake2bCircuit_PaddingNotZero(t *testing.T) {
	data := bytes.Repeat([]byte{0x0A}, 4)

	// inside the occupied block
	witness := VariativeAssignment(data)
	witness.Data[10*8+7] = 1
	err := gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)

	// right at the length boundary
	witness = VariativeAssignment(data)
	witness.Data[4*8] = 1
	err = gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)

	// beyond the block capacity, where the hash never reads
	witness = VariativeAssignment(data)
	witness.Data[BlockBits+3] = 1
	err = gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestVariativeBlake2bCircuit_ShortLength(t *testing.T) {
	// a length that cuts into non-zero data is rejected even if the digest matches
	data := []byte{1, 2, 3, 4, 0, 0, 0, 0}
	witness := VariativeAssignment(data)
	witness.Length = 4
	witness.Digest = DigestToBits(Sum256(data[:4]))
	require.NoError(t, gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField()))

	data = []byte{1, 2, 3, 4, 5}
	witness = VariativeAssignment(data)
	witness.Length = 4
	witness.Digest = DigestToBits(Sum256(data[:4]))
	require.Error(t, gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField()))
}

func TestVariativeBlake2bCircuit_LengthOutOfRange(t *testing.T) {
	// 200 bytes need two blocks
	witness := VariativeAssignment(bytes.Repeat([]byte{0x01}, 200))
	err := gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)

	// 100 bytes fit in one block, the two-block variant must refuse them
	witness = VariativeAssignment(bytes.Repeat([]byte{0x01}, 100))
	err = gnark_test.IsSolved(NewVariativeBlake2bCircuit(2, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)

	// negative lengths wrap around the field
	witness = VariativeAssignment(nil)
	witness.Length = -1
	err = gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestVariativeBlake2bCircuit_WrongDigest(t *testing.T) {
	witness := VariativeAssignment([]byte("hello"))
	witness.Digest = DigestToBits(Sum256([]byte("hellO")))
	err := gnark_test.IsSolved(NewVariativeBlake2bCircuit(1, 0), witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestVariativeBlake2bCircuit_Misuse(t *testing.T) {
	require.Panics(t, func() { NewVariativeBlake2bCircuit(0, 0) })
	require.Panics(t, func() { NewVariativeBlake2bCircuit(MaxBlockCount+1, 0) })
	require.Panics(t, func() { NewVariativeBlake2bCircuit(1, -1) })
	require.Panics(t, func() { VariativeAssignment(make([]byte, MaxDataBytes+1)) })
}

func TestVariativeBlake2bCircuit_Padding(t *testing.T) {
	if testing.Short() {
		t.Skip("compiles the variative circuit twice")
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, NewVariativeBlake2bCircuit(1, 0))
	require.NoError(t, err)
	padded, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, NewVariativeBlake2bCircuit(1, 1000))
	require.NoError(t, err)

	require.Equal(t, ccs.GetNbConstraints()+1000, padded.GetNbConstraints())
	require.Equal(t, NbVariativePublic, padded.GetNbPublicVariables())
	t.Logf("✓ %d constraints, %d public inputs", padded.GetNbConstraints(), padded.GetNbPublicVariables())
}
