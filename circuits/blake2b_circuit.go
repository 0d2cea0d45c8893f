package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

// Blake2bCircuit proves Digest = BLAKE2b-256(Message) for a message of fixed length.
// Public inputs are laid out as [Message bits][Digest bits].
type Blake2bCircuit struct {
	Message []frontend.Variable           `gnark:",public"`
	Digest  [DigestBits]frontend.Variable `gnark:",public"`
}

// NewBlake2bCircuit allocates the circuit for messages of nbBytes bytes.
func NewBlake2bCircuit(nbBytes int) *Blake2bCircuit {
	if nbBytes < 0 {
		panic(fmt.Sprintf("negative message length %d", nbBytes))
	}
	return &Blake2bCircuit{
		Message: make([]frontend.Variable, nbBytes*8),
	}
}

func (c *Blake2bCircuit) Define(api frontend.API) error {
	if len(c.Message)%8 != 0 {
		return fmt.Errorf("message bit length %d is not a multiple of 8", len(c.Message))
	}
	for _, b := range c.Message {
		api.AssertIsBoolean(b)
	}

	digest := Blake2bFromMessageBits(api, c.Message)
	for i := range digest {
		api.AssertIsEqual(digest[i], c.Digest[i])
	}
	return nil
}

// Blake2bAssignment returns a full witness for data with its reference digest.
func Blake2bAssignment(data []byte) *Blake2bCircuit {
	return &Blake2bCircuit{
		Message: BytesToBits(data),
		Digest:  DigestToBits(Sum256(data)),
	}
}
