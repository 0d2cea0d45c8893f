package circuit

import (
	"fmt"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bn254"
	"github.com/consensys/gnark/std/math/emulated"
	recursion_plonk "github.com/consensys/gnark/std/recursion/plonk"
)

// Inner PLONK proofs over BN254 verified inside a BN254 outer circuit.
type (
	InnerProof          = recursion_plonk.Proof[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine]
	InnerWitness        = recursion_plonk.Witness[sw_bn254.ScalarField]
	BaseVerifyingKey    = recursion_plonk.BaseVerifyingKey[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine]
	CircuitVerifyingKey = recursion_plonk.CircuitVerifyingKey[sw_bn254.ScalarField, sw_bn254.G1Affine]
)

// NbVariativePublic is the number of public inputs of the variative and generic circuits.
const NbVariativePublic = MaxDataBytes*8 + 1 + DigestBits

// GenericBlake2bCircuit verifies a variative proof of any block count against a verifying key
// selected by BlockIndex from CircuitKeys, and re-exposes its public inputs.
// The keys are compiled in as constants, so the verifying key of this circuit is the same for
// every message length.
type GenericBlake2bCircuit struct {
	BaseKey     BaseVerifyingKey      `gnark:"-"`
	CircuitKeys []CircuitVerifyingKey `gnark:"-"`

	BlockIndex   frontend.Variable
	Proof        InnerProof
	InnerWitness InnerWitness

	Data   [MaxDataBytes * 8]frontend.Variable `gnark:",public"`
	Length frontend.Variable                   `gnark:",public"`
	Digest [DigestBits]frontend.Variable       `gnark:",public"`
}

// NewGenericBlake2bCircuit allocates the outer circuit for compilation. innerCcs is any of the
// padded variative constraint systems; they all share the proof and witness shape.
func NewGenericBlake2bCircuit(innerCcs constraint.ConstraintSystem, baseKey BaseVerifyingKey, circuitKeys []CircuitVerifyingKey) *GenericBlake2bCircuit {
	return &GenericBlake2bCircuit{
		BaseKey:      baseKey,
		CircuitKeys:  circuitKeys,
		Proof:        recursion_plonk.PlaceholderProof[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine](innerCcs),
		InnerWitness: recursion_plonk.PlaceholderWitness[sw_bn254.ScalarField](innerCcs),
	}
}

func (c *GenericBlake2bCircuit) Define(api frontend.API) error {
	verifier, err := recursion_plonk.NewVerifier[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine, sw_bn254.GTEl](api)
	if err != nil {
		return fmt.Errorf("new verifier: %w", err)
	}
	vk, err := verifier.SwitchVerificationKey(c.BaseKey, c.BlockIndex, c.CircuitKeys)
	if err != nil {
		return fmt.Errorf("switch verification key: %w", err)
	}
	if err := verifier.AssertProof(vk, c.Proof, c.InnerWitness); err != nil {
		return fmt.Errorf("assert proof: %w", err)
	}

	fr, err := emulated.NewField[sw_bn254.ScalarField](api)
	if err != nil {
		return fmt.Errorf("new scalar field: %w", err)
	}
	return c.exposePublicInputs(fr)
}

// exposePublicInputs asserts the inner public witness equals Data || Length || Digest.
func (c *GenericBlake2bCircuit) exposePublicInputs(fr *emulated.Field[sw_bn254.ScalarField]) error {
	if len(c.InnerWitness.Public) != NbVariativePublic {
		return fmt.Errorf("inner witness has %d public inputs, expected %d", len(c.InnerWitness.Public), NbVariativePublic)
	}

	public := make([]frontend.Variable, 0, NbVariativePublic)
	public = append(public, c.Data[:]...)
	public = append(public, c.Length)
	public = append(public, c.Digest[:]...)

	nbLimbs := len(fr.Modulus().Limbs)
	limbBuf := make([]frontend.Variable, nbLimbs)
	for i, v := range public {
		for j := range limbBuf {
			limbBuf[j] = 0
		}
		limbBuf[0] = v
		fr.AssertIsEqual(&c.InnerWitness.Public[i], fr.NewElement(limbBuf))
	}
	return nil
}

// ValueOfVerifierData converts the per-block-count verifying keys into the outer circuit constants.
// The circuit keys are padded to a power of two (and at least two) by repeating the last key.
func ValueOfVerifierData(vks []plonk.VerifyingKey) (BaseVerifyingKey, []CircuitVerifyingKey, error) {
	var base BaseVerifyingKey
	if len(vks) == 0 {
		return base, nil, fmt.Errorf("no verifying keys")
	}
	base, err := recursion_plonk.ValueOfBaseVerifyingKey[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine](vks[0])
	if err != nil {
		return base, nil, fmt.Errorf("base verifying key: %w", err)
	}

	keys := make([]CircuitVerifyingKey, 0, PaddedKeyCount(len(vks)))
	for i, vk := range vks {
		key, err := recursion_plonk.ValueOfCircuitVerifyingKey[sw_bn254.ScalarField, sw_bn254.G1Affine](vk)
		if err != nil {
			return base, nil, fmt.Errorf("circuit verifying key %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	for len(keys) < PaddedKeyCount(len(vks)) {
		keys = append(keys, keys[len(keys)-1])
	}
	return base, keys, nil
}

// PaddedKeyCount is the smallest power of two that is >= n and >= 2.
func PaddedKeyCount(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}

// GenericAssignment builds the outer witness for data from the inner proof and its public witness.
func GenericAssignment(data []byte, proof plonk.Proof, publicWitness witness.Witness) (*GenericBlake2bCircuit, error) {
	p, err := recursion_plonk.ValueOfProof[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine](proof)
	if err != nil {
		return nil, fmt.Errorf("value of proof: %w", err)
	}
	w, err := recursion_plonk.ValueOfWitness[sw_bn254.ScalarField](publicWitness)
	if err != nil {
		return nil, fmt.Errorf("value of witness: %w", err)
	}

	inner := VariativeAssignment(data)
	return &GenericBlake2bCircuit{
		BlockIndex:   inner.blockCount - 1,
		Proof:        p,
		InnerWitness: w,
		Data:         inner.Data,
		Length:       inner.Length,
		Digest:       inner.Digest,
	}, nil
}
