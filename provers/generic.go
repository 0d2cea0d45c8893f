package prover

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	recursion_plonk "github.com/consensys/gnark/std/recursion/plonk"
	"github.com/kysee/zk-blake2b/circuits"
	"github.com/kysee/zk-blake2b/types"
)

// GenericProof is a Groth16 proof of the generic circuit. Its public inputs are
// Data (padded to MaxDataBytes) || Length || Digest.
type GenericProof struct {
	Proof         groth16.Proof
	PublicWitness witness.Witness

	Data   []byte
	Length int
	Digest [circuit.DigestBytes]byte

	// VerifyingKeyDigest identifies the generic verifying key, the same for every length
	VerifyingKeyDigest [32]byte
}

// ProveVariative proves data with the variative circuit of its block count and checks the
// proof natively. It returns the proof with its public witness.
func (r *Registry) ProveVariative(data []byte) (plonk.Proof, witness.Witness, error) {
	if len(data) > circuit.MaxDataBytes {
		panic(fmt.Sprintf("data of %d bytes exceeds %d bytes", len(data), circuit.MaxDataBytes))
	}
	blockCount := circuit.BlockCount(len(data))
	if blockCount > r.maxBlockCount {
		return nil, nil, fmt.Errorf("data of %d bytes needs %d blocks, registry supports %d", len(data), blockCount, r.maxBlockCount)
	}

	in, err := r.innerLayer()
	if err != nil {
		return nil, nil, err
	}
	idx := blockCount - 1

	fullWitness, err := frontend.NewWitness(circuit.VariativeAssignment(data), r.field)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create witness: %w", err)
	}

	start := time.Now()
	proof, err := plonk.Prove(in.ccs[idx], in.pk[idx], fullWitness,
		recursion_plonk.GetNativeProverOptions(r.field, r.field),
		backend.WithSolverOptions(solver.WithLogger(r.log)))
	if err != nil {
		return nil, nil, fmt.Errorf("variative proof generation failed: %w", err)
	}
	r.log.Debug().Int("block_count", blockCount).Dur("duration", time.Since(start)).Msg("variative proof generated")

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create public witness: %w", err)
	}
	err = plonk.Verify(proof, in.vk[idx], publicWitness, recursion_plonk.GetNativeVerifierOptions(r.field, r.field))
	if err != nil {
		return nil, nil, fmt.Errorf("variative proof verification failed: %w", err)
	}
	return proof, publicWitness, nil
}

// ProveGeneric proves data with the variative circuit of its block count and wraps the proof
// into the generic circuit. It panics if data exceeds MaxDataBytes.
func (r *Registry) ProveGeneric(data []byte) (*GenericProof, error) {
	out, err := r.outerLayer()
	if err != nil {
		return nil, err
	}

	innerProof, innerWitness, err := r.ProveVariative(data)
	if err != nil {
		return nil, err
	}

	assignment, err := circuit.GenericAssignment(data, innerProof, innerWitness)
	if err != nil {
		return nil, err
	}
	fullWitness, err := frontend.NewWitness(assignment, r.field)
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}

	start := time.Now()
	proof, err := groth16.Prove(out.ccs, out.pk, fullWitness,
		backend.WithProverHashToFieldFunction(sha256.New()),
		backend.WithSolverOptions(solver.WithLogger(r.log)))
	if err != nil {
		return nil, fmt.Errorf("generic proof generation failed: %w", err)
	}
	r.log.Info().Int("length", len(data)).Dur("duration", time.Since(start)).Msg("generic proof generated")

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, fmt.Errorf("failed to create public witness: %w", err)
	}

	gp := &GenericProof{
		Proof:              proof,
		PublicWitness:      publicWitness,
		Data:               append([]byte{}, data...),
		Length:             len(data),
		Digest:             circuit.Sum256(data),
		VerifyingKeyDigest: out.digest,
	}
	if err := r.VerifyGeneric(gp); err != nil {
		return nil, err
	}
	return gp, nil
}

// VerifyGeneric checks the proof against the generic verifying key. The public witness is
// rebuilt from Data so that the proof is bound to the claimed message and digest.
func (r *Registry) VerifyGeneric(gp *GenericProof) error {
	// Data is zero padded into the public inputs, so trailing zeros are only told apart by Length
	if gp.Length != len(gp.Data) {
		return fmt.Errorf("length %d does not match %d data bytes", gp.Length, len(gp.Data))
	}
	out, err := r.outerLayer()
	if err != nil {
		return err
	}
	if gp.VerifyingKeyDigest != out.digest {
		return fmt.Errorf("proof was made for verifying key %x, have %x", gp.VerifyingKeyDigest, out.digest)
	}
	if len(gp.Data) > circuit.MaxDataBytes {
		return fmt.Errorf("data of %d bytes exceeds %d bytes", len(gp.Data), circuit.MaxDataBytes)
	}

	inner := circuit.VariativeAssignment(gp.Data)
	publicWitness, err := frontend.NewWitness(&circuit.GenericBlake2bCircuit{
		Data:   inner.Data,
		Length: gp.Length,
		Digest: circuit.DigestToBits(gp.Digest),
	}, r.field, frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to create public witness: %w", err)
	}

	err = groth16.Verify(gp.Proof, out.vk, publicWitness, backend.WithVerifierHashToFieldFunction(sha256.New()))
	if err != nil {
		return fmt.Errorf("generic proof verification failed: %w", err)
	}
	return nil
}

// Artifact encodes the proof as a JSON-ready types.Blake2bProof.
func (gp *GenericProof) Artifact() (*types.Blake2bProof, error) {
	var buf bytes.Buffer
	if _, err := gp.Proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}

	artifact := &types.Blake2bProof{
		Kind:               types.ProofKindGeneric,
		Data:               gp.Data,
		Length:             gp.Length,
		Digest:             gp.Digest[:],
		VerifyingKeyDigest: gp.VerifyingKeyDigest[:],
		Proof:              buf.Bytes(),
	}
	if _proof, ok := gp.Proof.(interface{ MarshalSolidity() []byte }); ok {
		artifact.Solidity = types.CreateProofData(_proof.MarshalSolidity())
	}
	return artifact, nil
}

// GenericProofFromArtifact decodes an artifact written by Artifact.
func GenericProofFromArtifact(artifact *types.Blake2bProof) (*GenericProof, error) {
	if artifact.Kind != types.ProofKindGeneric {
		return nil, fmt.Errorf("unexpected proof kind %q", artifact.Kind)
	}
	if len(artifact.Digest) != circuit.DigestBytes || len(artifact.VerifyingKeyDigest) != 32 {
		return nil, fmt.Errorf("malformed digests")
	}
	if artifact.Length != len(artifact.Data) {
		return nil, fmt.Errorf("length %d does not match %d data bytes", artifact.Length, len(artifact.Data))
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(artifact.Proof)); err != nil {
		return nil, fmt.Errorf("failed to decode proof: %w", err)
	}

	gp := &GenericProof{
		Proof:  proof,
		Data:   artifact.Data,
		Length: artifact.Length,
	}
	copy(gp.Digest[:], artifact.Digest)
	copy(gp.VerifyingKeyDigest[:], artifact.VerifyingKeyDigest)
	return gp, nil
}
