package prover

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
	"github.com/kysee/zk-blake2b/circuits"
	"github.com/kysee/zk-blake2b/types"
	"github.com/rs/zerolog"
)

// FixedProof is a Groth16 proof of the fixed-length circuit for len(Data) bytes.
type FixedProof struct {
	Proof         groth16.Proof
	PublicWitness witness.Witness

	Data   []byte
	Digest [circuit.DigestBytes]byte
}

type fixedSetup struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// FixedProver proves BLAKE2b-256 digests with one fixed-length circuit per message length.
// Circuits and keys are built on first use of a length and kept afterwards.
type FixedProver struct {
	log   zerolog.Logger
	store *Store
	field *big.Int

	mu     sync.Mutex
	setups map[int]*fixedSetup
}

// NewFixedProver returns a prover persisting its keys in store, which may be nil.
func NewFixedProver(store *Store) *FixedProver {
	return &FixedProver{
		log:    logger.Logger(),
		store:  store,
		field:  ecc.BN254.ScalarField(),
		setups: make(map[int]*fixedSetup),
	}
}

func (p *FixedProver) WithLogger(l zerolog.Logger) *FixedProver {
	p.log = l
	return p
}

func (p *FixedProver) setup(nbBytes int) (*fixedSetup, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.setups[nbBytes]; ok {
		return s, nil
	}

	name := fmt.Sprintf("Blake2bCircuit-%d", nbBytes)
	s := &fixedSetup{}
	if p.store != nil && p.store.Has(name+".ccs", name+".pk", name+".vk") {
		s.ccs = groth16.NewCS(ecc.BN254)
		s.pk = groth16.NewProvingKey(ecc.BN254)
		s.vk = groth16.NewVerifyingKey(ecc.BN254)
		if err := p.store.Load(name+".ccs", s.ccs); err != nil {
			return nil, err
		}
		if err := p.store.Load(name+".pk", s.pk); err != nil {
			return nil, err
		}
		if err := p.store.Load(name+".vk", s.vk); err != nil {
			return nil, err
		}
	} else {
		start := time.Now()
		ccs, err := frontend.Compile(p.field, r1cs.NewBuilder, circuit.NewBlake2bCircuit(nbBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to compile fixed circuit: %w", err)
		}
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return nil, fmt.Errorf("failed to setup fixed circuit: %w", err)
		}
		s.ccs, s.pk, s.vk = ccs, pk, vk
		p.log.Info().
			Int("length", nbBytes).
			Int("constraints", ccs.GetNbConstraints()).
			Dur("duration", time.Since(start)).
			Msg("fixed circuit ready")

		if p.store != nil {
			if err := p.store.Save(name+".ccs", s.ccs); err != nil {
				return nil, err
			}
			if err := p.store.Save(name+".pk", s.pk); err != nil {
				return nil, err
			}
			if err := p.store.Save(name+".vk", s.vk); err != nil {
				return nil, err
			}
		}
	}

	p.setups[nbBytes] = s
	return s, nil
}

// VerifyingKey returns the key of the circuit for nbBytes-byte messages.
func (p *FixedProver) VerifyingKey(nbBytes int) (groth16.VerifyingKey, error) {
	s, err := p.setup(nbBytes)
	if err != nil {
		return nil, err
	}
	return s.vk, nil
}

func (p *FixedProver) Prove(data []byte) (*FixedProof, error) {
	s, err := p.setup(len(data))
	if err != nil {
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(circuit.Blake2bAssignment(data), p.field)
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}

	start := time.Now()
	proof, err := groth16.Prove(s.ccs, s.pk, fullWitness,
		backend.WithProverHashToFieldFunction(sha256.New()),
		backend.WithSolverOptions(solver.WithLogger(p.log)))
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	p.log.Info().Int("length", len(data)).Dur("duration", time.Since(start)).Msg("fixed proof generated")

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, fmt.Errorf("failed to create public witness: %w", err)
	}

	fp := &FixedProof{
		Proof:         proof,
		PublicWitness: publicWitness,
		Data:          append([]byte{}, data...),
		Digest:        circuit.Sum256(data),
	}
	if err := p.Verify(fp); err != nil {
		return nil, err
	}
	return fp, nil
}

// Verify checks the proof against the public inputs rebuilt from Data and Digest.
func (p *FixedProver) Verify(fp *FixedProof) error {
	s, err := p.setup(len(fp.Data))
	if err != nil {
		return err
	}

	publicWitness, err := frontend.NewWitness(&circuit.Blake2bCircuit{
		Message: circuit.BytesToBits(fp.Data),
		Digest:  circuit.DigestToBits(fp.Digest),
	}, p.field, frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to create public witness: %w", err)
	}

	err = groth16.Verify(fp.Proof, s.vk, publicWitness, backend.WithVerifierHashToFieldFunction(sha256.New()))
	if err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}

func (fp *FixedProof) Artifact() (*types.Blake2bProof, error) {
	var buf bytes.Buffer
	if _, err := fp.Proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}

	artifact := &types.Blake2bProof{
		Kind:   types.ProofKindFixed,
		Data:   fp.Data,
		Length: len(fp.Data),
		Digest: fp.Digest[:],
		Proof:  buf.Bytes(),
	}
	if _proof, ok := fp.Proof.(interface{ MarshalSolidity() []byte }); ok {
		artifact.Solidity = types.CreateProofData(_proof.MarshalSolidity())
	}
	return artifact, nil
}

func FixedProofFromArtifact(artifact *types.Blake2bProof) (*FixedProof, error) {
	if artifact.Kind != types.ProofKindFixed {
		return nil, fmt.Errorf("unexpected proof kind %q", artifact.Kind)
	}
	if len(artifact.Digest) != circuit.DigestBytes {
		return nil, fmt.Errorf("malformed digest")
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(artifact.Proof)); err != nil {
		return nil, fmt.Errorf("failed to decode proof: %w", err)
	}

	fp := &FixedProof{
		Proof: proof,
		Data:  artifact.Data,
	}
	copy(fp.Digest[:], artifact.Digest)
	return fp, nil
}
