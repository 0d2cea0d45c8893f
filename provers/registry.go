package prover

import (
	"fmt"
	"math/big"
	"runtime"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/kysee/zk-blake2b/circuits"
	cfgtypes "github.com/kysee/zk-blake2b/provers/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

type RegistryOption func(*Registry)

func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func WithStore(s *Store) RegistryOption {
	return func(r *Registry) { r.store = s }
}

// WithMaxBlockCount limits the variative circuits to block counts 1..n.
func WithMaxBlockCount(n int) RegistryOption {
	return func(r *Registry) { r.maxBlockCount = n }
}

// Registry owns the variative and generic circuits, their keys and the per-block-count
// verifier data. Each layer is set up at most once, on first use.
type Registry struct {
	log           zerolog.Logger
	store         *Store
	maxBlockCount int
	field         *big.Int

	innerOnce sync.Once
	inner     *innerSetup
	innerErr  error

	outerOnce sync.Once
	outer     *outerSetup
	outerErr  error
}

type innerSetup struct {
	ccs []constraint.ConstraintSystem
	pk  []plonk.ProvingKey
	vk  []plonk.VerifyingKey

	baseKey     circuit.BaseVerifyingKey
	circuitKeys []circuit.CircuitVerifyingKey
	digest      [32]byte
}

type outerSetup struct {
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
	vk     groth16.VerifyingKey
	digest [32]byte
}

func NewRegistry(config *cfgtypes.Config, opts ...RegistryOption) *Registry {
	r := &Registry{
		log:           logger.Logger(),
		maxBlockCount: config.MaxBlockCount,
		field:         ecc.BN254.ScalarField(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxBlockCount <= 0 || r.maxBlockCount > circuit.MaxBlockCount {
		r.maxBlockCount = circuit.MaxBlockCount
	}
	return r
}

func (r *Registry) MaxBlockCount() int {
	return r.maxBlockCount
}

// Setup prepares both layers.
func (r *Registry) Setup() error {
	_, err := r.outerLayer()
	return err
}

// VerifierData returns the recursion keys of the variative circuits indexed by block count - 1,
// padded to a power of two by repeating the last key.
func (r *Registry) VerifierData() ([]circuit.CircuitVerifyingKey, error) {
	in, err := r.innerLayer()
	if err != nil {
		return nil, err
	}
	return in.circuitKeys, nil
}

// VerifierDataDigest is the BLAKE2b-256 of the serialized variative verifying keys.
func (r *Registry) VerifierDataDigest() ([32]byte, error) {
	in, err := r.innerLayer()
	if err != nil {
		return [32]byte{}, err
	}
	return in.digest, nil
}

func (r *Registry) OuterVerifyingKey() (groth16.VerifyingKey, error) {
	out, err := r.outerLayer()
	if err != nil {
		return nil, err
	}
	return out.vk, nil
}

// OuterDigest is the BLAKE2b-256 of the serialized generic verifying key.
func (r *Registry) OuterDigest() ([32]byte, error) {
	out, err := r.outerLayer()
	if err != nil {
		return [32]byte{}, err
	}
	return out.digest, nil
}

func (r *Registry) innerLayer() (*innerSetup, error) {
	r.innerOnce.Do(func() {
		start := time.Now()
		r.inner, r.innerErr = r.setupInner()
		if r.innerErr == nil {
			r.log.Info().Int("block_counts", r.maxBlockCount).Dur("duration", time.Since(start)).Msg("variative circuits ready")
		}
	})
	return r.inner, r.innerErr
}

func (r *Registry) outerLayer() (*outerSetup, error) {
	r.outerOnce.Do(func() {
		in, err := r.innerLayer()
		if err != nil {
			r.outerErr = err
			return
		}
		start := time.Now()
		r.outer, r.outerErr = r.setupOuter(in)
		if r.outerErr == nil {
			r.log.Info().Dur("duration", time.Since(start)).Hex("vk_digest", r.outer.digest[:]).Msg("generic circuit ready")
		}
	})
	return r.outer, r.outerErr
}

// variativeName keys artifacts by the variant and the set it was padded with.
func (r *Registry) variativeName(blockCount int) string {
	return fmt.Sprintf("VariativeBlake2bCircuit-%d-of-%d", blockCount, r.maxBlockCount)
}

func (r *Registry) setupInner() (*innerSetup, error) {
	n := r.maxBlockCount
	in := &innerSetup{
		ccs: make([]constraint.ConstraintSystem, n),
		pk:  make([]plonk.ProvingKey, n),
		vk:  make([]plonk.VerifyingKey, n),
	}

	if err := r.loadInner(in); err != nil {
		r.log.Debug().Err(err).Msg("variative artifacts not loaded, setting up")
		if err := r.buildInner(in); err != nil {
			return nil, err
		}
	}

	var err error
	in.baseKey, in.circuitKeys, err = circuit.ValueOfVerifierData(in.vk)
	if err != nil {
		return nil, fmt.Errorf("failed to convert verifier data: %w", err)
	}

	h, _ := blake2b.New256(nil)
	for i, vk := range in.vk {
		if _, err := vk.WriteTo(h); err != nil {
			return nil, fmt.Errorf("failed to hash verifying key %d: %w", i+1, err)
		}
	}
	copy(in.digest[:], h.Sum(nil))
	return in, nil
}

func (r *Registry) loadInner(in *innerSetup) error {
	if r.store == nil {
		return fmt.Errorf("no store")
	}
	for i := range in.ccs {
		name := r.variativeName(i + 1)
		in.ccs[i] = plonk.NewCS(ecc.BN254)
		in.pk[i] = plonk.NewProvingKey(ecc.BN254)
		in.vk[i] = plonk.NewVerifyingKey(ecc.BN254)
		if err := r.store.Load(name+".ccs", in.ccs[i]); err != nil {
			return err
		}
		if err := r.store.Load(name+".pk", in.pk[i]); err != nil {
			return err
		}
		if err := r.store.Load(name+".vk", in.vk[i]); err != nil {
			return err
		}
	}
	return nil
}

// buildInner compiles every variant, pads them to the largest constraint count so that they
// share one PLONK domain, and runs the setup against a single SRS.
func (r *Registry) buildInner(in *innerSetup) error {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	// Step 1: measure
	counts := make([]int, len(in.ccs))
	for i := range in.ccs {
		g.Go(func() error {
			ccs, err := frontend.Compile(r.field, scs.NewBuilder, circuit.NewVariativeBlake2bCircuit(i+1, 0))
			if err != nil {
				return fmt.Errorf("failed to compile variant %d: %w", i+1, err)
			}
			counts[i] = ccs.GetNbConstraints()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	target := 0
	for _, c := range counts {
		target = max(target, c)
	}

	// Step 2: recompile padded
	for i := range in.ccs {
		g.Go(func() error {
			start := time.Now()
			ccs, err := frontend.Compile(r.field, scs.NewBuilder, circuit.NewVariativeBlake2bCircuit(i+1, target-counts[i]))
			if err != nil {
				return fmt.Errorf("failed to compile padded variant %d: %w", i+1, err)
			}
			in.ccs[i] = ccs
			r.log.Info().
				Int("block_count", i+1).
				Int("constraints", ccs.GetNbConstraints()).
				Dur("duration", time.Since(start)).
				Msg("compiled variative circuit")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, ccs := range in.ccs {
		if ccs.GetNbConstraints() != in.ccs[0].GetNbConstraints() {
			return fmt.Errorf("variant %d has %d constraints, expected %d", i+1, ccs.GetNbConstraints(), in.ccs[0].GetNbConstraints())
		}
	}

	// Step 3: setup
	srs, srsLagrange, err := unsafekzg.NewSRS(in.ccs[0])
	if err != nil {
		return fmt.Errorf("failed to create SRS: %w", err)
	}
	for i := range in.ccs {
		g.Go(func() error {
			pk, vk, err := plonk.Setup(in.ccs[i], srs, srsLagrange)
			if err != nil {
				return fmt.Errorf("failed to setup variant %d: %w", i+1, err)
			}
			in.pk[i], in.vk[i] = pk, vk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if r.store != nil {
		for i := range in.ccs {
			name := r.variativeName(i + 1)
			if err := r.store.Save(name+".ccs", in.ccs[i]); err != nil {
				return err
			}
			if err := r.store.Save(name+".pk", in.pk[i]); err != nil {
				return err
			}
			if err := r.store.Save(name+".vk", in.vk[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// setupOuter compiles the generic circuit over the current verifier data. Its artifacts are
// named after the verifier data digest so stale keys are never picked up.
func (r *Registry) setupOuter(in *innerSetup) (*outerSetup, error) {
	name := fmt.Sprintf("GenericBlake2bCircuit-%x", in.digest[:8])
	out := &outerSetup{}

	if r.store != nil && r.store.Has(name+".ccs", name+".pk", name+".vk") {
		out.ccs = groth16.NewCS(ecc.BN254)
		out.pk = groth16.NewProvingKey(ecc.BN254)
		out.vk = groth16.NewVerifyingKey(ecc.BN254)
		if err := r.store.Load(name+".ccs", out.ccs); err != nil {
			return nil, err
		}
		if err := r.store.Load(name+".pk", out.pk); err != nil {
			return nil, err
		}
		if err := r.store.Load(name+".vk", out.vk); err != nil {
			return nil, err
		}
	} else {
		start := time.Now()
		ccs, err := frontend.Compile(r.field, r1cs.NewBuilder, circuit.NewGenericBlake2bCircuit(in.ccs[0], in.baseKey, in.circuitKeys))
		if err != nil {
			return nil, fmt.Errorf("failed to compile generic circuit: %w", err)
		}
		r.log.Info().
			Int("constraints", ccs.GetNbConstraints()).
			Int("public_inputs", ccs.GetNbPublicVariables()).
			Dur("duration", time.Since(start)).
			Msg("compiled generic circuit")

		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return nil, fmt.Errorf("failed to setup generic circuit: %w", err)
		}
		out.ccs, out.pk, out.vk = ccs, pk, vk

		if r.store != nil {
			if err := r.store.Save(name+".ccs", out.ccs); err != nil {
				return nil, err
			}
			if err := r.store.Save(name+".pk", out.pk); err != nil {
				return nil, err
			}
			if err := r.store.Save(name+".vk", out.vk); err != nil {
				return nil, err
			}
		}
	}

	h, _ := blake2b.New256(nil)
	if _, err := out.vk.WriteTo(h); err != nil {
		return nil, fmt.Errorf("failed to hash generic verifying key: %w", err)
	}
	copy(out.digest[:], h.Sum(nil))
	return out, nil
}
