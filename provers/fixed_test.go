package prover

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/kysee/zk-blake2b/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestFixedProver(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup of the fixed circuit")
	}

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	prover := NewFixedProver(store).WithLogger(gnarkLogger)

	data := bytes.Repeat([]byte{0x0A}, 4)
	proof, err := prover.Prove(data)
	require.NoError(t, err, "Proof generation failed")
	require.Equal(t, blake2b.Sum256(data), proof.Digest)
	require.True(t, store.Has("Blake2bCircuit-4.ccs", "Blake2bCircuit-4.pk", "Blake2bCircuit-4.vk"))

	// round trip through the JSON artifact
	artifact, err := proof.Artifact()
	require.NoError(t, err)
	require.NotNil(t, artifact.Solidity)
	jsonBlob, err := json.MarshalIndent(artifact, "", "  ")
	require.NoError(t, err)

	var decoded types.Blake2bProof
	require.NoError(t, json.Unmarshal(jsonBlob, &decoded))
	restored, err := FixedProofFromArtifact(&decoded)
	require.NoError(t, err)
	require.NoError(t, prover.Verify(restored))
	t.Logf("✓ Proof verification SUCCEEDED!")

	// keys come back from the store in a fresh prover
	reloaded := NewFixedProver(store).WithLogger(gnarkLogger)
	require.NoError(t, reloaded.Verify(restored))

	// a different digest must not verify
	restored.Digest[0] ^= 1
	require.Error(t, prover.Verify(restored))

	// same length, different message
	restored.Digest = blake2b.Sum256([]byte{1, 2, 3, 4})
	restored.Data = []byte{1, 2, 3, 4}
	require.Error(t, prover.Verify(restored))
}

func TestFixedProofFromArtifact_Invalid(t *testing.T) {
	_, err := FixedProofFromArtifact(&types.Blake2bProof{Kind: types.ProofKindGeneric})
	require.Error(t, err)
	_, err = FixedProofFromArtifact(&types.Blake2bProof{Kind: types.ProofKindFixed, Digest: []byte{1}})
	require.Error(t, err)
}
