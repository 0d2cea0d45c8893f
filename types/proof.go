package types

import (
	bn254_fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	ProofKindFixed   = "fixed"
	ProofKindGeneric = "generic"
)

// Blake2bProof is the JSON artifact of a fixed-length or generic BLAKE2b proof.
type Blake2bProof struct {
	Kind   string   `json:"kind"`
	Data   HexBytes `json:"data"`
	Length int      `json:"length"`
	Digest HexBytes `json:"digest"`

	// VerifyingKeyDigest is the BLAKE2b-256 of the outer verifying key, the same for every length
	VerifyingKeyDigest HexBytes `json:"verifyingKeyDigest,omitempty"`

	// Proof is the gnark binary encoding, Solidity the calldata split
	Proof    HexBytes   `json:"proof"`
	Solidity *ProofData `json:"solidity,omitempty"`
}

type ProofData struct {
	Proof         []HexBytes `json:"proof"`
	Commitments   []HexBytes `json:"commitments"`
	CommitmentPok []HexBytes `json:"commitmentPok"`
}

// CreateProofData splits a Groth16 BN254 Solidity proof into field elements:
// A, B, C first, then after a 4-byte count the commitments followed by their proof of knowledge.
func CreateProofData(proofSolidity []byte) *ProofData {
	// A, B, C
	proof := make([]HexBytes, 8)
	for i := 0; i < len(proof); i++ {
		proof[i] = proofSolidity[i*bn254_fr.Bytes : (i+1)*bn254_fr.Bytes]
	}

	startIdx0 := 8*bn254_fr.Bytes + 4
	var elems []HexBytes
	for startIdx := startIdx0; startIdx+bn254_fr.Bytes <= len(proofSolidity); startIdx += bn254_fr.Bytes {
		elems = append(elems, proofSolidity[startIdx:startIdx+bn254_fr.Bytes])
	}

	data := &ProofData{
		Proof:         proof,
		Commitments:   []HexBytes{},
		CommitmentPok: []HexBytes{},
	}
	if len(elems) >= 4 {
		data.Commitments = elems[:len(elems)-2]
		data.CommitmentPok = elems[len(elems)-2:]
	}
	return data
}
