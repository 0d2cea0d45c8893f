package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/backend/solidity"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kysee/zk-blake2b/circuits"
	prover "github.com/kysee/zk-blake2b/provers"
	"github.com/kysee/zk-blake2b/provers/types"
	basetypes "github.com/kysee/zk-blake2b/types"
	"github.com/spf13/cobra"
)

var (
	dataHex   string
	dataFile  string
	dataURL   string
	fixed     bool
	outFile   string
	proofFile string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Compile the variative and generic circuits and generate their keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry()
		if err != nil {
			return err
		}
		if err := registry.Setup(); err != nil {
			return err
		}
		digest, err := registry.OuterDigest()
		if err != nil {
			return err
		}
		fmt.Println(hexutil.Encode(digest[:]))
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the BLAKE2b-256 digest of a message",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readMessage()
		if err != nil {
			return err
		}
		digest := circuit.Sum256(data)
		fmt.Println(hexutil.Encode(digest[:]))
		return nil
	},
}

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Prove the digest of a message",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readMessage()
		if err != nil {
			return err
		}
		if len(data) > circuit.MaxDataBytes {
			return fmt.Errorf("message of %d bytes exceeds %d bytes", len(data), circuit.MaxDataBytes)
		}

		var artifact *basetypes.Blake2bProof
		if fixed {
			store, err := newStore()
			if err != nil {
				return err
			}
			proof, err := prover.NewFixedProver(store).WithLogger(log).Prove(data)
			if err != nil {
				return err
			}
			if artifact, err = proof.Artifact(); err != nil {
				return err
			}
		} else {
			registry, err := newRegistry()
			if err != nil {
				return err
			}
			proof, err := registry.ProveGeneric(data)
			if err != nil {
				return err
			}
			if artifact, err = proof.Artifact(); err != nil {
				return err
			}
		}

		path := outFile
		if path == "" {
			path = filepath.Join(config.OutputPath(), fmt.Sprintf("%s-%x.json", artifact.Kind, []byte(artifact.Digest[:8])))
		}
		if err := writeJSON(path, artifact); err != nil {
			return err
		}
		log.Info().Str("kind", artifact.Kind).Int("length", artifact.Length).Str("path", path).Msg("proof written")
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a proof artifact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := os.ReadFile(proofFile)
		if err != nil {
			return err
		}
		var artifact basetypes.Blake2bProof
		if err := json.Unmarshal(blob, &artifact); err != nil {
			return fmt.Errorf("failed to decode %s: %w", proofFile, err)
		}
		digest := circuit.Sum256(artifact.Data)
		if !bytes.Equal(digest[:], artifact.Digest) {
			return fmt.Errorf("digest does not match the data")
		}

		switch artifact.Kind {
		case basetypes.ProofKindFixed:
			proof, err := prover.FixedProofFromArtifact(&artifact)
			if err != nil {
				return err
			}
			store, err := newStore()
			if err != nil {
				return err
			}
			err = prover.NewFixedProver(store).WithLogger(log).Verify(proof)
			if err != nil {
				return err
			}
		case basetypes.ProofKindGeneric:
			proof, err := prover.GenericProofFromArtifact(&artifact)
			if err != nil {
				return err
			}
			registry, err := newRegistry()
			if err != nil {
				return err
			}
			if err := registry.VerifyGeneric(proof); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown proof kind %q", artifact.Kind)
		}

		fmt.Println("✅ proof verified")
		return nil
	},
}

var exportSolidityCmd = &cobra.Command{
	Use:   "export-solidity",
	Short: "Write the Solidity verifier of the generic circuit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry()
		if err != nil {
			return err
		}
		vk, err := registry.OuterVerifyingKey()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New())); err != nil {
			return err
		}

		path := outFile
		if path == "" {
			path = filepath.Join(config.OutputPath(), "Blake2bVerifier.sol")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("solidity verifier written")
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{hashCmd, proveCmd} {
		cmd.Flags().StringVar(&dataHex, "data", "", "Message as hex, 0x prefix optional.")
		cmd.Flags().StringVar(&dataFile, "file", "", "Read the message from a file.")
		cmd.Flags().StringVar(&dataURL, "url", "", "Fetch the message from an HTTP endpoint.")
		cmd.MarkFlagsMutuallyExclusive("data", "file", "url")
		cmd.MarkFlagsOneRequired("data", "file", "url")
	}
	proveCmd.Flags().BoolVar(&fixed, "fixed", false, "Use the fixed-length circuit of the message length.")
	proveCmd.Flags().StringVar(&outFile, "out", "", "Proof output file, defaults to the output dir.")

	verifyCmd.Flags().StringVar(&proofFile, "proof", "", "Proof artifact to verify.")
	verifyCmd.MarkFlagRequired("proof")

	exportSolidityCmd.Flags().StringVar(&outFile, "out", "", "Verifier output file, defaults to the output dir.")

	rootCmd.AddCommand(setupCmd, hashCmd, proveCmd, verifyCmd, exportSolidityCmd)
}

func readMessage() ([]byte, error) {
	var source types.Source
	switch {
	case dataFile != "":
		source = prover.NewFileSource(dataFile)
	case dataURL != "":
		source = prover.NewAPISource(dataURL)
	default:
		source = prover.NewHexSource(dataHex)
	}
	return source.Message()
}

func writeJSON(path string, v any) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0644)
}
