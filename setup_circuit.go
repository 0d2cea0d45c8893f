package main

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/logger"
	prover "github.com/kysee/zk-blake2b/provers"
)

const rootDir = "."

// Sets up the fixed-length circuit for one message length (32 bytes unless given)
// and writes its Solidity verifier.
func main() {
	nbBytes := 32
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil {
			println("error", err.Error())
			return
		}
		nbBytes = n
	}

	vk, err := SetupCircuit(nbBytes)
	if err != nil {
		println("error", err.Error())
		return
	}

	if err := CreateSolidity(vk, nbBytes); err != nil {
		println("error", err.Error())
	}
}

func SetupCircuit(nbBytes int) (groth16.VerifyingKey, error) {
	logger.Disable()

	store, err := prover.NewStore(filepath.Join(rootDir, ".build"))
	if err != nil {
		return nil, err
	}

	println("🕧 Setting up Blake2bCircuit for", nbBytes, "bytes...")
	vk, err := prover.NewFixedProver(store).VerifyingKey(nbBytes)
	if err != nil {
		return nil, err
	}
	println("✅ Setup complete, keys in", store.Dir())
	return vk, nil
}

func CreateSolidity(vk groth16.VerifyingKey, nbBytes int) error {
	dir := filepath.Join(rootDir, "verifiers/blake2b/contracts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("Blake2b%dVerifier.sol", nbBytes))

	var buf bytes.Buffer
	err := vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New()))
	if err != nil {
		return err
	}

	err = os.WriteFile(path, buf.Bytes(), 0644)
	if err != nil {
		return err
	}

	println("✅ Solidity verifier generate to", path)
	return nil
}
