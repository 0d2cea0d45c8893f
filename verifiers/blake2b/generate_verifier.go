package main

import (
	"bytes"
	"crypto/sha256"
	"os"

	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common/hexutil"
	prover "github.com/kysee/zk-blake2b/provers"
	"github.com/kysee/zk-blake2b/provers/types"
)

func main() {
	config := types.NewConfig(os.Args[1:]...)
	if config.RootDir == "." {
		config.RootDir = "../.."
	}

	store, err := prover.NewStore(config.BuildPath())
	if err != nil {
		panic(err)
	}
	logger.Disable()

	// Reuses the keys under the build dir, sets them up if missing
	registry := prover.NewRegistry(config, prover.WithStore(store))
	vk, err := registry.OuterVerifyingKey()
	if err != nil {
		panic(err)
	}
	digest, err := registry.OuterDigest()
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll("contracts", 0755); err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	err = vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New()))
	if err != nil {
		panic(err)
	}

	err = os.WriteFile("contracts/Blake2bVerifier.sol", buf.Bytes(), 0644)
	if err != nil {
		panic(err)
	}

	println("✅ Solidity verifier generated: contracts/Blake2bVerifier.sol")
	println("verifying key digest", hexutil.Encode(digest[:]))
}

