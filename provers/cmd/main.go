package main

import (
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark/logger"
	prover "github.com/kysee/zk-blake2b/provers"
	"github.com/kysee/zk-blake2b/provers/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	config = types.NewConfig()
	quiet  bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "zkblake2b",
	Short: "Prove BLAKE2b-256 digests with gnark",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(level).
			With().Timestamp().Logger()
		if quiet {
			logger.Disable()
		} else {
			logger.Set(log)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.RootDir, "root", config.RootDir, "Root directory the build and output dirs are relative to.")
	rootCmd.PersistentFlags().StringVar(&config.BuildDir, "build-dir", config.BuildDir, "Directory keeping compiled circuits and keys.")
	rootCmd.PersistentFlags().StringVar(&config.OutputDir, "output-dir", config.OutputDir, "Directory receiving proofs and verifiers.")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "One of trace, debug, info, warn, error.")
	rootCmd.PersistentFlags().IntVar(&config.MaxBlockCount, "max-block-count", config.MaxBlockCount, "Largest variative circuit to set up, 0 for all.")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Silence the gnark compiler and solver logs.")
}

func newStore() (*prover.Store, error) {
	return prover.NewStore(config.BuildPath())
}

func newRegistry() (*prover.Registry, error) {
	store, err := newStore()
	if err != nil {
		return nil, err
	}
	return prover.NewRegistry(config, prover.WithLogger(log), prover.WithStore(store)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
