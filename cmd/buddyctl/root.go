package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/buddy/memutils/metadata"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	totalSize    string
	strategyName string
	verbose      bool
	jsonOut      bool
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "buddyctl",
	Short: "Simulate a power-of-two buddy allocator",
	Long: `buddyctl drives a buddy allocator over a simulated address range. Requests are
rounded up to a power of two and served by splitting larger blocks in half; freed
blocks are merged with their buddy as soon as both halves are free.

Operations can be passed as arguments to "run", typed into "shell", or watched in
the scripted "demo".`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&totalSize, "size", "s", "1024", "Total size of the region in bytes (power of two, k/m/g suffixes allowed)")
	rootCmd.PersistentFlags().StringVar(&strategyName, "strategy", "min-offset", "Placement strategy: min-offset or min-memory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Narrate every split and merge")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger writes allocator records to stderr. Debug records are only shown in verbose mode.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// configFromFlags validates the global flags and turns them into a sessionConfig
func configFromFlags(cmd *cobra.Command) (sessionConfig, error) {
	size, err := parseSize(totalSize)
	if err != nil {
		return sessionConfig{}, errors.Wrap(err, "--size")
	}

	strategy, ok := metadata.ParseAllocationStrategy(strategyName)
	if !ok {
		return sessionConfig{}, errors.Newf("--strategy: unknown strategy %q", strategyName)
	}

	return sessionConfig{
		size:     size,
		strategy: strategy,
		jsonOut:  jsonOut,
		verbose:  verbose,
		noColor:  noColor,
		logger:   newLogger(cmd.ErrOrStderr()),
	}, nil
}

// sessionFromFlags creates a session that writes to the command's output
func sessionFromFlags(cmd *cobra.Command) (*session, error) {
	config, err := configFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	return newSession(cmd.OutOrStdout(), config)
}
