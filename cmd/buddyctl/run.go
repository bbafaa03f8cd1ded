package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <op>...",
		Short: "Run a sequence of operations",
		Long: `The run command executes each argument as one operation, in order.

Refused requests (no space, double frees, ...) are reported and the run
continues. A malformed operation stops the run.

Example:
  buddyctl run "alloc 50" "alloc 12" tree
  buddyctl run --size 64k "alloc 3000 cache" "free cache" stats
  buddyctl run --json "alloc 8" list`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}

			return runOps(s, args)
		},
	}
	return cmd
}

func runOps(s *session, ops []string) error {
	for _, op := range ops {
		err := s.exec(op)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			if !isAllocatorError(err) {
				return err
			}
			s.printOpError(err)
		}
	}

	return nil
}
