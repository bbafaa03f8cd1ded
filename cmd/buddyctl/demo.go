package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// demoScript allocates three small blocks, then frees them in an order that only coalesces back
// to the root on the last free.
var demoScript = []string{
	"alloc 8 dir1",
	"tree",
	"alloc 12 dir2",
	"tree",
	"alloc 7 dir3",
	"tree",
	"list",
	"free dir1",
	"tree",
	"free dir3",
	"tree",
	"free dir2",
	"tree",
	"stats",
}

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Watch a scripted allocate and free scenario",
		Long: `The demo command allocates 8, 12 and 7 bytes, then frees them again,
printing the tree after every step. Add --verbose to see each split and merge.

Example:
  buddyctl demo
  buddyctl demo --size 64 --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}

			return runDemo(s)
		},
	}
	return cmd
}

func runDemo(s *session) error {
	for _, op := range demoScript {
		if !s.config.jsonOut {
			fmt.Fprintln(s.out, s.styles.header.Render("$ "+op))
		}

		err := s.exec(op)
		if err != nil {
			return err
		}

		if !s.config.jsonOut {
			fmt.Fprintln(s.out)
		}
	}

	return nil
}
