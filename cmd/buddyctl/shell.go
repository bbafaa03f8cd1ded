package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newShellCmd())
}

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive allocator shell",
		Long: `The shell command reads operations from standard input, one per line,
until "quit" or end of input. Type "help" for the list of operations.

Example:
  buddyctl shell --size 4k
  echo "alloc 100\ntree" | buddyctl shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFromFlags(cmd)
			if err != nil {
				return err
			}

			return runShell(s, cmd.InOrStdin(), !jsonOut)
		},
	}
	return cmd
}

func runShell(s *session, in io.Reader, prompt bool) error {
	if prompt {
		fmt.Fprintln(s.out, s.styles.header.Render(fmt.Sprintf("Buddy allocator, %dB, strategy %s", s.alloc.Size(), s.alloc.Strategy())))
		fmt.Fprintln(s.out, `Type "help" for a list of operations.`)
	}

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(s.out, "> ")
		}

		if !scanner.Scan() {
			if prompt {
				fmt.Fprintln(s.out)
			}
			return scanner.Err()
		}

		err := s.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.printOpError(err)
		}
	}
}
