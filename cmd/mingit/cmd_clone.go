package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/graybiralo/mingit/pkg/repo"
)

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <remote-url> <directory>",
		Short: "Clone a repository over Smart HTTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			dest, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			if err := ensureEmptyDir(dest); err != nil {
				return err
			}

			refs, err := repo.Clone(cmd.Context(), source, dest)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cloned %s into %s (%s)\n", source, dest, repo.CloneSummary(refs))
			return nil
		},
	}
}

// ensureEmptyDir creates dest if needed and refuses to clone into a
// non-empty directory.
func ensureEmptyDir(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dest, 0o755)
		}
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("destination %q is not empty", dest)
	}
	return nil
}
