package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/repo"
)

func newLsTreeCmd() *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-sha>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			entries, err := r.ListTree(object.Hash(args[0]))
			if err != nil {
				return err
			}
			for _, e := range entries {
				if namesOnly {
					fmt.Fprintln(cmd.OutOrStdout(), e.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%06s %s %s\t%s\n", e.Mode, e.Kind, e.Hash, e.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "name-only", false, "list only entry names")
	return cmd
}
