package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/repo"
)

func newHashObjectCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute the object hash of a file, optionally storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), object.HashObject(object.TypeBlob, data))
				return nil
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			h, err := r.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "store the object, not just hash it")
	return cmd
}
