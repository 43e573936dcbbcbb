package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/repo"
)

func newCatFileCmd() *cobra.Command {
	var prettyPrint bool

	cmd := &cobra.Command{
		Use:   "cat-file <type> <sha>",
		Short: "Print the contents of a stored object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			wantType := object.ObjectType(args[0])
			h := object.Hash(args[1])

			objType, payload, err := r.Store.Read(h)
			if err != nil {
				return err
			}
			if objType != wantType {
				return fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, wantType)
			}

			cmd.OutOrStdout().Write(payload)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&prettyPrint, "pretty", "p", false, "pretty-print the object content")
	return cmd
}
