package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/repo"
)

func newCommitTreeCmd() *cobra.Command {
	var message string
	var parent string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree-sha>",
		Short: "Create a commit object referencing a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			treeHash := object.Hash(args[0])
			if !treeHash.Valid() {
				return fmt.Errorf("%w: invalid tree hash %q", object.ErrMalformedObject, args[0])
			}

			now := time.Now()
			ident, err := r.AuthorIdent(now.Unix(), now.Format("-0700"))
			if err != nil {
				return err
			}

			commit := &object.CommitObj{
				TreeHash:  treeHash,
				Author:    ident,
				Committer: ident,
				Message:   message + "\n",
			}
			if parent != "" {
				p := object.Hash(parent)
				if !p.Valid() {
					return fmt.Errorf("%w: invalid parent hash %q", object.ErrMalformedObject, parent)
				}
				commit.Parents = append(commit.Parents, p)
			}

			h, err := r.Store.WriteCommit(commit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent commit hash")
	cmd.MarkFlagRequired("message")
	return cmd
}
