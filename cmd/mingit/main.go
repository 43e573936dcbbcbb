package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/remote"
)

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "mingit",
		Short:         "Minimal content-addressable version control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newInitCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newCommitTreeCmd())
	root.AddCommand(newCloneCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps each error kind to a distinct exit code so scripted
// callers can distinguish failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, object.ErrMalformedObject):
		return 2
	case errors.Is(err, object.ErrCorruptObject):
		return 3
	case errors.Is(err, object.ErrObjectNotFound):
		return 4
	case errors.Is(err, object.ErrMalformedTree):
		return 5
	case errors.Is(err, object.ErrMalformedCommit):
		return 6
	case errors.Is(err, remote.ErrProtocol):
		return 7
	case errors.Is(err, remote.ErrRefNotFound):
		return 8
	case errors.Is(err, remote.ErrRemote):
		return 9
	case errors.Is(err, object.ErrUnsupportedPackFormat):
		return 10
	case errors.Is(err, object.ErrUnresolvedDelta):
		return 11
	case errors.Is(err, object.ErrPackChecksumMismatch):
		return 12
	default:
		return 1
	}
}
