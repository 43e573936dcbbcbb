package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/graybiralo/mingit/pkg/object"
)

// Checkout materializes the working tree of the given commit, writing
// every file under the repository root with the mode recorded in its tree
// entry.
func (r *Repo) Checkout(commitHash object.Hash) error {
	commit, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return fmt.Errorf("checkout: read commit %s: %w", commitHash, err)
	}
	return r.checkoutTree(commit.TreeHash, r.RootDir)
}

func (r *Repo) checkoutTree(treeHash object.Hash, dir string) error {
	tree, err := r.Store.ReadTree(treeHash)
	if err != nil {
		return fmt.Errorf("checkout: read tree %s: %w", treeHash, err)
	}

	for _, e := range tree.Entries {
		target := filepath.Join(dir, e.Name)

		if e.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("checkout: mkdir %q: %w", target, err)
			}
			if err := r.checkoutTree(e.Target, target); err != nil {
				return err
			}
			continue
		}

		blob, err := r.Store.ReadBlob(e.Target)
		if err != nil {
			return fmt.Errorf("checkout: read blob for %q: %w", e.Name, err)
		}
		if err := os.WriteFile(target, blob.Data, filePermFromMode(e.Mode)); err != nil {
			return fmt.Errorf("checkout: write %q: %w", target, err)
		}
	}
	return nil
}

// filePermFromMode maps a tree entry mode string to file permissions.
func filePermFromMode(mode string) os.FileMode {
	if mode == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}
