package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/graybiralo/mingit/pkg/object"
)

// TreeListing is one entry of a tree listing: the stored mode and name
// plus the kind resolved through the object store.
type TreeListing struct {
	Mode string
	Kind object.ObjectType
	Hash object.Hash
	Name string
}

// WriteTreeFromDir builds blob and tree objects from the files under dir
// (skipping any .git directory) and returns the root tree hash.
func (r *Repo) WriteTreeFromDir(dir string) (object.Hash, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("write tree: read dir %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	tree := &object.TreeObj{}
	for _, name := range names {
		e := byName[name]
		path := filepath.Join(dir, name)

		if e.IsDir() {
			subHash, err := r.WriteTreeFromDir(path)
			if err != nil {
				return "", err
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{
				Mode:   object.TreeModeDir,
				Name:   name,
				Target: subHash,
			})
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("write tree: read %q: %w", path, err)
		}
		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: data})
		if err != nil {
			return "", err
		}

		mode := object.TreeModeFile
		if info, err := e.Info(); err == nil && info.Mode()&0o111 != 0 {
			mode = object.TreeModeExecutable
		}
		tree.Entries = append(tree.Entries, object.TreeEntry{
			Mode:   mode,
			Name:   name,
			Target: blobHash,
		})
	}

	return r.Store.WriteTree(tree)
}

// ListTree returns the entries of a tree object. The kind of each entry is
// derived by resolving its hash through the object store rather than from
// the mode bits.
func (r *Repo) ListTree(h object.Hash) ([]TreeListing, error) {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, err
	}

	out := make([]TreeListing, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		kind, _, err := r.Store.Read(e.Target)
		if err != nil {
			return nil, fmt.Errorf("list tree: entry %q: %w", e.Name, err)
		}
		out = append(out, TreeListing{
			Mode: e.Mode,
			Kind: kind,
			Hash: e.Target,
			Name: e.Name,
		})
	}
	return out, nil
}
