package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graybiralo/mingit/pkg/object"
)

func writeWorkFile(t *testing.T, root, rel, content string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
}

func TestWriteTreeFromDir(t *testing.T) {
	r, err := Init(t.TempDir())
	require.NoError(t, err)

	writeWorkFile(t, r.RootDir, "a.txt", "alpha\n", 0o644)
	writeWorkFile(t, r.RootDir, "run.sh", "#!/bin/sh\n", 0o755)
	writeWorkFile(t, r.RootDir, "sub/b.txt", "beta\n", 0o644)

	rootHash, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)

	entries, err := r.ListTree(rootHash)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := make(map[string]TreeListing, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	assert.Equal(t, object.TreeModeFile, byName["a.txt"].Mode)
	assert.Equal(t, object.TypeBlob, byName["a.txt"].Kind)
	assert.Equal(t, object.TreeModeExecutable, byName["run.sh"].Mode)
	assert.Equal(t, object.TreeModeDir, byName["sub"].Mode)
	assert.Equal(t, object.TypeTree, byName["sub"].Kind)

	blob, err := r.Store.ReadBlob(byName["a.txt"].Hash)
	require.NoError(t, err)
	assert.Equal(t, "alpha\n", string(blob.Data))

	sub, err := r.ListTree(byName["sub"].Hash)
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, "b.txt", sub[0].Name)
}

func TestWriteTreeSkipsGitDir(t *testing.T) {
	r, err := Init(t.TempDir())
	require.NoError(t, err)
	writeWorkFile(t, r.RootDir, "f.txt", "content\n", 0o644)

	rootHash, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)

	entries, err := r.ListTree(rootHash)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Name)
}

func TestWriteTreeDeterministic(t *testing.T) {
	r, err := Init(t.TempDir())
	require.NoError(t, err)
	writeWorkFile(t, r.RootDir, "x.txt", "x\n", 0o644)
	writeWorkFile(t, r.RootDir, "y.txt", "y\n", 0o644)

	h1, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	h2, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestCheckoutRestoresWorkingTree(t *testing.T) {
	r, err := Init(t.TempDir())
	require.NoError(t, err)

	writeWorkFile(t, r.RootDir, "a.txt", "alpha\n", 0o644)
	writeWorkFile(t, r.RootDir, "bin/run.sh", "#!/bin/sh\nexit 0\n", 0o755)

	treeHash, err := r.WriteTreeFromDir(r.RootDir)
	require.NoError(t, err)

	sig := object.Signature{Name: "T", Email: "t@example.com", When: 1, TZ: "+0000"}
	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Author:    sig,
		Committer: sig,
		Message:   "snapshot\n",
	})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(r.RootDir, "a.txt")))
	require.NoError(t, os.RemoveAll(filepath.Join(r.RootDir, "bin")))

	require.NoError(t, r.Checkout(commitHash))

	data, err := os.ReadFile(filepath.Join(r.RootDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha\n", string(data))

	info, err := os.Stat(filepath.Join(r.RootDir, "bin", "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "executable bit lost")
}

func TestCheckoutMissingCommit(t *testing.T) {
	r, err := Init(t.TempDir())
	require.NoError(t, err)

	err = r.Checkout(object.HashBytes([]byte("nowhere")))
	assert.ErrorIs(t, err, object.ErrObjectNotFound)
}
