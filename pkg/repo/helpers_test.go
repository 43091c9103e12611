package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("", 2*3600))

func newTestRepo(t *testing.T, opts ...Option) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), opts...)
	require.NoError(t, err)
	r.now = func() time.Time { return testTime }
	return r
}

func writeBlob(t *testing.T, r *Repo, data string) object.Hash {
	t.Helper()
	h, err := r.Store.WriteBlob(&object.Blob{Data: []byte(data)})
	require.NoError(t, err)
	return h
}

func writeSingleFileTree(t *testing.T, r *Repo, name, data string) object.Hash {
	t.Helper()
	h, err := r.Store.WriteTree(&object.Tree{Entries: []object.TreeEntry{
		{Mode: object.TreeModeFile, Path: name, Target: writeBlob(t, r, data)},
	}})
	require.NoError(t, err)
	return h
}

func writeCommit(t *testing.T, r *Repo, msg string, parents ...object.Hash) object.Hash {
	t.Helper()
	tree := writeSingleFileTree(t, r, "file.txt", msg)
	h, err := r.CommitTree(tree, parents, "Test <test@example.com>", msg, testTime)
	require.NoError(t, err)
	return h
}

func writeFile(t *testing.T, path, data string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), perm))
}

// writeRefRaw bypasses validation so tests can plant odd ref content.
func writeRefRaw(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	writeFile(t, filepath.Join(r.GitDir, filepath.FromSlash(name)), content, 0o644)
}
