package repo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logHashes(entries []LogEntry) []object.Hash {
	out := make([]object.Hash, len(entries))
	for i, e := range entries {
		out[i] = e.Hash
	}
	return out
}

func TestLogLinear(t *testing.T) {
	r := newTestRepo(t)
	c1 := writeCommit(t, r, "one")
	c2 := writeCommit(t, r, "two", c1)
	c3 := writeCommit(t, r, "three\n\nbody", c2)

	entries, err := r.Log(c3, 0)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c3, c2, c1}, logHashes(entries))
	assert.Equal(t, "three", entries[0].Summary())

	entries, err = r.Log(c3, 2)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c3, c2}, logHashes(entries))
}

func TestLogMergeVisitsEachCommitOnce(t *testing.T) {
	r := newTestRepo(t)
	root := writeCommit(t, r, "root")
	left := writeCommit(t, r, "left", root)
	right := writeCommit(t, r, "right", root)
	merge := writeCommit(t, r, "merge", left, right)

	entries, err := r.Log(merge, 0)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{merge, left, root, right}, logHashes(entries))
}

func TestLogMissingParent(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Log(fakeHash("7"), 0)
	assert.ErrorIs(t, err, object.ErrObjectNotFound)
}

func TestWriteLogGraphviz(t *testing.T) {
	r := newTestRepo(t)
	c1 := writeCommit(t, r, "say \"hi\"")
	c2 := writeCommit(t, r, "second", c1)

	var buf bytes.Buffer
	require.NoError(t, r.WriteLogGraphviz(&buf, c2))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph wyaglog{\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "c_"+string(c2)+" -> c_"+string(c1)+";")
	assert.Contains(t, out, `[label="`+c1.Short(7)+`: say \"hi\""]`)
	assert.Equal(t, 1, strings.Count(out, "->"))
}
