package repo

import (
	"testing"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitTreeFields(t *testing.T) {
	r := newTestRepo(t)
	tree := writeSingleFileTree(t, r, "f", "data")
	p1 := writeCommit(t, r, "p1")
	p2 := writeCommit(t, r, "p2")

	h, err := r.CommitTree(tree, []object.Hash{p1, p2}, "Jo <jo@example.com>", "subject\n\nbody", testTime)
	require.NoError(t, err)

	c, err := r.Store.ReadCommit(h)
	require.NoError(t, err)
	assert.Equal(t, []string{"tree", "parent", "author", "committer"}, c.Keys())
	assert.Equal(t, tree, c.TreeHash())
	assert.Equal(t, []object.Hash{p1, p2}, c.Parents())
	assert.Equal(t, "Jo <jo@example.com> 1709287200 +0200", c.Author())
	assert.Equal(t, c.Author(), c.Committer())
	assert.Equal(t, "subject\n\nbody\n", string(c.Message))
}

func TestCommitTreeIsDeterministic(t *testing.T) {
	r := newTestRepo(t)
	tree := writeSingleFileTree(t, r, "f", "data")
	a, err := r.CommitTree(tree, nil, "A <a@b>", "same", testTime)
	require.NoError(t, err)
	b, err := r.CommitTree(tree, nil, "A <a@b>", "same", testTime)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCommitTreeValidatesInputs(t *testing.T) {
	r := newTestRepo(t)
	tree := writeSingleFileTree(t, r, "f", "data")
	blob := writeBlob(t, r, "blob")

	_, err := r.CommitTree(blob, nil, "A <a@b>", "m", testTime)
	var km *object.KindMismatchError
	assert.ErrorAs(t, err, &km)

	_, err = r.CommitTree(tree, []object.Hash{fakeHash("4")}, "A <a@b>", "m", testTime)
	assert.ErrorIs(t, err, object.ErrObjectNotFound)

	_, err = r.CommitTree(tree, []object.Hash{tree}, "A <a@b>", "m", testTime)
	assert.ErrorAs(t, err, &km)

	_, err = r.CommitTree(tree, nil, "  ", "m", testTime)
	assert.Error(t, err)
}
