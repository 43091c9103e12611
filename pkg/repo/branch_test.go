package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBranch(t *testing.T) {
	r := newTestRepo(t)
	c := writeCommit(t, r, "base")

	require.NoError(t, r.CreateBranch("feature", c))
	h, err := r.ResolveRef("refs/heads/feature")
	require.NoError(t, err)
	assert.Equal(t, c, h)

	err = r.CreateBranch("feature", c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestListBranchesNested(t *testing.T) {
	r := newTestRepo(t)
	c := writeCommit(t, r, "base")
	require.NoError(t, r.CreateBranch("master", c))
	require.NoError(t, r.CreateBranch("topic/a", c))

	branches, err := r.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []RefEntry{{"master", c}, {"topic/a", c}}, branches)
}

func TestCurrentBranch(t *testing.T) {
	r := newTestRepo(t)
	name, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, name)

	c := writeCommit(t, r, "detach")
	require.NoError(t, r.UpdateRef("HEAD", c))
	name, err = r.CurrentBranch()
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestDeleteBranch(t *testing.T) {
	r := newTestRepo(t)
	c := writeCommit(t, r, "base")
	require.NoError(t, r.CreateBranch("master", c))
	require.NoError(t, r.CreateBranch("old", c))

	assert.Error(t, r.DeleteBranch("master"), "current branch")
	require.NoError(t, r.DeleteBranch("old"))
	err := r.DeleteBranch("old")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
