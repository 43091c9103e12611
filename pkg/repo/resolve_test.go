package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plantObject stores a blob under an arbitrary name so prefix searches can
// be tested with controlled ids.
func plantObject(t *testing.T, r *Repo, name string) {
	t.Helper()
	h := writeBlob(t, r, "planted")
	data, err := os.ReadFile(filepath.Join(r.GitDir, "objects", string(h[:2]), string(h[2:])))
	require.NoError(t, err)
	writeFile(t, filepath.Join(r.GitDir, "objects", name[:2], name[2:]), string(data), 0o644)
}

func TestResolveNameBlank(t *testing.T) {
	r := newTestRepo(t)
	got, err := r.ResolveName("  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveNameHead(t *testing.T) {
	r := newTestRepo(t)
	c := writeCommit(t, r, "first")
	require.NoError(t, r.UpdateRef("refs/heads/master", c))

	got, err := r.ResolveName("HEAD")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c}, got)
}

func TestResolveNameFullHashNeedsNoObject(t *testing.T) {
	r := newTestRepo(t)
	full := strings.Repeat("AB", 20)
	got, err := r.ResolveName(full)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{object.Hash(strings.ToLower(full))}, got)
}

func TestResolveNameShortHash(t *testing.T) {
	r := newTestRepo(t)
	a := "abcd1" + strings.Repeat("0", 35)
	b := "abcd2" + strings.Repeat("0", 35)
	plantObject(t, r, a)
	plantObject(t, r, b)

	got, err := r.ResolveName("abcd")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{object.Hash(a), object.Hash(b)}, got)

	got, err = r.ResolveName("ABCD1")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{object.Hash(a)}, got)

	got, err = r.ResolveName("abce")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = r.ResolveOne("abcd")
	var amb *AmbiguousNameError
	require.ErrorAs(t, err, &amb)
	assert.Len(t, amb.Candidates, 2)
	assert.ErrorIs(t, err, ErrAmbiguousName)
	assert.Contains(t, err.Error(), a)
}

func TestResolveNameShortHashBelowMinimumIsARefName(t *testing.T) {
	r := newTestRepo(t)
	plantObject(t, r, "abc"+strings.Repeat("1", 37))
	c := writeCommit(t, r, "named abc")
	require.NoError(t, r.UpdateRef("refs/heads/abc", c))

	got, err := r.ResolveName("abc")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c}, got)
}

func TestResolveNameMinShortHashOverride(t *testing.T) {
	r := newTestRepo(t, WithMinShortHash(6))
	plantObject(t, r, "abcdef"+strings.Repeat("0", 34))

	got, err := r.ResolveName("abcd")
	require.NoError(t, err)
	assert.Empty(t, got, "4 digits is below the configured minimum")

	got, err = r.ResolveName("abcdef")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolveNameNamedRefs(t *testing.T) {
	r := newTestRepo(t)
	c1 := writeCommit(t, r, "one")
	c2 := writeCommit(t, r, "two")

	require.NoError(t, r.UpdateRef("refs/heads/same", c1))
	require.NoError(t, r.UpdateRef("refs/tags/same", c1))
	got, err := r.ResolveName("same")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c1}, got, "identical ids collapse")

	require.NoError(t, r.UpdateRef("refs/tags/split", c1))
	require.NoError(t, r.UpdateRef("refs/heads/split", c2))
	got, err = r.ResolveName("split")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c1, c2}, got, "tags are searched before heads")

	require.NoError(t, r.UpdateRef("refs/remotes/origin/master", c2))
	got, err = r.ResolveName("origin/master")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c2}, got)

	got, err = r.ResolveName("refs/heads/split")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{c2}, got)

	got, err = r.ResolveName("nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindFollowsTagsAndCommits(t *testing.T) {
	r := newTestRepo(t)
	c := writeCommit(t, r, "tagged")
	tagHash, err := r.CreateAnnotatedTag("v1", c, "Tagger <t@example.com>", "release\n", false)
	require.NoError(t, err)

	commit, err := r.Store.ReadCommit(c)
	require.NoError(t, err)

	got, err := r.Find("v1", "", false)
	require.NoError(t, err)
	assert.Equal(t, tagHash, got)

	got, err = r.Find("v1", object.TypeCommit, true)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	got, err = r.Find("v1", object.TypeTree, true)
	require.NoError(t, err)
	assert.Equal(t, commit.TreeHash(), got)

	got, err = r.Find("v1", object.TypeTag, true)
	require.NoError(t, err)
	assert.Equal(t, tagHash, got)
}

func TestFindKindMismatch(t *testing.T) {
	r := newTestRepo(t)
	c := writeCommit(t, r, "x")
	require.NoError(t, r.CreateTag("light", c, false))

	_, err := r.Find("light", object.TypeTree, false)
	var km *object.KindMismatchError
	require.ErrorAs(t, err, &km)
	assert.Equal(t, object.TypeCommit, km.Found)
	assert.ErrorIs(t, err, object.ErrObjectNotFound)

	_, err = r.Find("light", object.TypeBlob, true)
	require.ErrorAs(t, err, &km)
	assert.Equal(t, object.TypeCommit, km.Found)
}

func TestFindNoCandidates(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Find("missing", object.TypeCommit, true)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestFindFullHashOfMissingObject(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Find(string(fakeHash("9")), object.TypeBlob, true)
	assert.ErrorIs(t, err, object.ErrObjectNotFound)
}
