package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/wyag/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeHash(c string) object.Hash {
	return object.Hash(strings.Repeat(c, 40))
}

func TestResolveRefDirect(t *testing.T) {
	r := newTestRepo(t)
	writeRefRaw(t, r, "refs/heads/master", string(fakeHash("a"))+"\n")

	h, err := r.ResolveRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, fakeHash("a"), h)

	h, err = r.ResolveRef("HEAD")
	require.NoError(t, err)
	assert.Equal(t, fakeHash("a"), h)
}

func TestResolveRefThreeHops(t *testing.T) {
	r := newTestRepo(t)
	writeRefRaw(t, r, "refs/heads/a", "ref: refs/heads/b\n")
	writeRefRaw(t, r, "refs/heads/b", "ref: refs/heads/c\n")
	writeRefRaw(t, r, "refs/heads/c", strings.ToUpper(string(fakeHash("b")))+"\n")

	h, err := r.ResolveRef("refs/heads/a")
	require.NoError(t, err)
	assert.Equal(t, fakeHash("b"), h)
}

func TestResolveRefCycleTerminates(t *testing.T) {
	r := newTestRepo(t)
	writeRefRaw(t, r, "refs/heads/a", "ref: refs/heads/b\n")
	writeRefRaw(t, r, "refs/heads/b", "ref: refs/heads/a\n")

	_, err := r.ResolveRef("refs/heads/a")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestResolveRefDepthBound(t *testing.T) {
	r := newTestRepo(t)
	// MaxSymbolicRefDepth indirections resolve; one more does not.
	for i := 0; i < MaxSymbolicRefDepth+1; i++ {
		writeRefRaw(t, r, fmt.Sprintf("refs/heads/r%d", i), fmt.Sprintf("ref: refs/heads/r%d\n", i+1))
	}
	writeRefRaw(t, r, fmt.Sprintf("refs/heads/r%d", MaxSymbolicRefDepth+1), string(fakeHash("c"))+"\n")

	h, err := r.ResolveRef("refs/heads/r1")
	require.NoError(t, err)
	assert.Equal(t, fakeHash("c"), h)

	_, err = r.ResolveRef("refs/heads/r0")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestResolveRefMissingAndGarbage(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.ResolveRef("HEAD")
	assert.ErrorIs(t, err, ErrReferenceNotFound, "unborn branch")

	writeRefRaw(t, r, "refs/heads/junk", "not a hash\n")
	_, err = r.ResolveRef("refs/heads/junk")
	assert.ErrorIs(t, err, ErrReferenceNotFound)

	_, err = r.ResolveRef("refs/heads")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestRefNamesCannotEscapeGitDir(t *testing.T) {
	r := newTestRepo(t)
	for _, name := range []string{"", "../config", "/etc/passwd", "refs/../../x", "refs/heads/a b", "refs/heads/x.lock", "refs/heads/.hidden"} {
		_, err := r.ReadRef(name)
		assert.Error(t, err, name)
		assert.Error(t, r.UpdateRef(name, fakeHash("a")), name)
	}
}

func TestListRefsNestedAndSorted(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.UpdateRef("refs/heads/master", fakeHash("a")))
	require.NoError(t, r.UpdateRef("refs/heads/feature/y", fakeHash("b")))
	require.NoError(t, r.UpdateRef("refs/heads/feature/x", fakeHash("c")))
	require.NoError(t, r.UpdateRef("refs/tags/v1", fakeHash("d")))
	require.NoError(t, r.SetSymbolicRef("refs/remotes/origin/HEAD", "refs/heads/master"))
	writeRefRaw(t, r, "refs/heads/.tmp-ref-1", "garbage")

	root, err := r.ListRefs()
	require.NoError(t, err)

	want := &RefNode{Name: "refs", IsDir: true, Children: []*RefNode{
		{Name: "heads", IsDir: true, Children: []*RefNode{
			{Name: "feature", IsDir: true, Children: []*RefNode{
				{Name: "x", Hash: fakeHash("c")},
				{Name: "y", Hash: fakeHash("b")},
			}},
			{Name: "master", Hash: fakeHash("a")},
		}},
		{Name: "remotes", IsDir: true, Children: []*RefNode{
			{Name: "origin", IsDir: true, Children: []*RefNode{
				{Name: "HEAD", Hash: fakeHash("a")},
			}},
		}},
		{Name: "tags", IsDir: true, Children: []*RefNode{
			{Name: "v1", Hash: fakeHash("d")},
		}},
	}}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Fatalf("ListRefs mismatch (-want +got):\n%s", diff)
	}

	flat := root.Flatten("refs")
	wantFlat := []RefEntry{
		{Name: "refs/heads/feature/x", Hash: fakeHash("c")},
		{Name: "refs/heads/feature/y", Hash: fakeHash("b")},
		{Name: "refs/heads/master", Hash: fakeHash("a")},
		{Name: "refs/remotes/origin/HEAD", Hash: fakeHash("a")},
		{Name: "refs/tags/v1", Hash: fakeHash("d")},
	}
	if diff := cmp.Diff(wantFlat, flat); diff != "" {
		t.Fatalf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestListRefsSkipsDanglingRefs(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.UpdateRef("refs/heads/master", fakeHash("a")))
	require.NoError(t, r.SetSymbolicRef("refs/remotes/origin/HEAD", "refs/remotes/origin/main"))
	writeRefRaw(t, r, "refs/tags/junk", "not a hash\n")

	root, err := r.ListRefs()
	require.NoError(t, err)
	assert.Equal(t, []RefEntry{{Name: "refs/heads/master", Hash: fakeHash("a")}}, root.Flatten("refs"))

	branches, err := r.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []RefEntry{{Name: "master", Hash: fakeHash("a")}}, branches)

	tags, err := r.ListTags()
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestListRefsEmptyRepo(t *testing.T) {
	r := newTestRepo(t)
	root, err := r.ListRefs()
	require.NoError(t, err)
	assert.Empty(t, root.Flatten("refs"))
}

func TestUpdateRefWritesNewline(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.UpdateRef("refs/heads/master", fakeHash("e")))
	data, err := os.ReadFile(filepath.Join(r.GitDir, "refs", "heads", "master"))
	require.NoError(t, err)
	assert.Equal(t, string(fakeHash("e"))+"\n", string(data))

	assert.Error(t, r.UpdateRef("refs/heads/master", "abc"))
}

func TestUpdateRefCASExpectAbsent(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.UpdateRefCAS("refs/heads/x", fakeHash("a"), ""))
	err := r.UpdateRefCAS("refs/heads/x", fakeHash("b"), "")
	assert.ErrorIs(t, err, ErrRefCASMismatch)

	require.NoError(t, r.UpdateRefCAS("refs/heads/x", fakeHash("b"), fakeHash("a")))
	h, err := r.ResolveRef("refs/heads/x")
	require.NoError(t, err)
	assert.Equal(t, fakeHash("b"), h)
}

func TestUpdateRefCASConcurrentSingleWinner(t *testing.T) {
	r := newTestRepo(t)
	base := fakeHash("a")
	require.NoError(t, r.UpdateRef("refs/heads/master", base))

	const workers = 16
	var wg sync.WaitGroup
	successCh := make(chan object.Hash, workers)
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := object.Hash(fmt.Sprintf("%040x", i+1))
			if err := r.UpdateRefCAS("refs/heads/master", next, base); err != nil {
				errCh <- err
				return
			}
			successCh <- next
		}()
	}
	wg.Wait()
	close(successCh)
	close(errCh)

	var winners []object.Hash
	for h := range successCh {
		winners = append(winners, h)
	}
	require.Len(t, winners, 1)
	for err := range errCh {
		assert.True(t, errors.Is(err, ErrRefCASMismatch), "unexpected error: %v", err)
	}

	got, err := r.ResolveRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, winners[0], got)
}

func TestSetSymbolicRefAndHead(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.UpdateRef("refs/heads/dev", fakeHash("f")))
	require.NoError(t, r.SetSymbolicRef("HEAD", "refs/heads/dev"))

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/dev", head)

	h, err := r.ResolveRef("HEAD")
	require.NoError(t, err)
	assert.Equal(t, fakeHash("f"), h)
}

func TestDeleteRef(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.UpdateRef("refs/heads/gone", fakeHash("a")))
	require.NoError(t, r.DeleteRef("refs/heads/gone"))
	assert.ErrorIs(t, r.DeleteRef("refs/heads/gone"), ErrReferenceNotFound)
}
