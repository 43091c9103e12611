package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/odvcencio/wyag/pkg/object"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrReferenceNotFound = errors.New("reference not found")
	ErrRefCASMismatch    = errors.New("ref compare-and-swap mismatch")
)

const (
	// SymbolicRefPrefix marks a reference whose value names another reference.
	SymbolicRefPrefix = "ref: "
	// MaxSymbolicRefDepth bounds how many symbolic indirections are followed.
	MaxSymbolicRefDepth = 5

	refLockName       = "refs.flock"
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// validateRefName rejects names that are empty, absolute, or would leave
// the git directory.
func validateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("ref name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("invalid ref name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r\\:?*[~^") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid ref name %q", name)
	}
	if path.Clean(name) != name {
		return fmt.Errorf("invalid ref name %q", name)
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return fmt.Errorf("invalid ref name %q", name)
		}
	}
	return nil
}

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.GitDir, filepath.FromSlash(name))
}

// ReadRef returns the trimmed text stored in a reference file.
func (r *Repo) ReadRef(name string) (string, error) {
	if err := validateRefName(name); err != nil {
		return "", fmt.Errorf("read ref: %w", err)
	}
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || isDir(r.refPath(name)) {
			return "", fmt.Errorf("read ref %q: %w", name, ErrReferenceNotFound)
		}
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Head reads HEAD. If it is symbolic it returns the target ref path (e.g.
// "refs/heads/master"); otherwise the detached object id.
func (r *Repo) Head() (string, error) {
	content, err := r.ReadRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	if target, ok := strings.CutPrefix(content, SymbolicRefPrefix); ok {
		return strings.TrimSpace(target), nil
	}
	return content, nil
}

// ResolveRef follows symbolic references from name until it reaches a
// literal object id. At most MaxSymbolicRefDepth indirections are followed
// and a reference is never visited twice.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	visited := make(map[string]struct{}, MaxSymbolicRefDepth+1)
	cur := name
	for depth := 0; depth <= MaxSymbolicRefDepth; depth++ {
		if _, seen := visited[cur]; seen {
			return "", fmt.Errorf("resolve ref %q: symbolic ref cycle at %q: %w", name, cur, ErrReferenceNotFound)
		}
		visited[cur] = struct{}{}

		content, err := r.ReadRef(cur)
		if err != nil {
			return "", fmt.Errorf("resolve ref %q: %w", name, err)
		}
		if target, ok := strings.CutPrefix(content, SymbolicRefPrefix); ok {
			cur = strings.TrimSpace(target)
			continue
		}
		h, err := object.ParseHash(content)
		if err != nil {
			return "", fmt.Errorf("resolve ref %q: %q holds %v: %w", name, cur, err, ErrReferenceNotFound)
		}
		return h, nil
	}
	return "", fmt.Errorf("resolve ref %q: more than %d symbolic indirections: %w", name, MaxSymbolicRefDepth, ErrReferenceNotFound)
}

// RefNode is one level of the reference namespace. Directories carry
// Children sorted by name; leaves carry the resolved Hash.
type RefNode struct {
	Name     string
	IsDir    bool
	Hash     object.Hash
	Children []*RefNode
}

// Child returns the direct child with the given name, or nil.
func (n *RefNode) Child(name string) *RefNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// RefEntry is a flattened reference.
type RefEntry struct {
	Name string
	Hash object.Hash
}

// Flatten lists every leaf under n in display order, joining names onto
// prefix with "/".
func (n *RefNode) Flatten(prefix string) []RefEntry {
	var out []RefEntry
	for _, c := range n.Children {
		full := c.Name
		if prefix != "" {
			full = prefix + "/" + c.Name
		}
		if c.IsDir {
			out = append(out, c.Flatten(full)...)
			continue
		}
		out = append(out, RefEntry{Name: full, Hash: c.Hash})
	}
	return out
}

// ListRefs returns the refs/ namespace as a sorted tree. Every leaf is
// resolved through symbolic indirection.
func (r *Repo) ListRefs() (*RefNode, error) {
	root := &RefNode{Name: "refs", IsDir: true}
	if err := r.listRefsDir("refs", root); err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return root, nil
}

func (r *Repo) listRefsDir(rel string, node *RefNode) error {
	entries, err := os.ReadDir(r.refPath(rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".lock") {
			continue
		}
		childRel := rel + "/" + name
		if e.IsDir() {
			child := &RefNode{Name: name, IsDir: true}
			if err := r.listRefsDir(childRel, child); err != nil {
				return err
			}
			node.Children = append(node.Children, child)
			continue
		}
		h, err := r.ResolveRef(childRel)
		if errors.Is(err, ErrReferenceNotFound) {
			r.logger.Debug("skipping unresolvable ref", zap.String("ref", childRel), zap.Error(err))
			continue
		}
		if err != nil {
			return err
		}
		node.Children = append(node.Children, &RefNode{Name: name, Hash: h})
	}
	return nil
}

// ---------------------------------------------------------------------------
// Ref writes
// ---------------------------------------------------------------------------

// lockRefs takes the repository-wide exclusive ref lock. Reference updates
// are not idempotent, so every writer goes through it.
func (r *Repo) lockRefs() (func() error, error) {
	lock := flock.New(filepath.Join(r.GitDir, refLockName))
	ctx, cancel := context.WithTimeout(context.Background(), refLockWaitLimit)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, refLockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("could not get ref lock %q: %w", lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("could not lock %q", lock.Path())
	}
	return lock.Unlock, nil
}

// UpdateRef writes a literal object id to the named ref.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.UpdateRefCAS(name, h)
}

// UpdateRefCAS writes a literal object id to the named ref while holding
// the ref lock. If expectedOld is provided, the update only succeeds when
// the ref's current content equals it; "" expects the ref to be absent.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld ...object.Hash) (retErr error) {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	if !h.Valid() {
		return fmt.Errorf("update ref %q: invalid object id %q", name, h)
	}

	unlock, err := r.lockRefs()
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	defer func() {
		retErr = multierr.Append(retErr, unlock())
	}()

	refPath := r.refPath(name)
	oldHash, err := readRefContent(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old value: %w", name, err)
	}
	if len(expectedOld) == 1 && oldHash != string(expectedOld[0]) {
		return fmt.Errorf("update ref %q: %w (expected %q, found %q)", name, ErrRefCASMismatch, expectedOld[0], oldHash)
	}

	if err := writeRefFile(refPath, string(h)+"\n"); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	r.logger.Debug("ref updated", zap.String("ref", name), zap.String("old", oldHash), zap.String("new", string(h)))
	return nil
}

// SetSymbolicRef points name at another reference, e.g. HEAD at
// refs/heads/master.
func (r *Repo) SetSymbolicRef(name, target string) (retErr error) {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("set symbolic ref: %w", err)
	}
	if err := validateRefName(target); err != nil {
		return fmt.Errorf("set symbolic ref %q: %w", name, err)
	}

	unlock, err := r.lockRefs()
	if err != nil {
		return fmt.Errorf("set symbolic ref %q: %w", name, err)
	}
	defer func() {
		retErr = multierr.Append(retErr, unlock())
	}()

	if err := writeRefFile(r.refPath(name), SymbolicRefPrefix+target+"\n"); err != nil {
		return fmt.Errorf("set symbolic ref %q: %w", name, err)
	}
	r.logger.Debug("symbolic ref updated", zap.String("ref", name), zap.String("target", target))
	return nil
}

// DeleteRef removes a reference file.
func (r *Repo) DeleteRef(name string) (retErr error) {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}

	unlock, err := r.lockRefs()
	if err != nil {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	defer func() {
		retErr = multierr.Append(retErr, unlock())
	}()

	if err := os.Remove(r.refPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete ref %q: %w", name, ErrReferenceNotFound)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

func readRefContent(refPath string) (string, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeRefFile replaces refPath atomically via a temp file and rename.
func writeRefFile(refPath, content string) error {
	dir := filepath.Dir(refPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-ref-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.WriteString(content)
	if werr == nil {
		werr = tmp.Sync()
	}
	if err := multierr.Combine(werr, tmp.Close()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmpName, refPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
