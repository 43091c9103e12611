package repo

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/odvcencio/wyag/pkg/object"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LsTreeRow is one line of ls-tree output.
type LsTreeRow struct {
	Mode string // zero-padded to six digits
	Type object.ObjectType
	Hash object.Hash
	Path string
}

func (row LsTreeRow) String() string {
	return fmt.Sprintf("%s %s %s\t%s", row.Mode, row.Type, row.Hash, row.Path)
}

// LsTree lists the tree name resolves to. Commits and tags are followed to
// their tree. With recursive, subtrees are expanded in place instead of
// being listed.
func (r *Repo) LsTree(name string, recursive bool) ([]LsTreeRow, error) {
	h, err := r.Find(name, object.TypeTree, true)
	if err != nil {
		return nil, fmt.Errorf("ls-tree: %w", err)
	}
	var rows []LsTreeRow
	if err := r.lsTree(h, "", recursive, &rows); err != nil {
		return nil, fmt.Errorf("ls-tree: %w", err)
	}
	return rows, nil
}

func (r *Repo) lsTree(h object.Hash, prefix string, recursive bool, rows *[]LsTreeRow) error {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		kind, err := entryKind(e.Mode)
		if err != nil {
			return fmt.Errorf("tree %s entry %q: %w", h, e.Path, err)
		}
		full := path.Join(prefix, e.Path)
		if recursive && kind == object.TypeTree {
			if err := r.lsTree(e.Target, full, recursive, rows); err != nil {
				return err
			}
			continue
		}
		*rows = append(*rows, LsTreeRow{
			Mode: padMode(e.Mode),
			Type: kind,
			Hash: e.Target,
			Path: full,
		})
	}
	return nil
}

// entryKind derives the kind of object a tree entry points at from its
// mode, without reading the object.
func entryKind(mode string) (object.ObjectType, error) {
	switch padMode(mode)[:2] {
	case "04":
		return object.TypeTree, nil
	case "10", "12":
		return object.TypeBlob, nil
	case "16":
		return object.TypeCommit, nil
	default:
		return "", fmt.Errorf("%w: unknown tree entry mode %q", object.ErrMalformedObject, mode)
	}
}

func padMode(mode string) string {
	for len(mode) < 6 {
		mode = "0" + mode
	}
	return mode
}

// dirNode is a directory snapshot pending storage.
type dirNode struct {
	entries []pendingEntry
}

type pendingEntry struct {
	name    string
	mode    string
	absPath string   // file or symlink source
	sub     *dirNode // set for directories
	hash    object.Hash
}

// WriteTreeFromDir stores the contents of dir as blob and tree objects and
// returns the root tree id. .git directories and empty directories are
// skipped; entries are written in git's canonical order.
func (r *Repo) WriteTreeFromDir(ctx context.Context, dir string) (object.Hash, error) {
	var files []*pendingEntry
	root, err := scanDir(dir, &files)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readEntryContent(f)
			if err != nil {
				return err
			}
			h, err := r.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				return fmt.Errorf("write blob %s: %w", f.absPath, err)
			}
			f.hash = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}

	h, err := r.writeDirNode(root)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	r.logger.Debug("tree written", zap.String("dir", dir), zap.String("hash", string(h)), zap.Int("blobs", len(files)))
	return h, nil
}

func readEntryContent(f *pendingEntry) ([]byte, error) {
	if f.mode == object.TreeModeSymlink {
		target, err := os.Readlink(f.absPath)
		if err != nil {
			return nil, fmt.Errorf("readlink %s: %w", f.absPath, err)
		}
		return []byte(target), nil
	}
	data, err := os.ReadFile(f.absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.absPath, err)
	}
	return data, nil
}

// scanDir builds the directory skeleton and appends every file and symlink
// to files. It returns nil for a directory with nothing to store.
func scanDir(dir string, files *[]*pendingEntry) (*dirNode, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	node := &dirNode{}
	for _, de := range dirEntries {
		name := de.Name()
		if name == DotGit {
			continue
		}
		abs := filepath.Join(dir, name)
		info, err := os.Lstat(abs)
		if err != nil {
			return nil, err
		}
		mode, ok := modeFromFileInfo(info)
		if !ok {
			continue
		}

		if mode == object.TreeModeDir {
			sub, err := scanDir(abs, files)
			if err != nil {
				return nil, err
			}
			if sub == nil {
				continue
			}
			node.entries = append(node.entries, pendingEntry{name: name, mode: mode, sub: sub})
			continue
		}
		node.entries = append(node.entries, pendingEntry{name: name, mode: mode, absPath: abs})
	}
	if len(node.entries) == 0 {
		return nil, nil
	}

	sort.Slice(node.entries, func(i, j int) bool {
		return canonicalName(node.entries[i]) < canonicalName(node.entries[j])
	})
	for i := range node.entries {
		if node.entries[i].sub == nil {
			*files = append(*files, &node.entries[i])
		}
	}
	return node, nil
}

// canonicalName is the sort key git uses for tree entries: directories
// compare as if they had a trailing slash.
func canonicalName(e pendingEntry) string {
	if e.sub != nil {
		return e.name + "/"
	}
	return e.name
}

func (r *Repo) writeDirNode(node *dirNode) (object.Hash, error) {
	tree := &object.Tree{}
	if node != nil {
		tree.Entries = make([]object.TreeEntry, 0, len(node.entries))
		for _, e := range node.entries {
			h := e.hash
			if e.sub != nil {
				sub, err := r.writeDirNode(e.sub)
				if err != nil {
					return "", err
				}
				h = sub
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{Mode: e.mode, Path: e.name, Target: h})
		}
	}
	return r.Store.WriteTree(tree)
}
