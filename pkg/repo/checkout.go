package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/wyag/pkg/object"
	"go.uber.org/zap"
)

// Checkout writes the tree that name resolves to into dest. A commit or
// tag is followed to its tree. dest must be absent or an empty directory;
// existing content is never touched.
func (r *Repo) Checkout(name, dest string) error {
	h, err := r.Find(name, object.TypeTree, true)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	info, err := os.Stat(dest)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("checkout: %s is not a directory", dest)
		}
		entries, err := os.ReadDir(dest)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("checkout: %s is not empty", dest)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	default:
		return fmt.Errorf("checkout: %w", err)
	}

	if err := r.checkoutTree(h, dest); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	r.logger.Debug("checked out", zap.String("name", name), zap.String("tree", string(h)), zap.String("dest", dest))
	return nil
}

func (r *Repo) checkoutTree(h object.Hash, dir string) error {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		if err := validateEntryName(e.Path); err != nil {
			return fmt.Errorf("tree %s: %w", h, err)
		}
		dest := filepath.Join(dir, e.Path)

		switch {
		case e.IsDir():
			if err := os.Mkdir(dest, 0o755); err != nil {
				return err
			}
			if err := r.checkoutTree(e.Target, dest); err != nil {
				return err
			}
		case e.Mode == object.TreeModeGitlink:
			continue
		case e.Mode == object.TreeModeSymlink:
			blob, err := r.Store.ReadBlob(e.Target)
			if err != nil {
				return fmt.Errorf("read %s: %w", e.Path, err)
			}
			if err := os.Symlink(string(blob.Data), dest); err != nil {
				return err
			}
		case e.Mode == object.TreeModeFile || e.Mode == object.TreeModeExecutable:
			blob, err := r.Store.ReadBlob(e.Target)
			if err != nil {
				return fmt.Errorf("read %s: %w", e.Path, err)
			}
			if err := os.WriteFile(dest, blob.Data, filePermFromMode(e.Mode)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("tree %s entry %q: %w: unsupported mode %s", h, e.Path, object.ErrMalformedObject, e.Mode)
		}
	}
	return nil
}

// validateEntryName rejects tree entry names that would escape the
// checkout directory.
func validateEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..", name == DotGit:
		return fmt.Errorf("%w: refusing entry name %q", object.ErrMalformedObject, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: refusing entry name %q", object.ErrMalformedObject, name)
	}
	return nil
}
