package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrNotARepository              = errors.New("not a git repository")
	ErrUnsupportedRepositoryFormat = errors.New("unsupported repository format")
)

const (
	// DotGit is the name of the repository directory inside a worktree.
	DotGit = ".git"
	// DefaultBranch is the branch HEAD points at after Init.
	DefaultBranch = "master"

	defaultDescription = "Unnamed repository; edit this file 'description' to name the repository.\n"
)

// Init creates a new repository at path. path must be absent or a
// directory that does not yet contain .git/. It creates branches/,
// objects/, refs/heads/, refs/tags/, description, HEAD and config.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("init: %s is not a directory", abs)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("init: stat %s: %w", abs, err)
	}

	gitDir := filepath.Join(abs, DotGit)
	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "branches"),
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	files := []struct {
		name string
		data string
	}{
		{"description", defaultDescription},
		{"HEAD", SymbolicRefPrefix + "refs/heads/" + DefaultBranch + "\n"},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(gitDir, f.name), []byte(f.data), 0o644); err != nil {
			return nil, fmt.Errorf("init: write %s: %w", f.name, err)
		}
	}

	cfg := DefaultConfig()
	if err := WriteConfig(gitDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r := newRepo(abs, gitDir, opts)
	r.Config = cfg
	return r, nil
}

// Open searches upward from path for a .git/ directory and opens the
// repository, validating its configuration.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, DotGit)
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(gitDir)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", gitDir, err)
			}
			r := newRepo(cur, gitDir, opts)
			r.Config = cfg
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any of the parent directories)", abs, ErrNotARepository)
		}
		cur = parent
	}
}
