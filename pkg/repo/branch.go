package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/wyag/pkg/object"
)

const headRefPrefix = "refs/heads/"

// CreateBranch creates refs/heads/<name> pointing at target. It fails if
// the branch already exists.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	if err := validateBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if err := r.UpdateRefCAS(headRefPrefix+name, target, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists", name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes refs/heads/<name>. The current branch cannot be
// deleted.
func (r *Repo) DeleteBranch(name string) error {
	if err := validateBranchName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}
	if err := r.DeleteRef(headRefPrefix + name); err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			return fmt.Errorf("delete branch: branch %q does not exist", name)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns every branch under refs/heads/ in sorted order.
func (r *Repo) ListBranches() ([]RefEntry, error) {
	entries, err := r.listUnder("heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return entries, nil
}

// CurrentBranch returns the branch HEAD points at, or "" when HEAD is
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if name, ok := strings.CutPrefix(head, headRefPrefix); ok {
		return name, nil
	}
	return "", nil
}

func validateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name is required")
	}
	if err := validateRefName(headRefPrefix + name); err != nil {
		return fmt.Errorf("invalid branch name %q", name)
	}
	return nil
}
