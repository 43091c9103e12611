package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/wyag/pkg/object"
	"go.uber.org/zap"
)

// CommitTree writes a commit for tree with the given parents, in order.
// author is used for both the author and committer headers. The tree and
// every parent must already be stored with the right kind.
func (r *Repo) CommitTree(tree object.Hash, parents []object.Hash, author, message string, when time.Time) (object.Hash, error) {
	if err := r.expectKind(tree, object.TypeTree); err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	for _, p := range parents {
		if err := r.expectKind(p, object.TypeCommit); err != nil {
			return "", fmt.Errorf("commit tree: parent: %w", err)
		}
	}

	author = strings.TrimSpace(author)
	if author == "" {
		return "", fmt.Errorf("commit tree: author is required")
	}
	if when.IsZero() {
		when = r.now()
	}
	sig := []byte(formatSignature(author, when))

	c := &object.Commit{}
	c.Add("tree", []byte(tree))
	for _, p := range parents {
		c.Add("parent", []byte(p))
	}
	c.Add("author", sig)
	c.Add("committer", sig)
	c.Message = []byte(normalizeMessage(message))

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	r.logger.Debug("commit written", zap.String("hash", string(h)), zap.Int("parents", len(parents)))
	return h, nil
}

func (r *Repo) expectKind(h object.Hash, want object.ObjectType) error {
	found, _, err := r.Store.ReadRaw(h)
	if err != nil {
		return fmt.Errorf("read %s: %w", h, err)
	}
	if found != want {
		return &object.KindMismatchError{Hash: h, Want: want, Found: found}
	}
	return nil
}
