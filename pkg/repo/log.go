package repo

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/wyag/pkg/object"
	"go.uber.org/multierr"
)

// LogEntry is one commit visited by Log.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// Summary returns the first line of the commit message.
func (e LogEntry) Summary() string {
	msg := strings.TrimSpace(string(e.Commit.Message))
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

// Log walks history depth-first from start, visiting a commit's first
// parent before its other parents and each commit once. limit <= 0 means
// no limit.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var out []LogEntry
	visited := make(map[object.Hash]struct{})
	stack := []object.Hash{start}

	for len(stack) > 0 {
		if limit > 0 && len(out) >= limit {
			break
		}
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[h]; seen {
			continue
		}
		visited[h] = struct{}{}

		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", h, err)
		}
		out = append(out, LogEntry{Hash: h, Commit: c})

		parents := c.Parents()
		for i := len(parents) - 1; i >= 0; i-- {
			if _, seen := visited[parents[i]]; !seen {
				stack = append(stack, parents[i])
			}
		}
	}
	return out, nil
}

// WriteLogGraphviz writes the history reachable from start as a graphviz
// digraph. Each commit is a node labelled with its short id and summary;
// each parent link is an edge.
func (r *Repo) WriteLogGraphviz(w io.Writer, start object.Hash) (retErr error) {
	entries, err := r.Log(start, 0)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	defer func() {
		retErr = multierr.Append(retErr, bw.Flush())
	}()

	fmt.Fprintln(bw, "digraph wyaglog{")
	fmt.Fprintln(bw, "  node[shape=rect]")
	for _, e := range entries {
		fmt.Fprintf(bw, "  c_%s [label=\"%s: %s\"]\n", e.Hash, e.Hash.Short(7), escapeGraphvizLabel(e.Summary()))
		for _, p := range e.Commit.Parents() {
			fmt.Fprintf(bw, "  c_%s -> c_%s;\n", e.Hash, p)
		}
	}
	_, err = fmt.Fprintln(bw, "}")
	return err
}

func escapeGraphvizLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
