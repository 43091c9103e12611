package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/wyag/pkg/object"
)

// ErrAmbiguousName is matched by every *AmbiguousNameError.
var ErrAmbiguousName = errors.New("ambiguous name")

// AmbiguousNameError reports a name that resolves to more than one object.
type AmbiguousNameError struct {
	Name       string
	Candidates []object.Hash
}

func (e *AmbiguousNameError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous reference %s: candidates are:", e.Name)
	for _, c := range e.Candidates {
		b.WriteString("\n - ")
		b.WriteString(string(c))
	}
	return b.String()
}

func (e *AmbiguousNameError) Is(target error) bool { return target == ErrAmbiguousName }

// namedRefPrefixes are searched, in order, for a bare name.
var namedRefPrefixes = []string{"refs/tags/", "refs/heads/", "refs/remotes/"}

// ResolveName maps a user-supplied name to candidate object ids. Lookup
// stops at the first rule that applies: blank, HEAD, a full id, a short
// id of at least MinShortHash hex digits, then named references. A nil
// result means nothing matched.
func (r *Repo) ResolveName(name string) ([]object.Hash, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if name == "HEAD" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		return []object.Hash{h}, nil
	}

	if object.IsFullHash(name) {
		return []object.Hash{object.Hash(strings.ToLower(name))}, nil
	}

	if len(name) >= r.minShortHash() && len(name) < object.HashHexSize && object.IsHex(name) {
		matches, err := r.Store.ListPrefix(name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		if len(matches) == 0 {
			return nil, nil
		}
		return matches, nil
	}

	return r.resolveNamedRefs(name)
}

func (r *Repo) minShortHash() int {
	if r.MinShortHash < 1 {
		return DefaultMinShortHash
	}
	return r.MinShortHash
}

func (r *Repo) resolveNamedRefs(name string) ([]object.Hash, error) {
	var paths []string
	if strings.HasPrefix(name, "refs/") {
		paths = append(paths, name)
	}
	for _, prefix := range namedRefPrefixes {
		paths = append(paths, prefix+name)
	}

	var out []object.Hash
	seen := make(map[object.Hash]struct{}, len(paths))
	for _, p := range paths {
		if validateRefName(p) != nil {
			continue
		}
		h, err := r.ResolveRef(p)
		if err != nil {
			if errors.Is(err, ErrReferenceNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out, nil
}

// ResolveOne resolves name to exactly one object id.
func (r *Repo) ResolveOne(name string) (object.Hash, error) {
	candidates, err := r.ResolveName(name)
	if err != nil {
		return "", err
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no such reference %q: %w", name, ErrReferenceNotFound)
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousNameError{Name: name, Candidates: candidates}
	}
}

// Find resolves name to exactly one object and, when kind is set, walks
// from it to an object of that kind. With follow, a tag yields its target
// and a commit yields its tree when a tree is wanted. Anything else ends
// in a *KindMismatchError.
func (r *Repo) Find(name string, kind object.ObjectType, follow bool) (object.Hash, error) {
	h, err := r.ResolveOne(name)
	if err != nil {
		return "", fmt.Errorf("find: %w", err)
	}
	if kind == "" {
		return h, nil
	}

	visited := make(map[object.Hash]struct{})
	for {
		if _, seen := visited[h]; seen {
			return "", fmt.Errorf("find %s: object cycle at %s: %w", name, h, object.ErrMalformedObject)
		}
		visited[h] = struct{}{}

		obj, err := r.Store.Read(h)
		if err != nil {
			return "", fmt.Errorf("find %s: %w", name, err)
		}
		found := obj.Type()
		if found == kind {
			return h, nil
		}
		if !follow {
			return "", fmt.Errorf("find: %w", &object.KindMismatchError{Name: name, Hash: h, Want: kind, Found: found})
		}

		switch o := obj.(type) {
		case *object.Tag:
			h = o.Target()
		case *object.Commit:
			if kind != object.TypeTree {
				return "", fmt.Errorf("find: %w", &object.KindMismatchError{Name: name, Hash: h, Want: kind, Found: found})
			}
			h = o.TreeHash()
		default:
			return "", fmt.Errorf("find: %w", &object.KindMismatchError{Name: name, Hash: h, Want: kind, Found: found})
		}
	}
}
