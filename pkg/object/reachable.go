package object

import (
	"fmt"
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// object references. Missing objects are ignored. Each object is visited at
// most once, so malformed graphs cannot loop.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	if len(roots) == 0 {
		return out, nil
	}

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[h]; ok {
			continue
		}
		if !s.Has(h) {
			continue
		}
		out[h] = struct{}{}

		obj, err := s.Read(h)
		if err != nil {
			return nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		stack = append(stack, ReferencedHashes(obj)...)
	}

	return out, nil
}

// ReferencedHashes lists the ids obj points at directly.
func ReferencedHashes(obj Object) []Hash {
	switch o := obj.(type) {
	case *Blob:
		return nil
	case *Tag:
		return []Hash{o.Target()}
	case *Commit:
		refs := make([]Hash, 0, 1+len(o.Values("parent")))
		refs = append(refs, o.TreeHash())
		refs = append(refs, o.Parents()...)
		return refs
	case *Tree:
		refs := make([]Hash, 0, len(o.Entries))
		for _, e := range o.Entries {
			// Gitlinks name commits in another repository.
			if e.Mode == TreeModeGitlink {
				continue
			}
			refs = append(refs, e.Target)
		}
		return refs
	default:
		return nil
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.ToLower(strings.TrimSpace(string(h))))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
