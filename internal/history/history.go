// Package history implements ancestor enumeration, ancestry testing, and
// common-ancestor search over the commit graph — the three graph queries
// the merge engine needs.
package history

import "github.com/kirr-vcs/vcs/internal/objstore"

// CommitGetter is the subset of objstore.Store's interface history needs;
// satisfied directly by *objstore.Store.
type CommitGetter interface {
	GetCommit(id objstore.ID) (*objstore.Commit, error)
}

// Ancestors returns every commit reachable from id by following parent
// edges, including id itself. The walk carries a visited set so it
// terminates even over a handcrafted cyclic history.
func Ancestors(store CommitGetter, id objstore.ID) (map[objstore.ID]struct{}, error) {
	visited := make(map[objstore.ID]struct{})
	stack := []objstore.ID{id}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == "" {
			continue
		}
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		commit, err := store.GetCommit(cur)
		if err != nil {
			return nil, err
		}
		stack = append(stack, commit.Parents...)
	}

	return visited, nil
}

// IsAncestor reports whether a appears along b's first-parent chain
// (including b itself). This mirrors fast-forward semantics, which only
// ever advance along first parents.
func IsAncestor(store CommitGetter, a, b objstore.ID) (bool, error) {
	cur := b
	visited := make(map[objstore.ID]struct{})
	for cur != "" {
		if cur == a {
			return true, nil
		}
		if _, seen := visited[cur]; seen {
			return false, nil
		}
		visited[cur] = struct{}{}

		commit, err := store.GetCommit(cur)
		if err != nil {
			return false, err
		}
		if len(commit.Parents) == 0 {
			return false, nil
		}
		cur = commit.Parents[0]
	}
	return false, nil
}

// LowestCommonAncestor computes ancestors(a), then walks b along its
// first-parent chain and returns the first commit found in that set.
//
// This walks only b's first parents, so it does not find the true lowest
// common ancestor in a criss-cross merge history — a known, documented
// fidelity gap (a correct implementation would BFS over both of b's
// parents). ok is false if no common ancestor exists at all.
func LowestCommonAncestor(store CommitGetter, a, b objstore.ID) (id objstore.ID, ok bool, err error) {
	ancestorsOfA, err := Ancestors(store, a)
	if err != nil {
		return "", false, err
	}

	cur := b
	visited := make(map[objstore.ID]struct{})
	for cur != "" {
		if _, found := ancestorsOfA[cur]; found {
			return cur, true, nil
		}
		if _, seen := visited[cur]; seen {
			return "", false, nil
		}
		visited[cur] = struct{}{}

		commit, getErr := store.GetCommit(cur)
		if getErr != nil {
			return "", false, getErr
		}
		if len(commit.Parents) == 0 {
			return "", false, nil
		}
		cur = commit.Parents[0]
	}
	return "", false, nil
}
