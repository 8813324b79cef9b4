// Package treeutil converts between the flat staging index and the nested
// tree object graph: building trees bottom-up from a flat path set, and
// flattening existing trees back into path->blob-id form.
package treeutil

import (
	"path"
	"sort"
	"strings"

	"github.com/kirr-vcs/vcs/internal/objstore"
)

// IndexToTree builds a tree object graph from a flat path->blob-id mapping
// and returns the id of the root tree. Paths are partitioned by their first
// segment; each partition recurses into a subtree. An empty entries map
// yields the id of the empty tree.
func IndexToTree(store *objstore.Store, entries map[string]objstore.ID) (objstore.ID, error) {
	return buildTree(store, entries)
}

func buildTree(store *objstore.Store, entries map[string]objstore.ID) (objstore.ID, error) {
	type group struct {
		fileID objstore.ID
		isFile bool
		nested map[string]objstore.ID
	}
	groups := make(map[string]*group)

	for p, id := range entries {
		first, rest, hasRest := cutPath(p)
		g, ok := groups[first]
		if !ok {
			g = &group{nested: make(map[string]objstore.ID)}
			groups[first] = g
		}
		if !hasRest {
			g.isFile = true
			g.fileID = id
			continue
		}
		g.nested[rest] = id
	}

	tree := &objstore.Tree{}
	for name, g := range groups {
		if g.isFile {
			tree.Entries = append(tree.Entries, objstore.TreeEntry{
				Mode: objstore.ModeFile,
				Name: name,
				ID:   g.fileID,
			})
			continue
		}
		subID, err := buildTree(store, g.nested)
		if err != nil {
			return "", err
		}
		tree.Entries = append(tree.Entries, objstore.TreeEntry{
			Mode: objstore.ModeDir,
			Name: name,
			ID:   subID,
		})
	}

	return store.PutTree(tree)
}

// cutPath splits a slash-separated repository path into its first segment
// and the remainder, reporting whether a remainder exists.
func cutPath(p string) (first, rest string, hasRest bool) {
	idx := strings.IndexByte(p, '/')
	if idx < 0 {
		return p, "", false
	}
	return p[:idx], p[idx+1:], true
}

// TreeToIndex walks treeID depth-first and returns the flat path->blob-id
// mapping it represents. An empty tree id (no commits yet) and the object id
// of an actual empty tree both yield an empty map.
func TreeToIndex(store *objstore.Store, treeID objstore.ID) (map[string]objstore.ID, error) {
	out := make(map[string]objstore.ID)
	if treeID == "" {
		return out, nil
	}
	if err := walkTree(store, treeID, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkTree(store *objstore.Store, treeID objstore.ID, prefix string, out map[string]objstore.ID) error {
	tree, err := store.GetTree(treeID)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		p := e.Name
		if prefix != "" {
			p = path.Join(prefix, e.Name)
		}
		switch e.Mode {
		case objstore.ModeDir:
			if err := walkTree(store, e.ID, p, out); err != nil {
				return err
			}
		default:
			out[p] = e.ID
		}
	}
	return nil
}

// TreeToFileset returns the set of paths reachable from treeID, without
// their blob ids. Used for workspace cleanup where only path identity
// matters.
func TreeToFileset(store *objstore.Store, treeID objstore.ID) (map[string]struct{}, error) {
	entries, err := TreeToIndex(store, treeID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(entries))
	for p := range entries {
		out[p] = struct{}{}
	}
	return out, nil
}

// SortedPaths is a small helper used by callers (status, diff) that need a
// deterministic iteration order over a path set.
func SortedPaths(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
