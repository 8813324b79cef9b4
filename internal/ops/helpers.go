// Package ops implements the higher-level repository operations that sit on
// top of the object store, reference store, index, and merge engine:
// checkout, reset, cherry-pick, stash, tag management, status, log, and
// diff.
package ops

import (
	"os"
	"path/filepath"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/treeutil"
)

// loadIndexFromTree replaces idx's contents with treeID's flattened entries,
// the "index now matches this tree" state that checkout, reset, and
// fast-forward merges leave behind.
func loadIndexFromTree(store *objstore.Store, idx *index.Index, treeID objstore.ID) error {
	entries, err := treeutil.TreeToIndex(store, treeID)
	if err != nil {
		return err
	}
	idx.Clear()
	for p, id := range entries {
		idx.Put(p, id)
	}
	return nil
}

// isHexID reports whether s has the shape of a full hex object id.
func isHexID(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// writeFile writes content to root/path, creating parent directories.
func writeFile(root, path string, content []byte) error {
	target := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, content, 0o644)
}

// removeFile deletes root/path if present, tolerating absence.
func removeFile(root, path string) error {
	target := filepath.Join(root, filepath.FromSlash(path))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
