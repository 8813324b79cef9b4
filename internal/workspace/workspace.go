// Package workspace materializes tree objects onto disk and cleans up files
// no longer tracked, the file-level half of checkout, reset, and merge.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/treeutil"
)

// RestoreTree writes every blob reachable from treeID onto disk under root,
// creating directories as needed. Existing files at the same paths are
// overwritten.
func RestoreTree(store *objstore.Store, treeID objstore.ID, root string) error {
	if treeID == "" {
		return nil
	}
	return restore(store, treeID, root)
}

func restore(store *objstore.Store, treeID objstore.ID, dir string) error {
	tree, err := store.GetTree(treeID)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		target := filepath.Join(dir, e.Name)
		switch e.Mode {
		case objstore.ModeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			if err := restore(store, e.ID, target); err != nil {
				return err
			}
		default:
			content, err := store.GetBlob(e.ID)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(target, content, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanPaths deletes the given repository-relative paths under root if they
// are regular files. Missing files are tolerated. Empty directories left
// behind are not pruned.
func CleanPaths(paths []string, root string) error {
	for _, p := range paths {
		target := filepath.Join(root, filepath.FromSlash(p))
		info, err := os.Lstat(target)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if info.IsDir() {
			continue
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// SwitchWorkspace removes the files tracked by fromTree and restores toTree
// on top, preserving any untracked files that were never part of fromTree.
func SwitchWorkspace(store *objstore.Store, fromTree, toTree objstore.ID, root string) error {
	fileset, err := treeutil.TreeToFileset(store, fromTree)
	if err != nil {
		return err
	}
	if err := CleanPaths(treeutil.SortedPaths(fileset), root); err != nil {
		return err
	}
	return RestoreTree(store, toTree, root)
}
