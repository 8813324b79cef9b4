package ops

import (
	"fmt"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/stash"
	"github.com/kirr-vcs/vcs/internal/workspace"
)

// DefaultStashMessage returns the "WIP on <branch>" prefix of the message
// recorded when "stash save" is invoked without one; the CLI appends the
// HEAD commit's short id and subject line when HEAD has a commit.
func DefaultStashMessage(branch string) string {
	return fmt.Sprintf("WIP on %s", branch)
}

// StashSave snapshots the current index as a new stash.Entry at position 0,
// clears the working tree for every currently staged path, restores HEAD's
// tree on top, and empties the index. A no-op (returns false) when the
// index is empty — there are no local changes to save.
func StashSave(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir, stashPath, message string, now int64) (bool, error) {
	if idx.Len() == 0 {
		return false, nil
	}

	branch, err := refs.CurrentBranch()
	if err != nil {
		return false, err
	}
	head, err := refs.ResolveHEAD()
	if err != nil {
		return false, err
	}

	entries, err := stash.Load(stashPath)
	if err != nil {
		return false, err
	}

	entry := stash.Entry{
		ID:        stash.NewID(),
		Message:   message,
		Timestamp: now,
		Branch:    branch,
		Commit:    head,
		Index:     idx.Snapshot(),
	}
	entries = append([]stash.Entry{entry}, entries...)
	if err := stash.Save(stashPath, entries); err != nil {
		return false, err
	}

	if err := workspace.CleanPaths(idx.Paths(), workDir); err != nil {
		return false, err
	}
	var headTree objstore.ID
	if head != "" {
		headCommit, err := store.GetCommit(head)
		if err != nil {
			return false, err
		}
		headTree = headCommit.Tree
	}
	if err := workspace.RestoreTree(store, headTree, workDir); err != nil {
		return false, err
	}
	idx.Clear()
	return true, nil
}

// StashList returns every saved stash entry, newest first.
func StashList(stashPath string) ([]stash.Entry, error) {
	return stash.Load(stashPath)
}

// stashApply restores entry n's blob ids to disk and merges its staged
// paths into idx, stashed entries overwriting current entries of the same
// path. Shared by StashApply and StashPop.
func stashApply(store *objstore.Store, idx *index.Index, workDir, stashPath string, n int) (stash.Entry, error) {
	entries, err := stash.Load(stashPath)
	if err != nil {
		return stash.Entry{}, err
	}
	entry, err := stash.At(entries, n)
	if err != nil {
		return stash.Entry{}, err
	}

	for p, id := range entry.Index {
		idx.Put(p, id)
		content, err := store.GetBlob(id)
		if err != nil {
			return stash.Entry{}, err
		}
		if err := writeFile(workDir, p, content); err != nil {
			return stash.Entry{}, err
		}
	}
	return entry, nil
}

// StashApply applies entry n without removing it from the stack.
func StashApply(store *objstore.Store, idx *index.Index, workDir, stashPath string, n int) error {
	_, err := stashApply(store, idx, workDir, stashPath, n)
	return err
}

// StashPop applies entry n and then removes it from the stack.
func StashPop(store *objstore.Store, idx *index.Index, workDir, stashPath string, n int) error {
	if _, err := stashApply(store, idx, workDir, stashPath, n); err != nil {
		return err
	}
	entries, err := stash.Load(stashPath)
	if err != nil {
		return err
	}
	if _, err := stash.At(entries, n); err != nil {
		return err
	}
	return stash.Save(stashPath, stash.Remove(entries, n))
}

// StashDrop removes entry n without applying it.
func StashDrop(stashPath string, n int) error {
	entries, err := stash.Load(stashPath)
	if err != nil {
		return err
	}
	if _, err := stash.At(entries, n); err != nil {
		return err
	}
	return stash.Save(stashPath, stash.Remove(entries, n))
}
