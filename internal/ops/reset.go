package ops

import (
	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/workspace"
)

// ResetMode selects how far Reset reaches: just HEAD, HEAD plus index, or
// HEAD plus index plus workspace.
type ResetMode int

const (
	ResetSoft ResetMode = iota
	ResetMixed
	ResetHard
)

// Reset moves HEAD (and, depending on mode, the index and workspace) to
// commitID. In a detached HEAD the literal HEAD pointer moves directly
// rather than any branch ref; resetting while detached is not an error.
func Reset(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir string, commitID objstore.ID, mode ResetMode) error {
	oldPaths := idx.Paths()

	target, err := store.GetCommit(commitID)
	if err != nil {
		return err
	}

	detached, err := refs.IsDetached()
	if err != nil {
		return err
	}
	if detached {
		if err := refs.SetHEADDetached(commitID); err != nil {
			return err
		}
	} else {
		branch, err := refs.CurrentBranch()
		if err != nil {
			return err
		}
		if err := refs.SetBranch(branch, commitID); err != nil {
			return err
		}
	}

	if mode == ResetSoft {
		return nil
	}

	if err := loadIndexFromTree(store, idx, target.Tree); err != nil {
		return err
	}
	if mode == ResetMixed {
		return nil
	}

	if err := workspace.CleanPaths(oldPaths, workDir); err != nil {
		return err
	}
	return workspace.RestoreTree(store, target.Tree, workDir)
}
