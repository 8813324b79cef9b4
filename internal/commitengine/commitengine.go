// Package commitengine builds commit objects from the staging index and
// advances HEAD, handling both ordinary and merge-resolving commits.
package commitengine

import (
	"time"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/treeutil"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// Identity is the author/committer string pair used when the caller does
// not override it. Author and committer are always equal.
type Identity struct {
	Name  string
	Email string
}

// Options configures a single commit creation.
type Options struct {
	Message string
	Author  Identity
	Now     time.Time
}

// Result describes the commit just created.
type Result struct {
	ID     objstore.ID
	Tree   objstore.ID
	Parent []objstore.ID
}

// Commit builds a tree from idx, determines the parent set (two parents
// when a merge is in progress), guards against empty non-merge commits,
// writes the commit object, advances HEAD (branch ref or detached literal),
// clears merge state, and empties idx.
func Commit(store *objstore.Store, refs *refstore.Store, idx *index.Index, opts Options) (Result, error) {
	treeID, err := treeutil.IndexToTree(store, idx.Snapshot())
	if err != nil {
		return Result{}, err
	}

	mergeHead, inMerge, err := refs.MergeHead()
	if err != nil {
		return Result{}, err
	}

	head, err := refs.ResolveHEAD()
	if err != nil {
		return Result{}, err
	}

	var parents []objstore.ID
	switch {
	case inMerge && head != "":
		parents = []objstore.ID{head, mergeHead}
	case inMerge:
		parents = []objstore.ID{mergeHead}
	case head != "":
		parents = []objstore.ID{head}
	}

	if len(parents) == 1 && !inMerge {
		parentCommit, err := store.GetCommit(parents[0])
		if err != nil {
			return Result{}, err
		}
		if parentCommit.Tree == treeID {
			return Result{}, vcserr.New(vcserr.NothingToCommit, "commitengine: nothing to commit, working tree clean")
		}
	}

	sig := objstore.Signature{Name: opts.Author.Name, Email: opts.Author.Email, When: opts.Now}
	commit := &objstore.Commit{
		Tree:      treeID,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   opts.Message,
	}

	id, err := store.PutCommit(commit)
	if err != nil {
		return Result{}, err
	}

	if err := advanceHEAD(refs, id); err != nil {
		return Result{}, err
	}
	if err := refs.ClearMergeState(); err != nil {
		return Result{}, err
	}
	idx.Clear()

	return Result{ID: id, Tree: treeID, Parent: parents}, nil
}

func advanceHEAD(refs *refstore.Store, id objstore.ID) error {
	detached, err := refs.IsDetached()
	if err != nil {
		return err
	}
	if detached {
		return refs.SetHEADDetached(id)
	}
	branch, err := refs.CurrentBranch()
	if err != nil {
		return err
	}
	return refs.SetBranch(branch, id)
}
