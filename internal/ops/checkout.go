package ops

import (
	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
	"github.com/kirr-vcs/vcs/internal/workspace"
)

// resolveCheckoutTarget decides whether target names a commit directly
// (detached checkout) or should be treated as a branch name. An annotated
// tag id is dereferenced to its target commit first, so a tag-object id is
// never misinterpreted as a non-branch, non-commit checkout target.
func resolveCheckoutTarget(store *objstore.Store, target string) (commitID objstore.ID, isCommit bool, err error) {
	if !isHexID(target) {
		return "", false, nil
	}
	id := objstore.ID(target)
	if !store.Exists(id) {
		return "", false, nil
	}

	kind, payload, err := store.Get(id)
	if err != nil {
		return "", false, err
	}
	switch kind {
	case objstore.KindCommit:
		return id, true, nil
	case objstore.KindTag:
		tag, err := objstore.ParseTag(payload)
		if err != nil {
			return "", false, err
		}
		if tag.ObjKind == objstore.KindCommit {
			return tag.Object, true, nil
		}
		return "", false, nil
	default:
		return "", false, nil
	}
}

// Checkout switches the working tree and HEAD to target. If target
// resolves to a commit it enters detached HEAD there; otherwise it is
// treated as a branch name, optionally created at current HEAD.
func Checkout(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir, target string, create bool) error {
	fromHead, err := refs.ResolveHEAD()
	if err != nil {
		return err
	}
	var fromTree objstore.ID
	if fromHead != "" {
		fromCommit, err := store.GetCommit(fromHead)
		if err != nil {
			return err
		}
		fromTree = fromCommit.Tree
	}

	commitID, isCommit, err := resolveCheckoutTarget(store, target)
	if err != nil {
		return err
	}

	if isCommit {
		commit, err := store.GetCommit(commitID)
		if err != nil {
			return err
		}
		if err := workspace.SwitchWorkspace(store, fromTree, commit.Tree, workDir); err != nil {
			return err
		}
		if err := refs.SetHEADDetached(commitID); err != nil {
			return err
		}
		return loadIndexFromTree(store, idx, commit.Tree)
	}

	if !refs.BranchExists(target) {
		if !create {
			return vcserr.New(vcserr.UnknownBranch, "ops: unknown branch %q", target)
		}
		if err := refs.SetBranch(target, fromHead); err != nil {
			return err
		}
	}

	branchTip, err := refs.GetBranch(target)
	if err != nil {
		return err
	}
	var branchTree objstore.ID
	if branchTip != "" {
		branchCommit, err := store.GetCommit(branchTip)
		if err != nil {
			return err
		}
		branchTree = branchCommit.Tree
	}

	if err := workspace.SwitchWorkspace(store, fromTree, branchTree, workDir); err != nil {
		return err
	}
	if err := refs.SetHEADSymbolic(target); err != nil {
		return err
	}
	return loadIndexFromTree(store, idx, branchTree)
}
