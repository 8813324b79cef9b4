package ops

import (
	"fmt"
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/history"
	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/merge"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/treeutil"
	"github.com/kirr-vcs/vcs/internal/vcserr"
	"github.com/kirr-vcs/vcs/internal/workspace"
)

const defaultMergeMsgFormat = "Merge branch '%s'"

// MergeOptions configures a single merge.
type MergeOptions struct {
	Branch string
	NoFF   bool
	Author commitengine.Identity
	Now    time.Time
}

// MergeResult reports what Merge did.
type MergeResult struct {
	FastForward bool
	Conflicts   []string
	CommitID    objstore.ID // commit the current branch now points at: the branch tip after a fast-forward, the new merge commit after a clean three-way merge
}

// Merge merges opts.Branch into the current branch, fast-forwarding when
// possible. On conflicts it stages the provisional values, materializes
// conflict markers for the conflicted paths, writes MERGE_HEAD/MERGE_MSG,
// and returns a MergeConflicts error carrying the path list; the caller
// resolves and invokes commitengine.Commit separately. On a clean
// three-way merge, this function creates the merge commit itself.
func Merge(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir string, opts MergeOptions) (MergeResult, error) {
	detached, err := refs.IsDetached()
	if err != nil {
		return MergeResult{}, err
	}
	if detached {
		return MergeResult{}, vcserr.New(vcserr.DetachedMerge, "ops: cannot merge in detached HEAD")
	}

	currentBranch, err := refs.CurrentBranch()
	if err != nil {
		return MergeResult{}, err
	}
	if currentBranch == opts.Branch {
		return MergeResult{}, vcserr.New(vcserr.SelfMerge, "ops: cannot merge branch %q into itself", opts.Branch)
	}
	if !refs.BranchExists(opts.Branch) {
		return MergeResult{}, vcserr.New(vcserr.UnknownBranch, "ops: unknown branch %q", opts.Branch)
	}

	head, err := refs.ResolveHEAD()
	if err != nil {
		return MergeResult{}, err
	}
	branchTip, err := refs.GetBranch(opts.Branch)
	if err != nil {
		return MergeResult{}, err
	}
	if head == branchTip {
		return MergeResult{}, vcserr.New(vcserr.AlreadyUpToDate, "ops: %q is already up to date", opts.Branch)
	}

	if !opts.NoFF {
		isAncestor, err := history.IsAncestor(store, head, branchTip)
		if err != nil {
			return MergeResult{}, err
		}
		if isAncestor {
			return fastForwardMerge(store, refs, idx, workDir, currentBranch, branchTip)
		}
	}

	return threeWayMerge(store, refs, idx, workDir, opts, head, branchTip)
}

func fastForwardMerge(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir, branch string, branchTip objstore.ID) (MergeResult, error) {
	head, err := refs.ResolveHEAD()
	if err != nil {
		return MergeResult{}, err
	}
	var fromTree objstore.ID
	if head != "" {
		headCommit, err := store.GetCommit(head)
		if err != nil {
			return MergeResult{}, err
		}
		fromTree = headCommit.Tree
	}
	targetCommit, err := store.GetCommit(branchTip)
	if err != nil {
		return MergeResult{}, err
	}

	if err := workspace.SwitchWorkspace(store, fromTree, targetCommit.Tree, workDir); err != nil {
		return MergeResult{}, err
	}
	if err := refs.SetBranch(branch, branchTip); err != nil {
		return MergeResult{}, err
	}
	if err := loadIndexFromTree(store, idx, targetCommit.Tree); err != nil {
		return MergeResult{}, err
	}

	return MergeResult{FastForward: true, CommitID: branchTip}, nil
}

func threeWayMerge(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir string, opts MergeOptions, head, branchTip objstore.ID) (MergeResult, error) {
	base, ok, err := history.LowestCommonAncestor(store, head, branchTip)
	if err != nil {
		return MergeResult{}, err
	}
	if !ok {
		return MergeResult{}, vcserr.New(vcserr.NoCommonAncestor, "ops: no common ancestor between HEAD and %q", opts.Branch)
	}

	baseCommit, err := store.GetCommit(base)
	if err != nil {
		return MergeResult{}, err
	}
	headCommit, err := store.GetCommit(head)
	if err != nil {
		return MergeResult{}, err
	}
	branchCommit, err := store.GetCommit(branchTip)
	if err != nil {
		return MergeResult{}, err
	}

	baseIndex, err := treeutil.TreeToIndex(store, baseCommit.Tree)
	if err != nil {
		return MergeResult{}, err
	}
	currentIndex, err := treeutil.TreeToIndex(store, headCommit.Tree)
	if err != nil {
		return MergeResult{}, err
	}
	branchIndex, err := treeutil.TreeToIndex(store, branchCommit.Tree)
	if err != nil {
		return MergeResult{}, err
	}

	results := merge.ClassifyPaths(baseIndex, currentIndex, branchIndex)

	idx.Clear()
	var conflicts []string
	for _, r := range results {
		switch r.Class {
		case merge.Unchanged, merge.TakeCurrent, merge.TakeBranch:
			if r.ResultID == "" {
				continue // deleted on at least one side, absent on the winning side
			}
			idx.Put(r.Path, r.ResultID)
			content, err := store.GetBlob(r.ResultID)
			if err != nil {
				return MergeResult{}, err
			}
			if err := writeFile(workDir, r.Path, content); err != nil {
				return MergeResult{}, err
			}
		case merge.Conflict:
			conflicts = append(conflicts, r.Path)
			if r.ConflictResult != "" {
				idx.Put(r.Path, r.ConflictResult)
			} else {
				idx.Remove(r.Path)
			}

			var currentContent, branchContent []byte
			if r.CurrentID != "" {
				currentContent, err = store.GetBlob(r.CurrentID)
				if err != nil {
					return MergeResult{}, err
				}
			}
			if r.BranchID != "" {
				branchContent, err = store.GetBlob(r.BranchID)
				if err != nil {
					return MergeResult{}, err
				}
			}
			marked := merge.MaterializeConflict(currentContent, branchContent)
			if err := writeFile(workDir, r.Path, marked); err != nil {
				return MergeResult{}, err
			}
		}
	}

	if len(conflicts) > 0 {
		msg := defaultMergeMessage(opts.Branch)
		if err := refs.SetMergeState(branchTip, msg); err != nil {
			return MergeResult{}, err
		}
		return MergeResult{Conflicts: conflicts}, vcserr.WithConflicts(vcserr.MergeConflicts, conflicts)
	}

	sig := objstore.Signature{Name: opts.Author.Name, Email: opts.Author.Email, When: opts.Now}
	treeID, err := treeutil.IndexToTree(store, idx.Snapshot())
	if err != nil {
		return MergeResult{}, err
	}
	commit := &objstore.Commit{
		Tree:      treeID,
		Parents:   []objstore.ID{head, branchTip},
		Author:    sig,
		Committer: sig,
		Message:   defaultMergeMessage(opts.Branch),
	}
	commitID, err := store.PutCommit(commit)
	if err != nil {
		return MergeResult{}, err
	}

	branch, err := refs.CurrentBranch()
	if err != nil {
		return MergeResult{}, err
	}
	if err := refs.SetBranch(branch, commitID); err != nil {
		return MergeResult{}, err
	}
	idx.Clear()

	return MergeResult{CommitID: commitID}, nil
}

func defaultMergeMessage(branch string) string {
	return fmt.Sprintf(defaultMergeMsgFormat, branch)
}
