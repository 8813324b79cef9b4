package repo

import (
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/ops"
	"github.com/kirr-vcs/vcs/internal/stash"
)

// Add stages each of paths (file or directory, relative to WorkDir) into
// idx. The caller is responsible for loading idx beforehand and saving it
// back afterward — mirroring how every other facade method here takes the
// index as an explicit argument instead of caching one on Repository.
func (r *Repository) Add(idx *index.Index, paths []string) error {
	for _, p := range paths {
		if err := idx.AddPath(r.Store, r.workDir, p); err != nil {
			return err
		}
	}
	return nil
}

// Commit builds a commit from idx's current contents and advances HEAD.
func (r *Repository) Commit(idx *index.Index, message string, author commitengine.Identity, now time.Time) (commitengine.Result, error) {
	return commitengine.Commit(r.Store, r.Refs, idx, commitengine.Options{
		Message: message,
		Author:  author,
		Now:     now,
	})
}

// Checkout switches the working tree and HEAD to target (a branch name or
// a commit id), optionally creating a new branch first.
func (r *Repository) Checkout(idx *index.Index, target string, create bool) error {
	return ops.Checkout(r.Store, r.Refs, idx, r.workDir, target, create)
}

// CreateBranch points a new branch ref at HEAD's current commit.
func (r *Repository) CreateBranch(name string) error {
	head, err := r.Refs.ResolveHEAD()
	if err != nil {
		return err
	}
	return r.Refs.SetBranch(name, head)
}

// DeleteBranch removes a branch ref.
func (r *Repository) DeleteBranch(name string) error {
	return r.Refs.DeleteBranch(name)
}

// ListBranches returns every branch name, sorted.
func (r *Repository) ListBranches() ([]string, error) {
	return r.Refs.ListBranches()
}

// CurrentBranch returns the branch HEAD is attached to, or refstore.Detached
// ("detached") if HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	return r.Refs.CurrentBranch()
}

// Merge merges opts.Branch into the current branch.
func (r *Repository) Merge(idx *index.Index, opts ops.MergeOptions) (ops.MergeResult, error) {
	return ops.Merge(r.Store, r.Refs, idx, r.workDir, opts)
}

// CherryPick replays commitID's changes onto the current HEAD.
func (r *Repository) CherryPick(idx *index.Index, commitID objstore.ID) error {
	return ops.CherryPick(r.Store, idx, r.workDir, commitID)
}

// Reset moves HEAD to commitID per mode.
func (r *Repository) Reset(idx *index.Index, commitID objstore.ID, mode ops.ResetMode) error {
	return ops.Reset(r.Store, r.Refs, idx, r.workDir, commitID, mode)
}

// CreateTag records a new tag, annotated or lightweight per opts.
func (r *Repository) CreateTag(opts ops.CreateTagOptions) error {
	return ops.CreateTag(r.Store, r.Refs, opts)
}

// DeleteTag removes a tag ref.
func (r *Repository) DeleteTag(name string) error {
	return ops.DeleteTag(r.Refs, name)
}

// ListTags returns every tag name, sorted.
func (r *Repository) ListTags() ([]string, error) {
	return ops.ListTags(r.Refs)
}

// ResolveTagCommit peels a tag (annotated or lightweight) to its commit id.
func (r *Repository) ResolveTagCommit(name string) (objstore.ID, error) {
	return ops.ResolveTagCommit(r.Store, r.Refs, name)
}

// StashSave snapshots the current staged changes and clears them from the
// index and working tree.
func (r *Repository) StashSave(idx *index.Index, message string, now int64) (bool, error) {
	return ops.StashSave(r.Store, r.Refs, idx, r.workDir, r.StashPath(), message, now)
}

// StashList returns the stash stack, newest first.
func (r *Repository) StashList() ([]stash.Entry, error) {
	return ops.StashList(r.StashPath())
}

// StashPop applies the nth stash entry and removes it from the stack.
func (r *Repository) StashPop(idx *index.Index, n int) error {
	return ops.StashPop(r.Store, idx, r.workDir, r.StashPath(), n)
}

// StashApply applies the nth stash entry, leaving the stack unchanged.
func (r *Repository) StashApply(idx *index.Index, n int) error {
	return ops.StashApply(r.Store, idx, r.workDir, r.StashPath(), n)
}

// StashDrop removes the nth stash entry without applying it.
func (r *Repository) StashDrop(n int) error {
	return ops.StashDrop(r.StashPath(), n)
}

// Status reports the working tree's staged/unstaged/untracked/deleted
// paths relative to HEAD and idx.
func (r *Repository) Status(idx *index.Index) (ops.StatusResult, error) {
	return ops.Status(r.Store, r.Refs, idx, r.workDir)
}

// Log follows HEAD's first-parent chain, up to max commits (0 = all).
func (r *Repository) Log(max int) ([]ops.LogEntry, error) {
	return ops.Log(r.Store, r.Refs, max)
}

// DiffIndexVsWorkspace compares the staging index against the working tree.
func (r *Repository) DiffIndexVsWorkspace(idx *index.Index) ([]ops.FileDiff, error) {
	return ops.DiffIndexVsWorkspace(r.Store, idx, r.workDir)
}

// DiffCommitVsWorkspace compares a commit's tree against the working tree.
func (r *Repository) DiffCommitVsWorkspace(commitID objstore.ID) ([]ops.FileDiff, error) {
	return ops.DiffCommitVsWorkspace(r.Store, commitID, r.workDir)
}

// DiffCommitVsCommit compares two commits' trees.
func (r *Repository) DiffCommitVsCommit(fromID, toID objstore.ID) ([]ops.FileDiff, error) {
	return ops.DiffCommitVsCommit(r.Store, fromID, toID)
}
