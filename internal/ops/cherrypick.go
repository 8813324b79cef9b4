package ops

import (
	"sort"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/treeutil"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// CherryPick applies the changes commitID introduces relative to its first
// parent onto the current index and workspace. A path is
// conflicted when the current snapshot already diverges from the parent on
// that path; conflicted paths are left untouched in both index and
// workspace, and reported via CherryPickConflicts. Non-conflicting paths are
// staged and materialized regardless of whether other paths in the same
// commit conflicted.
func CherryPick(store *objstore.Store, idx *index.Index, workDir string, commitID objstore.ID) error {
	commit, err := store.GetCommit(commitID)
	if err != nil {
		return err
	}
	if len(commit.Parents) == 0 {
		return vcserr.New(vcserr.InitialCommitCherryPick, "ops: cannot cherry-pick a commit with no parents")
	}
	parent, err := store.GetCommit(commit.Parents[0])
	if err != nil {
		return err
	}

	parentIndex, err := treeutil.TreeToIndex(store, parent.Tree)
	if err != nil {
		return err
	}
	commitIndex, err := treeutil.TreeToIndex(store, commit.Tree)
	if err != nil {
		return err
	}

	changed := make(map[string]struct{})
	for p, id := range parentIndex {
		if commitIndex[p] != id {
			changed[p] = struct{}{}
		}
	}
	for p, id := range commitIndex {
		if parentIndex[p] != id {
			changed[p] = struct{}{}
		}
	}

	current := idx.Snapshot()
	var conflicts []string
	for p := range changed {
		parentID, inParent := parentIndex[p]
		currentID, inCurrent := current[p]
		if inParent != inCurrent || parentID != currentID {
			conflicts = append(conflicts, p)
		}
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
	}

	for p := range changed {
		if contains(conflicts, p) {
			continue
		}
		newID, stillPresent := commitIndex[p]
		if !stillPresent {
			idx.Remove(p)
			if err := removeFile(workDir, p); err != nil {
				return err
			}
			continue
		}
		idx.Put(p, newID)
		content, err := store.GetBlob(newID)
		if err != nil {
			return err
		}
		if err := writeFile(workDir, p, content); err != nil {
			return err
		}
	}

	if len(conflicts) > 0 {
		return vcserr.WithConflicts(vcserr.CherryPickConflicts, conflicts)
	}
	return nil
}

func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}
