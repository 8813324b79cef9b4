package ops

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/treeutil"
)

// StatusResult reports the four path sets a status command prints, plus the
// branch/detached/merge-in-progress context around them.
type StatusResult struct {
	Branch          string
	Detached        bool
	MergeInProgress bool
	Staged          []string // new or modified in the index relative to HEAD's tree
	Unstaged        []string // workspace differs from the index
	Untracked       []string // on disk, absent from both HEAD and the index
	Deleted         []string // in the index, absent from the workspace
}

// metaDirName is skipped when walking the workspace for untracked files.
const metaDirName = ".git"

// Status computes the status report by comparing the HEAD tree, the
// staging index, and the workspace on disk.
func Status(store *objstore.Store, refs *refstore.Store, idx *index.Index, workDir string) (StatusResult, error) {
	var res StatusResult

	detached, err := refs.IsDetached()
	if err != nil {
		return res, err
	}
	res.Detached = detached
	branch, err := refs.CurrentBranch()
	if err != nil {
		return res, err
	}
	res.Branch = branch

	_, inMerge, err := refs.MergeHead()
	if err != nil {
		return res, err
	}
	res.MergeInProgress = inMerge

	head, err := refs.ResolveHEAD()
	if err != nil {
		return res, err
	}
	var headIndex map[string]objstore.ID
	if head != "" {
		headCommit, err := store.GetCommit(head)
		if err != nil {
			return res, err
		}
		headIndex, err = treeutil.TreeToIndex(store, headCommit.Tree)
		if err != nil {
			return res, err
		}
	} else {
		headIndex = map[string]objstore.ID{}
	}

	staged := make(map[string]struct{})
	for p, id := range idx.Snapshot() {
		if headIndex[p] != id {
			staged[p] = struct{}{}
		}
	}
	res.Staged = sortedKeys(staged)

	workFiles, err := scanWorkspace(workDir)
	if err != nil {
		return res, err
	}

	var unstaged, untracked, deleted []string
	staging := idx.Snapshot()
	for p, id := range staging {
		content, onDisk := workFiles[p]
		if !onDisk {
			deleted = append(deleted, p)
			continue
		}
		if objstore.Hash(objstore.KindBlob, content) != id {
			unstaged = append(unstaged, p)
		}
	}
	for p := range workFiles {
		if _, tracked := staging[p]; tracked {
			continue
		}
		if _, wasTracked := headIndex[p]; wasTracked {
			continue
		}
		untracked = append(untracked, p)
	}

	sort.Strings(unstaged)
	sort.Strings(untracked)
	sort.Strings(deleted)
	res.Unstaged = unstaged
	res.Untracked = untracked
	res.Deleted = deleted

	return res, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// scanWorkspace walks workDir, skipping the metadata directory, and returns
// every regular file's content keyed by its slash-separated relative path.
func scanWorkspace(workDir string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == metaDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(filepath.ToSlash(rel), metaDirName+"/") {
			return nil
		}
		//nolint:gosec // G304: path is produced by WalkDir rooted at the repository's own workDir
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		out[filepath.ToSlash(rel)] = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
