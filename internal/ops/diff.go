package ops

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/textdiff"
	"github.com/kirr-vcs/vcs/internal/treeutil"
)

// FileDiff is one file's rendered unified diff. Paths whose two sides are
// byte-identical produce no FileDiff at all.
type FileDiff struct {
	Path string
	Text string
}

// contentSource resolves a path to its current bytes; ok=false means the
// path is absent on that side.
type contentSource func(path string) (content []byte, ok bool, err error)

func blobSource(store *objstore.Store, snapshot map[string]objstore.ID) contentSource {
	return func(path string) ([]byte, bool, error) {
		id, ok := snapshot[path]
		if !ok {
			return nil, false, nil
		}
		content, err := store.GetBlob(id)
		if err != nil {
			return nil, false, err
		}
		return content, true, nil
	}
}

func workspaceSource(workDir string, known map[string]struct{}) contentSource {
	return func(path string) ([]byte, bool, error) {
		if _, tracked := known[path]; !tracked {
			return nil, false, nil
		}
		//nolint:gosec // G304: path comes from the repository's own index/tree, not external input
		content, err := os.ReadFile(filepath.Join(workDir, filepath.FromSlash(path)))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return content, true, nil
	}
}

// diffPaths diffs every path in the union through oldSrc/newSrc, skipping
// paths that are byte-identical on both sides.
func diffPaths(paths map[string]struct{}, oldSrc, newSrc contentSource) ([]FileDiff, error) {
	names := make([]string, 0, len(paths))
	for p := range paths {
		names = append(names, p)
	}
	sort.Strings(names)

	var out []FileDiff
	for _, p := range names {
		oldContent, oldOK, err := oldSrc(p)
		if err != nil {
			return nil, err
		}
		newContent, newOK, err := newSrc(p)
		if err != nil {
			return nil, err
		}
		if oldOK && newOK && string(oldContent) == string(newContent) {
			continue
		}

		oldLabel, newLabel := "a/"+p, "b/"+p
		if !oldOK {
			oldLabel = "/dev/null"
		}
		if !newOK {
			newLabel = "/dev/null"
		}

		result := textdiff.Compute(oldContent, newContent, textdiff.DefaultContextLines)
		out = append(out, FileDiff{Path: p, Text: textdiff.Render(oldLabel, newLabel, result)})
	}
	return out, nil
}

func pathUnion(sets ...map[string]objstore.ID) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for p := range s {
			out[p] = struct{}{}
		}
	}
	return out
}

func pathSetFrom(m map[string]objstore.ID) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for p := range m {
		out[p] = struct{}{}
	}
	return out
}

// DiffIndexVsWorkspace compares the staging index against the files on
// disk: the "unstaged changes" view.
func DiffIndexVsWorkspace(store *objstore.Store, idx *index.Index, workDir string) ([]FileDiff, error) {
	snapshot := idx.Snapshot()
	known := pathSetFrom(snapshot)
	return diffPaths(known, blobSource(store, snapshot), workspaceSource(workDir, known))
}

// DiffCommitVsWorkspace compares commitID's tree against the files on disk.
func DiffCommitVsWorkspace(store *objstore.Store, commitID objstore.ID, workDir string) ([]FileDiff, error) {
	commit, err := store.GetCommit(commitID)
	if err != nil {
		return nil, err
	}
	snapshot, err := treeutil.TreeToIndex(store, commit.Tree)
	if err != nil {
		return nil, err
	}
	known := pathSetFrom(snapshot)
	return diffPaths(pathUnion(snapshot), blobSource(store, snapshot), workspaceSource(workDir, known))
}

// DiffCommitVsCommit compares two commits' trees directly.
func DiffCommitVsCommit(store *objstore.Store, fromID, toID objstore.ID) ([]FileDiff, error) {
	fromCommit, err := store.GetCommit(fromID)
	if err != nil {
		return nil, err
	}
	toCommit, err := store.GetCommit(toID)
	if err != nil {
		return nil, err
	}
	fromIndex, err := treeutil.TreeToIndex(store, fromCommit.Tree)
	if err != nil {
		return nil, err
	}
	toIndex, err := treeutil.TreeToIndex(store, toCommit.Tree)
	if err != nil {
		return nil, err
	}
	return diffPaths(pathUnion(fromIndex, toIndex), blobSource(store, fromIndex), blobSource(store, toIndex))
}
