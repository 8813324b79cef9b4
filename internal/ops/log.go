package ops

import (
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
)

// LogEntry pairs a commit with its id for display.
type LogEntry struct {
	ID     objstore.ID
	Commit *objstore.Commit
}

// Log follows HEAD's first-parent chain up to max commits. A max of 0 or
// less means unbounded.
func Log(store *objstore.Store, refs *refstore.Store, max int) ([]LogEntry, error) {
	cur, err := refs.ResolveHEAD()
	if err != nil {
		return nil, err
	}

	var out []LogEntry
	for cur != "" {
		if max > 0 && len(out) >= max {
			break
		}
		commit, err := store.GetCommit(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, LogEntry{ID: cur, Commit: commit})
		if len(commit.Parents) == 0 {
			break
		}
		cur = commit.Parents[0]
	}
	return out, nil
}
