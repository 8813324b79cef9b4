package repo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// ResolveRevision resolves rev to a commit id. Supported forms: "HEAD", a
// full 40-character hex object id, a branch name, a tag name (peeled to
// its target commit if annotated), or an unambiguous hex prefix of at
// least 4 characters.
func (r *Repository) ResolveRevision(rev string) (objstore.ID, error) {
	if rev == "HEAD" {
		head, err := r.Refs.ResolveHEAD()
		if err != nil {
			return "", err
		}
		if head == "" {
			return "", vcserr.New(vcserr.ObjectNotFound, "repo: HEAD has no commits yet")
		}
		return head, nil
	}

	if isHexID(rev) {
		if r.Store.Exists(objstore.ID(rev)) {
			return peelToCommit(r.Store, objstore.ID(rev))
		}
	}

	if r.Refs.BranchExists(rev) {
		return r.Refs.GetBranch(rev)
	}

	if r.Refs.TagExists(rev) {
		id, err := r.Refs.GetTag(rev)
		if err != nil {
			return "", err
		}
		return peelToCommit(r.Store, id)
	}

	if len(rev) >= 4 && len(rev) < 40 && isHexPrefix(rev) {
		if id, ok, err := r.resolvePrefix(rev); err != nil {
			return "", err
		} else if ok {
			return peelToCommit(r.Store, id)
		}
	}

	return "", vcserr.New(vcserr.ObjectNotFound, "repo: unknown revision %q", rev)
}

// peelToCommit dereferences an annotated tag object to the commit it
// ultimately points at; any other object kind passes through unchanged.
func peelToCommit(store *objstore.Store, id objstore.ID) (objstore.ID, error) {
	kind, payload, err := store.Get(id)
	if err != nil {
		return "", err
	}
	if kind != objstore.KindTag {
		return id, nil
	}
	tag, err := objstore.ParseTag(payload)
	if err != nil {
		return "", err
	}
	return tag.Object, nil
}

func isHexID(s string) bool {
	return len(s) == 40 && isHexPrefix(s)
}

func isHexPrefix(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// resolvePrefix walks the objects directory's two-level fan-out looking
// for a single id starting with prefix.
func (r *Repository) resolvePrefix(prefix string) (objstore.ID, bool, error) {
	objectsDir := filepath.Join(r.gitDir, "objects")
	var match objstore.ID
	count := 0

	dirPrefix := prefix
	if len(prefix) >= 2 {
		dirPrefix = prefix[:2]
	}

	entries, err := os.ReadDir(objectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	for _, dirEntry := range entries {
		if !dirEntry.IsDir() {
			continue
		}
		if len(prefix) >= 2 && dirEntry.Name() != dirPrefix {
			continue
		}
		if len(prefix) < 2 && !strings.HasPrefix(dirEntry.Name(), prefix) {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(objectsDir, dirEntry.Name()))
		if err != nil {
			continue
		}
		for _, f := range sub {
			id := objstore.ID(dirEntry.Name() + f.Name())
			if strings.HasPrefix(string(id), prefix) {
				match = id
				count++
			}
		}
	}
	if count == 1 {
		return match, true, nil
	}
	if count > 1 {
		return "", false, vcserr.New(vcserr.ObjectNotFound, "repo: short id %q is ambiguous", prefix)
	}
	return "", false, nil
}
