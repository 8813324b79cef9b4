package ops

import (
	"testing"
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/index"
)

func TestLogFollowsFirstParentChain(t *testing.T) {
	store, refs, _ := newStatusRepo(t)
	idx := index.New()

	blob, err := store.PutBlob([]byte("one\n"))
	if err != nil {
		t.Fatal(err)
	}
	idx.Put("a.txt", blob)
	first, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "first",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(1000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	blob2, err := store.PutBlob([]byte("two\n"))
	if err != nil {
		t.Fatal(err)
	}
	idx.Put("a.txt", blob2)
	second, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "second",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(2000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := Log(store, refs, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Fatalf("expected newest-first order, got %v then %v", entries[0].ID, entries[1].ID)
	}

	limited, err := Log(store, refs, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Fatalf("expected max=1 to return only the latest commit, got %v", limited)
	}
}
