package ops

import (
	"testing"
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

func TestCreateTagLightweight(t *testing.T) {
	store, refs, _ := newStatusRepo(t)
	idx := index.New()
	blob, _ := store.PutBlob([]byte("hello\n"))
	idx.Put("a.txt", blob)
	commit, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "c1",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(1000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := CreateTag(store, refs, CreateTagOptions{Name: "v1", Target: commit.ID}); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolveTagCommit(store, refs, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != commit.ID {
		t.Fatalf("expected lightweight tag to resolve straight to the commit, got %s", resolved)
	}

	if err := CreateTag(store, refs, CreateTagOptions{Name: "v1", Target: commit.ID}); !vcserr.Is(err, vcserr.TagExists) {
		t.Fatalf("expected TagExists on duplicate tag, got %v", err)
	}
}

func TestCreateTagAnnotated(t *testing.T) {
	store, refs, _ := newStatusRepo(t)
	idx := index.New()
	blob, _ := store.PutBlob([]byte("hello\n"))
	idx.Put("a.txt", blob)
	commit, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "c1",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(1000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = CreateTag(store, refs, CreateTagOptions{
		Name:      "v1.0",
		Target:    commit.ID,
		Annotated: true,
		Message:   "release",
		Tagger:    commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:       time.Unix(2000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	tagID, err := refs.GetTag("v1.0")
	if err != nil {
		t.Fatal(err)
	}
	if tagID == commit.ID {
		t.Fatal("expected an annotated tag to point at a distinct Tag object, not the commit directly")
	}

	resolved, err := ResolveTagCommit(store, refs, "v1.0")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != commit.ID {
		t.Fatalf("expected annotated tag to peel to the commit, got %s", resolved)
	}

	names, err := ListTags(refs)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "v1.0" {
		t.Fatalf("expected [v1.0], got %v", names)
	}

	if err := DeleteTag(refs, "v1.0"); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveTagCommit(store, refs, "v1.0"); err == nil {
		t.Fatal("expected an error resolving a deleted tag")
	}
}
