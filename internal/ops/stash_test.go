package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

func TestStashSaveNoOpOnEmptyIndex(t *testing.T) {
	_, _, workDir := newStatusRepo(t)
	idx := index.New()
	saved, err := StashSave(nil, nil, idx, workDir, filepath.Join(workDir, ".git", "stash"), "wip", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if saved {
		t.Fatal("expected no-op for an empty index")
	}
}

func TestStashSaveAndPopRoundTrip(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddPath(store, workDir, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "c1",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(1000, 0).UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("modified\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddPath(store, workDir, "a.txt"); err != nil {
		t.Fatal(err)
	}

	stashPath := filepath.Join(workDir, ".git", "stash")
	saved, err := StashSave(store, refs, idx, workDir, stashPath, "wip on master", 1234)
	if err != nil {
		t.Fatal(err)
	}
	if !saved {
		t.Fatal("expected StashSave to succeed with a non-empty index")
	}
	if idx.Len() != 0 {
		t.Fatal("expected index cleared after stash save")
	}

	content, err := os.ReadFile(filepath.Join(workDir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello\n" {
		t.Fatalf("expected HEAD's content restored, got %q", content)
	}

	entries, err := StashList(stashPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Message != "wip on master" {
		t.Fatalf("expected one stash entry, got %+v", entries)
	}

	if err := StashPop(store, idx, workDir, stashPath, 0); err != nil {
		t.Fatal(err)
	}
	content, err = os.ReadFile(filepath.Join(workDir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "modified\n" {
		t.Fatalf("expected the stashed modification restored, got %q", content)
	}

	remaining, err := StashList(stashPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected pop to remove the entry, got %d remaining", len(remaining))
	}
}

func TestStashDropOutOfRange(t *testing.T) {
	_, _, workDir := newStatusRepo(t)
	stashPath := filepath.Join(workDir, ".git", "stash")
	err := StashDrop(stashPath, 0)
	if !vcserr.Is(err, vcserr.StashEmpty) && !vcserr.Is(err, vcserr.StashIndexOOR) {
		t.Fatalf("expected StashEmpty or StashIndexOOR, got %v", err)
	}
}
