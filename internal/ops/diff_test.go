package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/index"
)

func TestDiffIndexVsWorkspace(t *testing.T) {
	store, _, workDir := newStatusRepo(t)
	idx := index.New()
	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddPath(store, workDir, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("line1\nchanged\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	diffs, err := DiffIndexVsWorkspace(store, idx, workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(diffs) != 1 {
		t.Fatalf("expected exactly one changed file, got %d", len(diffs))
	}
	if diffs[0].Path != "a.txt" {
		t.Fatalf("expected a.txt, got %q", diffs[0].Path)
	}
	if !strings.Contains(diffs[0].Text, "-line2") || !strings.Contains(diffs[0].Text, "+changed") {
		t.Fatalf("expected a unified diff body, got %q", diffs[0].Text)
	}
}

func TestDiffCommitVsCommit(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()

	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddPath(store, workDir, "a.txt"); err != nil {
		t.Fatal(err)
	}
	first, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "c1",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(1000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddPath(store, workDir, "a.txt"); err != nil {
		t.Fatal(err)
	}
	second, err := commitengine.Commit(store, refs, idx, commitengine.Options{
		Message: "c2",
		Author:  commitengine.Identity{Name: "a", Email: "a@example.com"},
		Now:     time.Unix(2000, 0).UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	diffs, err := DiffCommitVsCommit(store, first.ID, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(diffs) != 1 || diffs[0].Path != "a.txt" {
		t.Fatalf("expected a single a.txt diff, got %+v", diffs)
	}
	if !strings.Contains(diffs[0].Text, "-v1") || !strings.Contains(diffs[0].Text, "+v2") {
		t.Fatalf("expected v1/v2 diff body, got %q", diffs[0].Text)
	}
}
