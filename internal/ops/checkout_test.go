package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

func TestCheckoutDetachedAndBack(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")
	c2 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "two\n", "c2")
	writeAndCommit(t, store, refs, idx, workDir, "a.txt", "three\n", "c3")

	if err := Checkout(store, refs, idx, workDir, string(c2), false); err != nil {
		t.Fatal(err)
	}
	detached, err := refs.IsDetached()
	if err != nil || !detached {
		t.Fatalf("expected detached HEAD, got detached=%v err=%v", detached, err)
	}
	head, err := refs.ResolveHEAD()
	if err != nil || head != c2 {
		t.Fatalf("expected HEAD literal %s, got %s err=%v", c2, head, err)
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "two\n" {
		t.Fatalf("a.txt after detached checkout: got %q", got)
	}

	if err := Checkout(store, refs, idx, workDir, "master", false); err != nil {
		t.Fatal(err)
	}
	if detached, err := refs.IsDetached(); err != nil || detached {
		t.Fatalf("expected attached HEAD after branch checkout, detached=%v err=%v", detached, err)
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "three\n" {
		t.Fatalf("a.txt after branch checkout: got %q", got)
	}
}

func TestCheckoutCreateBranch(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	c1 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")

	if err := Checkout(store, refs, idx, workDir, "topic", false); !vcserr.Is(err, vcserr.UnknownBranch) {
		t.Fatalf("expected UnknownBranch without -b, got %v", err)
	}
	if err := Checkout(store, refs, idx, workDir, "topic", true); err != nil {
		t.Fatal(err)
	}
	branch, err := refs.CurrentBranch()
	if err != nil || branch != "topic" {
		t.Fatalf("expected to be on topic, got %q err=%v", branch, err)
	}
	tip, err := refs.GetBranch("topic")
	if err != nil || tip != c1 {
		t.Fatalf("expected topic at %s, got %s err=%v", c1, tip, err)
	}
}

func TestResetModes(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	c1 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")
	writeAndCommit(t, store, refs, idx, workDir, "a.txt", "two\n", "c2")

	// Stage an extra file so soft reset's index preservation is observable.
	if err := os.WriteFile(filepath.Join(workDir, "b.txt"), []byte("B\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddPath(store, workDir, "b.txt"); err != nil {
		t.Fatal(err)
	}

	if err := Reset(store, refs, idx, workDir, c1, ResetSoft); err != nil {
		t.Fatal(err)
	}
	if head, err := refs.ResolveHEAD(); err != nil || head != c1 {
		t.Fatalf("expected HEAD at %s after soft reset, got %s err=%v", c1, head, err)
	}
	if _, ok := idx.Get("b.txt"); !ok {
		t.Fatal("expected soft reset to leave the index alone")
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "two\n" {
		t.Fatalf("expected soft reset to leave the workspace alone, got %q", got)
	}

	if err := Reset(store, refs, idx, workDir, c1, ResetMixed); err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.Get("b.txt"); ok {
		t.Fatal("expected mixed reset to resync the index to the target tree")
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "two\n" {
		t.Fatalf("expected mixed reset to leave the workspace alone, got %q", got)
	}

	if err := idx.AddPath(store, workDir, "b.txt"); err != nil {
		t.Fatal(err)
	}
	if err := Reset(store, refs, idx, workDir, c1, ResetHard); err != nil {
		t.Fatal(err)
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "one\n" {
		t.Fatalf("expected hard reset to restore the target workspace, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(workDir, "b.txt")); !os.IsNotExist(err) {
		t.Fatal("expected hard reset to clean tracked staged files")
	}
}

func TestResetDetachedMovesLiteralHEAD(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	c1 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")
	c2 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "two\n", "c2")

	if err := Checkout(store, refs, idx, workDir, string(c2), false); err != nil {
		t.Fatal(err)
	}
	if err := Reset(store, refs, idx, workDir, c1, ResetHard); err != nil {
		t.Fatal(err)
	}

	head, err := refs.ResolveHEAD()
	if err != nil || head != c1 {
		t.Fatalf("expected detached HEAD moved to %s, got %s err=%v", c1, head, err)
	}
	// The branch ref must not have moved.
	masterTip, err := refs.GetBranch("master")
	if err != nil || masterTip != c2 {
		t.Fatalf("expected master untouched at %s, got %s err=%v", c2, masterTip, err)
	}
}

func TestCherryPickClean(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	c1 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")

	if err := refs.SetBranch("topic", c1); err != nil {
		t.Fatal(err)
	}
	if err := Checkout(store, refs, idx, workDir, "topic", false); err != nil {
		t.Fatal(err)
	}
	picked := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "two\n", "topic change")

	if err := Checkout(store, refs, idx, workDir, "master", false); err != nil {
		t.Fatal(err)
	}
	if err := CherryPick(store, idx, workDir, picked); err != nil {
		t.Fatal(err)
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "two\n" {
		t.Fatalf("expected cherry-picked content, got %q", got)
	}
	id, ok := idx.Get("a.txt")
	if !ok {
		t.Fatal("expected a.txt staged after cherry-pick")
	}
	content, err := store.GetBlob(id)
	if err != nil || string(content) != "two\n" {
		t.Fatalf("staged blob mismatch: %q err=%v", content, err)
	}
}

func TestCherryPickConflict(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	c1 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")

	if err := refs.SetBranch("topic", c1); err != nil {
		t.Fatal(err)
	}
	if err := Checkout(store, refs, idx, workDir, "topic", false); err != nil {
		t.Fatal(err)
	}
	picked := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "two\n", "topic change")

	if err := Checkout(store, refs, idx, workDir, "master", false); err != nil {
		t.Fatal(err)
	}
	c3 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "three\n", "diverge")
	if err := Reset(store, refs, idx, workDir, c3, ResetMixed); err != nil {
		t.Fatal(err)
	}

	err := CherryPick(store, idx, workDir, picked)
	if !vcserr.Is(err, vcserr.CherryPickConflicts) {
		t.Fatalf("expected CherryPickConflicts, got %v", err)
	}
	if got := readWorkFile(t, workDir, "a.txt"); got != "three\n" {
		t.Fatalf("expected the conflicted path left untouched on disk, got %q", got)
	}
}

func TestCherryPickInitialCommitRejected(t *testing.T) {
	store, refs, workDir := newStatusRepo(t)
	idx := index.New()
	c1 := writeAndCommit(t, store, refs, idx, workDir, "a.txt", "one\n", "c1")

	if err := CherryPick(store, idx, workDir, c1); !vcserr.Is(err, vcserr.InitialCommitCherryPick) {
		t.Fatalf("expected InitialCommitCherryPick, got %v", err)
	}
}
