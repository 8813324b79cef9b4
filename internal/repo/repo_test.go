package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitAndOpen(t *testing.T) {
	workDir := t.TempDir()
	r, err := Init(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if r.GitDir() != filepath.Join(workDir, MetaDirName) {
		t.Fatalf("unexpected gitDir %q", r.GitDir())
	}

	if _, err := Init(workDir); err == nil {
		t.Fatal("expected a second Init to fail with RepositoryExists")
	}

	sub := filepath.Join(workDir, "nested", "deeper")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	opened, err := Open(sub)
	if err != nil {
		t.Fatal(err)
	}
	if opened.WorkDir() != workDir {
		t.Fatalf("expected Open to discover the root %q, got %q", workDir, opened.WorkDir())
	}
}

func TestOpenFailsOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected Open to fail outside any repository")
	}
}

func TestResolveIdentityDefaults(t *testing.T) {
	t.Setenv("VCS_AUTHOR_NAME", "")
	t.Setenv("VCS_AUTHOR_EMAIL", "")
	id := ResolveIdentity()
	if id.Name != defaultAuthorName || id.Email != defaultAuthorEmail {
		t.Fatalf("expected default identity, got %+v", id)
	}
}

func TestResolveIdentityFromEnv(t *testing.T) {
	t.Setenv("VCS_AUTHOR_NAME", "Ada Lovelace")
	t.Setenv("VCS_AUTHOR_EMAIL", "ada@example.com")
	id := ResolveIdentity()
	if id.Name != "Ada Lovelace" || id.Email != "ada@example.com" {
		t.Fatalf("expected env-provided identity, got %+v", id)
	}
}

func TestResolveRevision(t *testing.T) {
	workDir := t.TempDir()
	r, err := Init(workDir)
	if err != nil {
		t.Fatal(err)
	}

	idx, err := r.LoadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(idx, []string{"a.txt"}); err != nil {
		t.Fatal(err)
	}
	result, err := r.Commit(idx, "c1", ResolveIdentity(), time.Unix(1000, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SaveIndex(idx); err != nil {
		t.Fatal(err)
	}

	head, err := r.ResolveRevision("HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if head != result.ID {
		t.Fatalf("expected HEAD to resolve to %s, got %s", result.ID, head)
	}

	byID, err := r.ResolveRevision(string(result.ID))
	if err != nil {
		t.Fatal(err)
	}
	if byID != result.ID {
		t.Fatalf("expected full-id resolution to match, got %s", byID)
	}

	byBranch, err := r.ResolveRevision("master")
	if err != nil {
		t.Fatal(err)
	}
	if byBranch != result.ID {
		t.Fatalf("expected branch resolution to match, got %s", byBranch)
	}

	byPrefix, err := r.ResolveRevision(string(result.ID)[:8])
	if err != nil {
		t.Fatal(err)
	}
	if byPrefix != result.ID {
		t.Fatalf("expected prefix resolution to match, got %s", byPrefix)
	}

	if _, err := r.ResolveRevision("does-not-exist"); err == nil {
		t.Fatal("expected an error resolving an unknown revision")
	}
}
