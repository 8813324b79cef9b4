package merge

import (
	"strings"
	"testing"

	"github.com/kirr-vcs/vcs/internal/objstore"
)

func TestClassifyPathsUnchanged(t *testing.T) {
	base := map[string]objstore.ID{"a.txt": "x"}
	results := ClassifyPaths(base, base, base)
	if len(results) != 1 || results[0].Class != Unchanged {
		t.Fatalf("expected unchanged, got %+v", results)
	}
}

func TestClassifyPathsTakeBranch(t *testing.T) {
	base := map[string]objstore.ID{"a.txt": "x"}
	current := map[string]objstore.ID{"a.txt": "x"}
	branch := map[string]objstore.ID{"a.txt": "y"}

	results := ClassifyPaths(base, current, branch)
	if results[0].Class != TakeBranch || results[0].ResultID != "y" {
		t.Fatalf("expected take-branch y, got %+v", results[0])
	}
}

func TestClassifyPathsTakeCurrent(t *testing.T) {
	base := map[string]objstore.ID{"a.txt": "x"}
	current := map[string]objstore.ID{"a.txt": "z"}
	branch := map[string]objstore.ID{"a.txt": "x"}

	results := ClassifyPaths(base, current, branch)
	if results[0].Class != TakeCurrent || results[0].ResultID != "z" {
		t.Fatalf("expected take-current z, got %+v", results[0])
	}
}

func TestClassifyPathsConflict(t *testing.T) {
	base := map[string]objstore.ID{"a.txt": "x"}
	current := map[string]objstore.ID{"a.txt": "y"}
	branch := map[string]objstore.ID{"a.txt": "z"}

	results := ClassifyPaths(base, current, branch)
	if results[0].Class != Conflict || results[0].ConflictResult != "y" {
		t.Fatalf("expected conflict with provisional current value, got %+v", results[0])
	}
}

func TestClassifyPathsBothSidesConverge(t *testing.T) {
	base := map[string]objstore.ID{"a.txt": "x"}
	current := map[string]objstore.ID{"a.txt": "y"}
	branch := map[string]objstore.ID{"a.txt": "y"}

	results := ClassifyPaths(base, current, branch)
	if results[0].Class != Unchanged || results[0].ResultID != "y" {
		t.Fatalf("expected unchanged with converged value, got %+v", results[0])
	}
}

func TestClassifyPathsDeleteModifyConflict(t *testing.T) {
	base := map[string]objstore.ID{"a.txt": "x"}
	current := map[string]objstore.ID{} // deleted
	branch := map[string]objstore.ID{"a.txt": "z"}

	results := ClassifyPaths(base, current, branch)
	if results[0].Class != Conflict || results[0].ConflictResult != "z" {
		t.Fatalf("expected conflict with branch's value when current deleted, got %+v", results[0])
	}
}

func TestMaterializeConflictContainsMarkers(t *testing.T) {
	rendered := string(MaterializeConflict([]byte("mine\n"), []byte("theirs\n")))
	for _, marker := range []string{"<<<<<<< HEAD", "=======", ">>>>>>> MERGE_HEAD"} {
		if !strings.Contains(rendered, marker) {
			t.Errorf("expected marker %q in rendered conflict, got %q", marker, rendered)
		}
	}
	if !strings.Contains(rendered, "mine\n") || !strings.Contains(rendered, "theirs\n") {
		t.Errorf("expected both sides' content present, got %q", rendered)
	}
}
