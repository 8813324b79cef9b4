// Package refstore implements HEAD, branch, and tag reference storage: the
// symbolic/literal HEAD pointer, per-branch and per-tag files under
// refs/heads and refs/tags, and the merge-state singletons.
package refstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// Detached is the sentinel CurrentBranch returns when HEAD does not point
// at a branch.
const Detached = "detached"

const headRefPrefix = "ref: "

// Store owns the HEAD file plus refs/heads and refs/tags under gitDir.
type Store struct {
	gitDir string
}

// Open returns a Store rooted at gitDir (the repository's metadata directory).
func Open(gitDir string) *Store {
	return &Store{gitDir: gitDir}
}

func (s *Store) headPath() string              { return filepath.Join(s.gitDir, "HEAD") }
func (s *Store) branchPath(name string) string { return filepath.Join(s.gitDir, "refs", "heads", name) }
func (s *Store) tagPath(name string) string    { return filepath.Join(s.gitDir, "refs", "tags", name) }

// writeFileAtomic writes content via temp-file-and-rename so ref/HEAD writes
// are all-or-nothing, bounding the damage of a mid-write interruption.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("refstore: creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "tmp-ref-*")
	if err != nil {
		return fmt.Errorf("refstore: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("refstore: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("refstore: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("refstore: renaming into place %s: %w", path, err)
	}
	return nil
}

func readTrimmed(path string) (string, error) {
	//nolint:gosec // G304: path is assembled from the repository's own metadata directory
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadHEAD returns the raw contents of HEAD: either "ref: refs/heads/<name>"
// (attached) or a literal commit id (detached).
func (s *Store) ReadHEAD() (string, error) {
	line, err := readTrimmed(s.headPath())
	if err != nil {
		return "", vcserr.Wrap(vcserr.NotARepository, err, "refstore: reading HEAD")
	}
	return line, nil
}

// SetHEADSymbolic points HEAD at a branch name, attaching it.
func (s *Store) SetHEADSymbolic(branch string) error {
	return writeFileAtomic(s.headPath(), []byte(headRefPrefix+"refs/heads/"+branch+"\n"))
}

// SetHEADDetached points HEAD directly at a commit id.
func (s *Store) SetHEADDetached(commit objstore.ID) error {
	return writeFileAtomic(s.headPath(), []byte(string(commit)+"\n"))
}

// IsDetached reports whether HEAD is a literal commit id rather than a
// symbolic branch reference.
func (s *Store) IsDetached() (bool, error) {
	line, err := s.ReadHEAD()
	if err != nil {
		return false, err
	}
	return !strings.HasPrefix(line, headRefPrefix), nil
}

// CurrentBranch returns the branch name HEAD symbolically points to, or the
// Detached sentinel.
func (s *Store) CurrentBranch() (string, error) {
	line, err := s.ReadHEAD()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(line, headRefPrefix) {
		return Detached, nil
	}
	target := strings.TrimPrefix(line, headRefPrefix)
	return strings.TrimPrefix(target, "refs/heads/"), nil
}

// ResolveHEAD returns the commit id HEAD points to, dereferencing one
// symbolic indirection if attached. Returns "" if the branch has no commits
// yet (a fresh repository).
func (s *Store) ResolveHEAD() (objstore.ID, error) {
	line, err := s.ReadHEAD()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(line, headRefPrefix) {
		return objstore.ID(line), nil
	}
	target := strings.TrimPrefix(line, headRefPrefix)
	id, err := readTrimmed(filepath.Join(s.gitDir, filepath.FromSlash(target)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("refstore: resolving HEAD target %s: %w", target, err)
	}
	return objstore.ID(id), nil
}

// GetBranch returns the commit id a branch points to.
func (s *Store) GetBranch(name string) (objstore.ID, error) {
	id, err := readTrimmed(s.branchPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", vcserr.New(vcserr.UnknownBranch, "refstore: unknown branch %q", name)
		}
		return "", fmt.Errorf("refstore: reading branch %q: %w", name, err)
	}
	return objstore.ID(id), nil
}

// BranchExists reports whether a branch ref file is present.
func (s *Store) BranchExists(name string) bool {
	_, err := os.Stat(s.branchPath(name))
	return err == nil
}

// SetBranch writes commit-id+"\n" to a branch ref, creating it if absent.
func (s *Store) SetBranch(name string, commit objstore.ID) error {
	return writeFileAtomic(s.branchPath(name), []byte(string(commit)+"\n"))
}

// DeleteBranch removes a branch ref file.
func (s *Store) DeleteBranch(name string) error {
	if err := os.Remove(s.branchPath(name)); err != nil {
		if os.IsNotExist(err) {
			return vcserr.New(vcserr.UnknownBranch, "refstore: unknown branch %q", name)
		}
		return fmt.Errorf("refstore: deleting branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns all branch names, sorted, walking refs/heads
// recursively so hierarchical names (e.g. "feature/login") are included.
func (s *Store) ListBranches() ([]string, error) {
	return listRefNames(filepath.Join(s.gitDir, "refs", "heads"))
}

// GetTag reads a tag ref's raw target (commit id for lightweight, tag-object
// id for annotated — callers needing the peeled commit id use objstore to
// dereference an annotated tag).
func (s *Store) GetTag(name string) (objstore.ID, error) {
	id, err := readTrimmed(s.tagPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", vcserr.New(vcserr.UnknownTag, "refstore: unknown tag %q", name)
		}
		return "", fmt.Errorf("refstore: reading tag %q: %w", name, err)
	}
	return objstore.ID(id), nil
}

// TagExists reports whether a tag ref file is present.
func (s *Store) TagExists(name string) bool {
	_, err := os.Stat(s.tagPath(name))
	return err == nil
}

// SetTag writes a tag ref (commit id for lightweight, tag-object id for
// annotated — the caller decides which ID to pass).
func (s *Store) SetTag(name string, target objstore.ID) error {
	if s.TagExists(name) {
		return vcserr.New(vcserr.TagExists, "refstore: tag %q already exists", name)
	}
	return writeFileAtomic(s.tagPath(name), []byte(string(target)+"\n"))
}

// DeleteTag removes a tag ref file.
func (s *Store) DeleteTag(name string) error {
	if err := os.Remove(s.tagPath(name)); err != nil {
		if os.IsNotExist(err) {
			return vcserr.New(vcserr.UnknownTag, "refstore: unknown tag %q", name)
		}
		return fmt.Errorf("refstore: deleting tag %q: %w", name, err)
	}
	return nil
}

// ListTags returns all tag names, sorted.
func (s *Store) ListTags() ([]string, error) {
	return listRefNames(filepath.Join(s.gitDir, "refs", "tags"))
}

// listRefNames walks dir recursively and returns ref names relative to dir,
// using forward slashes.
func listRefNames(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var names []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refstore: walking %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// MERGE_HEAD / MERGE_MSG are the two merge-state singletons.

func (s *Store) mergeHeadPath() string { return filepath.Join(s.gitDir, "MERGE_HEAD") }
func (s *Store) mergeMsgPath() string  { return filepath.Join(s.gitDir, "MERGE_MSG") }

// SetMergeState writes MERGE_HEAD and MERGE_MSG, marking an in-progress
// conflicted merge that a subsequent commit will clear.
func (s *Store) SetMergeState(head objstore.ID, message string) error {
	if err := writeFileAtomic(s.mergeHeadPath(), []byte(string(head)+"\n")); err != nil {
		return err
	}
	return writeFileAtomic(s.mergeMsgPath(), []byte(message))
}

// MergeHead returns the commit being merged in, and whether a merge is in progress.
func (s *Store) MergeHead() (objstore.ID, bool, error) {
	id, err := readTrimmed(s.mergeHeadPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("refstore: reading MERGE_HEAD: %w", err)
	}
	return objstore.ID(id), true, nil
}

// MergeMsg returns the saved default merge commit message, if any.
func (s *Store) MergeMsg() (string, error) {
	data, err := os.ReadFile(s.mergeMsgPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("refstore: reading MERGE_MSG: %w", err)
	}
	return string(data), nil
}

// ClearMergeState removes MERGE_HEAD and MERGE_MSG if present. Both are
// cleared unconditionally by a successful commit.
func (s *Store) ClearMergeState() error {
	for _, p := range []string{s.mergeHeadPath(), s.mergeMsgPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("refstore: clearing merge state %s: %w", p, err)
		}
	}
	return nil
}
