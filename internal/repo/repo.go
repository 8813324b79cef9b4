// Package repo implements the repository facade: it owns the on-disk path
// layout under the metadata directory and composes internal/objstore,
// internal/refstore, internal/index, and internal/ops into the operations a
// caller (the CLI, or a test) invokes by name instead of wiring the lower
// layers together itself. The facade is a thin handle that re-reads refs
// and the index on every call, since both mutate on nearly every operation.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirr-vcs/vcs/internal/index"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// MetaDirName is the repository metadata directory name.
const MetaDirName = ".git"

const defaultBranch = "master"

// Repository is a handle onto one repository's working directory and
// metadata directory. It carries no cached state across calls beyond the
// path layout: refs and the index are read fresh each time, since a CLI
// process is short-lived and multiple Repository methods are rarely
// chained within one invocation.
type Repository struct {
	workDir string
	gitDir  string

	Store *objstore.Store
	Refs  *refstore.Store
}

// WorkDir returns the repository's working-tree root.
func (r *Repository) WorkDir() string { return r.workDir }

// GitDir returns the repository's metadata directory.
func (r *Repository) GitDir() string { return r.gitDir }

// IndexPath returns the path to the staging-area file.
func (r *Repository) IndexPath() string { return filepath.Join(r.gitDir, "index") }

// StashPath returns the path to the stash-stack file.
func (r *Repository) StashPath() string { return filepath.Join(r.gitDir, "stash") }

// LoadIndex reads the current staging area from disk.
func (r *Repository) LoadIndex() (*index.Index, error) {
	return index.Load(r.IndexPath())
}

// SaveIndex persists idx back to disk.
func (r *Repository) SaveIndex(idx *index.Index) error {
	return idx.Save(r.IndexPath())
}

// Init creates a new repository rooted at workDir: the metadata directory,
// an empty objects/refs layout, HEAD attached to the default branch (with
// no commits yet), and an empty index. Fails with RepositoryExists if the
// metadata directory is already present.
func Init(workDir string) (*Repository, error) {
	gitDir := filepath.Join(workDir, MetaDirName)
	if _, err := os.Stat(gitDir); err == nil {
		return nil, vcserr.New(vcserr.RepositoryExists, "repo: %s is already a repository", workDir)
	}

	for _, d := range []string{"objects", "refs/heads", "refs/tags"} {
		if err := os.MkdirAll(filepath.Join(gitDir, d), 0o755); err != nil {
			return nil, fmt.Errorf("repo: creating %s: %w", d, err)
		}
	}

	refs := refstore.Open(gitDir)
	if err := refs.SetHEADSymbolic(defaultBranch); err != nil {
		return nil, err
	}

	idx := index.New()
	if err := idx.Save(filepath.Join(gitDir, "index")); err != nil {
		return nil, err
	}

	return &Repository{
		workDir: workDir,
		gitDir:  gitDir,
		Store:   objstore.Open(filepath.Join(gitDir, "objects")),
		Refs:    refs,
	}, nil
}

// Open locates an existing repository by walking upward from startDir
// looking for the metadata directory. Only a real ".git" directory counts;
// the ".git file" indirection real Git uses for linked worktrees is not
// supported.
func Open(startDir string) (*Repository, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	dir := abs
	for {
		gitDir := filepath.Join(dir, MetaDirName)
		if info, statErr := os.Stat(gitDir); statErr == nil && info.IsDir() {
			return &Repository{
				workDir: dir,
				gitDir:  gitDir,
				Store:   objstore.Open(filepath.Join(gitDir, "objects")),
				Refs:    refstore.Open(gitDir),
			}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, vcserr.New(vcserr.NotARepository, "repo: not a repository (or any parent up to %s)", abs)
		}
		dir = parent
	}
}
