package index

import (
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// metaDirName is skipped when walking a directory for staging.
const metaDirName = ".git"

// AddPath stages path, which names either a single file or a directory.
// A directory is walked recursively and every regular file under it is
// staged, skipping the metadata directory. File hashing and object-store
// writes for a directory's files fan out across a worker pool via errgroup,
// since staging a large tree is the one place in this engine where parallel
// I/O pays for itself.
func (idx *Index) AddPath(store *objstore.Store, root, path string) error {
	abs := filepath.Join(root, filepath.FromSlash(path))
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return vcserr.New(vcserr.PathNotFound, "index: path %q does not exist", path)
		}
		return err
	}

	if !info.IsDir() {
		return idx.addFile(store, root, path)
	}

	var relPaths []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == metaDirName {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return err
	}

	type staged struct {
		path string
		id   objstore.ID
	}
	results := make([]staged, len(relPaths))

	g := new(errgroup.Group)
	g.SetLimit(8)
	for i, rel := range relPaths {
		i, rel := i, rel
		g.Go(func() error {
			//nolint:gosec // G304: rel is produced by our own WalkDir over root
			content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			id, err := store.PutBlob(content)
			if err != nil {
				return err
			}
			results[i] = staged{path: rel, id: id}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		idx.Put(r.path, r.id)
	}
	return nil
}

func (idx *Index) addFile(store *objstore.Store, root, path string) error {
	//nolint:gosec // G304: path is the caller-specified stage target under the repository root
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		return err
	}
	id, err := store.PutBlob(content)
	if err != nil {
		return err
	}
	idx.Put(filepath.ToSlash(path), id)
	return nil
}
