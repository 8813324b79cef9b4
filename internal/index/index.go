// Package index implements the staging area: a flat path->blob-id mapping
// persisted as a structured text file. The on-disk format is TOML, an easy
// textual format to read by hand that round-trips losslessly.
package index

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// entry is one staged path->blob mapping, as persisted to disk.
type entry struct {
	Path string `toml:"path"`
	Hash string `toml:"hash"`
}

// document is the on-disk shape of the index file: a TOML array of tables.
type document struct {
	Entry []entry `toml:"entry"`
}

// Index is the in-memory staging area: a mapping from repository-relative,
// slash-separated path to the blob id staged at that path.
type Index struct {
	entries map[string]objstore.ID
}

// New returns an empty Index.
func New() *Index {
	return &Index{entries: make(map[string]objstore.ID)}
}

// Load reads the index file at path. A missing file is not an error — it is
// the initial state of a freshly initialized repository — and yields an
// empty Index.
func Load(path string) (*Index, error) {
	//nolint:gosec // G304: path is the repository's own index file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, vcserr.Wrap(vcserr.IndexCorrupt, err, "index: reading %s", path)
	}

	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, vcserr.Wrap(vcserr.IndexCorrupt, err, "index: parsing %s", path)
	}

	idx := New()
	for _, e := range doc.Entry {
		idx.entries[e.Path] = objstore.ID(e.Hash)
	}
	return idx, nil
}

// Save writes the index to path via temp-file-and-rename, sorted by path so
// the persisted file is deterministic across runs (ordering is not
// semantically significant, but determinism aids diffability and testing).
func (idx *Index) Save(path string) error {
	doc := document{Entry: make([]entry, 0, len(idx.entries))}
	for p, h := range idx.entries {
		doc.Entry = append(doc.Entry, entry{Path: p, Hash: string(h)})
	}
	sort.Slice(doc.Entry, func(i, j int) bool { return doc.Entry[i].Path < doc.Entry[j].Path })

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "index: creating directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "tmp-index-*")
	if err != nil {
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "index: creating temp file")
	}
	tmpName := tmp.Name()

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "index: encoding")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "index: closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "index: renaming into place")
	}
	return nil
}

// Put stages path at the given blob id, overwriting any prior entry.
func (idx *Index) Put(path string, id objstore.ID) {
	idx.entries[path] = id
}

// Remove unstages path. A no-op if the path was not staged.
func (idx *Index) Remove(path string) {
	delete(idx.entries, path)
}

// Get returns the staged blob id for path and whether it is present.
func (idx *Index) Get(path string) (objstore.ID, bool) {
	id, ok := idx.entries[path]
	return id, ok
}

// Clear empties the index, as happens after a successful commit.
func (idx *Index) Clear() {
	idx.entries = make(map[string]objstore.ID)
}

// Len returns the number of staged paths.
func (idx *Index) Len() int { return len(idx.entries) }

// Paths returns all staged paths, sorted.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Snapshot returns a defensive copy of the full path->id mapping.
func (idx *Index) Snapshot() map[string]objstore.ID {
	cp := make(map[string]objstore.ID, len(idx.entries))
	for p, id := range idx.entries {
		cp[p] = id
	}
	return cp
}

// FromMap returns a new Index holding a copy of m.
func FromMap(m map[string]objstore.ID) *Index {
	idx := New()
	for p, id := range m {
		idx.entries[p] = id
	}
	return idx
}

// Equal reports whether two indices have identical path->id mappings.
func Equal(a, b *Index) bool {
	if len(a.entries) != len(b.entries) {
		return false
	}
	for p, id := range a.entries {
		if other, ok := b.entries[p]; !ok || other != id {
			return false
		}
	}
	return true
}
