// Package stash persists the stash stack: snapshots of staged state pushed
// by "stash save" and consumed by pop/apply/drop. Each record carries the
// staged-index snapshot, branch-at-save, and commit-at-save, plus a stable
// identifier so log lines naming a particular entry stay meaningful as the
// stack shifts.
package stash

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// entryEntry is one staged path->blob mapping within a stash record, as
// persisted to disk (mirrors internal/index's on-disk shape).
type entryEntry struct {
	Path string `toml:"path"`
	Hash string `toml:"hash"`
}

// record is one stash entry's on-disk shape.
type record struct {
	ID        string       `toml:"id"`
	Message   string       `toml:"message"`
	Timestamp int64        `toml:"timestamp"`
	Branch    string       `toml:"branch"`
	Commit    string       `toml:"commit"`
	Index     []entryEntry `toml:"index"`
}

// document is the on-disk shape of the stash file: newest entry first.
type document struct {
	Entry []record `toml:"entry"`
}

// Entry is one in-memory stash record.
type Entry struct {
	ID        string
	Message   string
	Timestamp int64
	Branch    string
	Commit    objstore.ID
	Index     map[string]objstore.ID
}

// Load reads the stash stack from path. A missing file yields an empty
// stack, the initial state of a freshly initialized repository.
func Load(path string) ([]Entry, error) {
	//nolint:gosec // G304: path is the repository's own stash file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: reading %s", path)
	}

	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: parsing %s", path)
	}

	entries := make([]Entry, 0, len(doc.Entry))
	for _, r := range doc.Entry {
		idx := make(map[string]objstore.ID, len(r.Index))
		for _, e := range r.Index {
			idx[e.Path] = objstore.ID(e.Hash)
		}
		entries = append(entries, Entry{
			ID:        r.ID,
			Message:   r.Message,
			Timestamp: r.Timestamp,
			Branch:    r.Branch,
			Commit:    objstore.ID(r.Commit),
			Index:     idx,
		})
	}
	return entries, nil
}

// Save writes the stash stack to path via temp-file-and-rename, preserving
// the given slice's order (index 0 is the newest entry).
func Save(path string, entries []Entry) error {
	doc := document{Entry: make([]record, 0, len(entries))}
	for _, e := range entries {
		paths := make([]string, 0, len(e.Index))
		for p := range e.Index {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		r := record{
			ID:        e.ID,
			Message:   e.Message,
			Timestamp: e.Timestamp,
			Branch:    e.Branch,
			Commit:    string(e.Commit),
		}
		for _, p := range paths {
			r.Index = append(r.Index, entryEntry{Path: p, Hash: string(e.Index[p])})
		}
		doc.Entry = append(doc.Entry, r)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: creating directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "tmp-stash-*")
	if err != nil {
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: creating temp file")
	}
	tmpName := tmp.Name()

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: encoding")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return vcserr.Wrap(vcserr.IndexCorrupt, err, "stash: renaming into place")
	}
	return nil
}

// NewID returns a fresh stash entry identifier.
func NewID() string {
	return uuid.NewString()
}

// At returns the n-th entry (0 is newest), failing with StashIndexOOR if n
// is out of range, or StashEmpty if the stack has no entries at all.
func At(entries []Entry, n int) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, vcserr.New(vcserr.StashEmpty, "stash: no stash entries")
	}
	if n < 0 || n >= len(entries) {
		return Entry{}, vcserr.New(vcserr.StashIndexOOR, "stash: index %d out of range (have %d entries)", n, len(entries))
	}
	return entries[n], nil
}

// Remove returns a copy of entries with the n-th entry removed.
func Remove(entries []Entry, n int) []Entry {
	out := make([]Entry, 0, len(entries)-1)
	out = append(out, entries[:n]...)
	out = append(out, entries[n+1:]...)
	return out
}
