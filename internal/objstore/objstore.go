// Package objstore implements the content-addressed object layer: hashing,
// zlib (de)serialization, and a two-level fan-out directory store for the
// four Git-like object kinds (blob, tree, commit, tag).
//
// A loose object is zlib("<kind> <decimal-len>\0<payload>"), and its ID is
// the SHA-1 of that same "<kind> <len>\0<payload>" byte sequence.
package objstore

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // the object model is defined in terms of SHA-1
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// Kind is one of the four object kinds. Numeric values are arbitrary; this
// package never reads or writes packfiles, so there is no wire dependency on
// the pack-format type codes.
type Kind int

const (
	KindBlob Kind = iota
	KindTree
	KindCommit
	KindTag
)

const (
	kindBlobStr   = "blob"
	kindTreeStr   = "tree"
	kindCommitStr = "commit"
	kindTagStr    = "tag"
)

// String returns the canonical lowercase object-kind name used in the wire header.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return kindBlobStr
	case KindTree:
		return kindTreeStr
	case KindCommit:
		return kindCommitStr
	case KindTag:
		return kindTagStr
	default:
		return "unknown"
	}
}

// ParseKind converts a header type word into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case kindBlobStr:
		return KindBlob, nil
	case kindTreeStr:
		return KindTree, nil
	case kindCommitStr:
		return KindCommit, nil
	case kindTagStr:
		return KindTag, nil
	default:
		return 0, fmt.Errorf("unrecognized object kind %q", s)
	}
}

// ID is a 40-character hex-encoded SHA-1 object identifier.
type ID string

// Short returns the first 7 characters of the ID, or the full ID if shorter.
func (id ID) Short() string {
	if len(id) < 7 {
		return string(id)
	}
	return string(id)[:7]
}

// Bytes decodes the hex ID into its raw 20-byte form, as used inside tree
// entry frames.
func (id ID) Bytes() ([20]byte, error) {
	var out [20]byte
	raw, err := hex.DecodeString(string(id))
	if err != nil || len(raw) != 20 {
		return out, fmt.Errorf("objstore: invalid object id %q", id)
	}
	copy(out[:], raw)
	return out, nil
}

// IDFromBytes builds an ID from a raw 20-byte SHA-1 digest.
func IDFromBytes(b [20]byte) ID {
	return ID(hex.EncodeToString(b[:]))
}

// header returns the canonical "<kind> <len>\0" prefix for a payload.
func header(kind Kind, payload []byte) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", kind, len(payload)))
}

// Hash computes the object ID for a kind+payload pair without touching disk.
func Hash(kind Kind, payload []byte) ID {
	h := sha1.New() //nolint:gosec // SHA-1 is the object identity function by design
	h.Write(header(kind, payload))
	h.Write(payload)
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// Serialize produces the zlib-compressed canonical form stored on disk.
func Serialize(kind Kind, payload []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(header(kind, payload))
	_, _ = zw.Write(payload)
	_ = zw.Close()
	return buf.Bytes()
}

// Deserialize reverses Serialize, returning MalformedObject on any structural
// problem: the header separator is absent, the declared length disagrees
// with the payload actually present, or the stream fails to decompress.
func Deserialize(data []byte) (Kind, []byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return 0, nil, vcserr.Wrap(vcserr.MalformedObject, err, "objstore: invalid zlib stream")
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return 0, nil, vcserr.Wrap(vcserr.MalformedObject, err, "objstore: decompressing object")
	}

	nul := bytes.IndexByte(raw, 0)
	if nul == -1 {
		return 0, nil, vcserr.New(vcserr.MalformedObject, "objstore: missing header separator")
	}

	head := string(raw[:nul])
	payload := raw[nul+1:]

	parts := strings.SplitN(head, " ", 2)
	if len(parts) != 2 {
		return 0, nil, vcserr.New(vcserr.MalformedObject, "objstore: malformed header %q", head)
	}

	kind, err := ParseKind(parts[0])
	if err != nil {
		return 0, nil, vcserr.Wrap(vcserr.MalformedObject, err, "objstore: unknown kind in header %q", head)
	}

	declaredLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, nil, vcserr.Wrap(vcserr.MalformedObject, err, "objstore: non-numeric length in header %q", head)
	}
	if declaredLen != len(payload) {
		return 0, nil, vcserr.New(vcserr.MalformedObject,
			"objstore: declared length %d does not match payload length %d", declaredLen, len(payload))
	}

	return kind, payload, nil
}

// Store is a content-addressed read/write layer over a two-level fan-out
// directory (objects/<xx>/<38 hex chars>).
type Store struct {
	dir string
}

// Open returns a Store rooted at objectsDir (typically <gitdir>/objects).
// The directory is not required to exist yet; Put creates it lazily.
func Open(objectsDir string) *Store {
	return &Store{dir: objectsDir}
}

func (s *Store) pathFor(id ID) string {
	return filepath.Join(s.dir, string(id)[:2], string(id)[2:])
}

// Put computes the object's ID, and writes it if not already present.
// Writes are via temp-file-and-rename so a process interruption mid-write
// never leaves a partially-written object visible at its final path; since
// the destination name is content-addressed, two writers racing to create
// the same object can only ever produce byte-identical files.
func (s *Store) Put(kind Kind, payload []byte) (ID, error) {
	id := Hash(kind, payload)
	dest := s.pathFor(id)

	if _, err := os.Stat(dest); err == nil {
		return id, nil
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: creating object directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "tmp-obj-*")
	if err != nil {
		return "", vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: creating temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(Serialize(kind, payload)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: writing object %s", id)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: closing temp object file")
	}

	if err := os.Rename(tmpName, dest); err != nil {
		if _, statErr := os.Stat(dest); statErr == nil {
			// Another writer won the race; its content is byte-identical.
			os.Remove(tmpName)
			return id, nil
		}
		os.Remove(tmpName)
		return "", vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: renaming object into place")
	}

	return id, nil
}

// Get reads and decodes the object stored at id.
func (s *Store) Get(id ID) (Kind, []byte, error) {
	//nolint:gosec // G304: id is a content hash, not attacker-controlled path input
	data, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: object %s not found", id)
		}
		return 0, nil, vcserr.Wrap(vcserr.ObjectNotFound, err, "objstore: reading object %s", id)
	}
	return Deserialize(data)
}

// Exists reports whether an object with id is present in the store.
func (s *Store) Exists(id ID) bool {
	_, err := os.Stat(s.pathFor(id))
	return err == nil
}
