package objstore

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Mode is a tree entry's categorical file mode. Only two modes are
// supported: no executable bit, no symlinks, no submodules.
type Mode string

const (
	ModeFile Mode = "100644"
	ModeDir  Mode = "40000"
)

// TreeEntry is one (mode, name, child-id) triple inside a Tree.
type TreeEntry struct {
	Mode Mode
	Name string
	ID   ID
}

// Tree is an ordered set of entries for a single directory level.
type Tree struct {
	Entries []TreeEntry
}

// sortedEntries returns a copy of t.Entries sorted by (mode, name, id), the
// canonical order entries take before serialization.
func (t *Tree) sortedEntries() []TreeEntry {
	out := make([]TreeEntry, len(t.Entries))
	copy(out, t.Entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mode != out[j].Mode {
			return out[i].Mode < out[j].Mode
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Marshal produces the canonical tree payload: sorted "<mode> <name>\0" +
// raw 20-byte-id frames, concatenated.
func (t *Tree) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range t.sortedEntries() {
		raw, err := e.ID.Bytes()
		if err != nil {
			return nil, fmt.Errorf("objstore: tree entry %q: %w", e.Name, err)
		}
		buf.WriteString(string(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw[:])
	}
	return buf.Bytes(), nil
}

// ParseTree decodes a tree payload produced by Marshal.
func ParseTree(payload []byte) (*Tree, error) {
	tree := &Tree{}
	r := bytes.NewReader(payload)

	for {
		var modeBuf strings.Builder
		for {
			b, err := r.ReadByte()
			if err == io.EOF {
				return tree, nil
			}
			if err != nil {
				return nil, fmt.Errorf("objstore: reading tree mode: %w", err)
			}
			if b == ' ' {
				break
			}
			modeBuf.WriteByte(b)
		}

		var nameBuf strings.Builder
		for {
			b, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("objstore: reading tree entry name: %w", err)
			}
			if b == 0 {
				break
			}
			nameBuf.WriteByte(b)
		}

		var idBytes [20]byte
		if _, err := io.ReadFull(r, idBytes[:]); err != nil {
			return nil, fmt.Errorf("objstore: reading tree entry id: %w", err)
		}

		tree.Entries = append(tree.Entries, TreeEntry{
			Mode: Mode(modeBuf.String()),
			Name: nameBuf.String(),
			ID:   IDFromBytes(idBytes),
		})
	}
}

// Signature is the author/committer line of a commit, or the tagger line of
// an annotated tag. Timezone is always serialized as +0000.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d +0000", s.Name, s.Email, s.When.Unix())
}

// ParseSignature parses a "Name <email> unix-ts +HHMM" line. The name is
// everything before the '<', the email is the '<...>' span, and the
// timestamp follows the '>'. Any declared timezone offset is accepted on
// parse; re-serialization always emits +0000 (see Signature.String).
func ParseSignature(line string) (Signature, error) {
	open := strings.IndexByte(line, '<')
	end := strings.IndexByte(line, '>')
	if open == -1 || end == -1 || end < open {
		return Signature{}, fmt.Errorf("objstore: invalid signature line %q", line)
	}

	name := strings.TrimSpace(line[:open])
	email := line[open+1 : end]

	rest := strings.Fields(line[end+1:])
	if len(rest) < 1 {
		return Signature{}, fmt.Errorf("objstore: invalid signature line %q: missing timestamp", line)
	}
	ts, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("objstore: invalid signature timestamp in %q: %w", line, err)
	}
	return Signature{Name: name, Email: email, When: time.Unix(ts, 0).UTC()}, nil
}

// Commit is a snapshot pointer plus parent pointers and metadata.
// Parents[0], when present, is the first parent used for linear walks.
type Commit struct {
	Tree      ID
	Parents   []ID
	Author    Signature
	Committer Signature
	Message   string
}

// Marshal produces the line-oriented canonical commit payload.
func (c *Commit) Marshal() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// ParseCommit decodes a commit payload produced by Marshal.
func ParseCommit(payload []byte) (*Commit, error) {
	c := &Commit{}
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	inMessage := false
	var msgLines []string

	for scanner.Scan() {
		line := scanner.Text()
		if inMessage {
			msgLines = append(msgLines, line)
			continue
		}
		if line == "" {
			inMessage = true
			continue
		}
		switch {
		case strings.HasPrefix(line, "tree "):
			c.Tree = ID(strings.TrimPrefix(line, "tree "))
		case strings.HasPrefix(line, "parent "):
			c.Parents = append(c.Parents, ID(strings.TrimPrefix(line, "parent ")))
		case strings.HasPrefix(line, "author "):
			sig, err := ParseSignature(strings.TrimPrefix(line, "author "))
			if err != nil {
				return nil, fmt.Errorf("objstore: commit author: %w", err)
			}
			c.Author = sig
		case strings.HasPrefix(line, "committer "):
			sig, err := ParseSignature(strings.TrimPrefix(line, "committer "))
			if err != nil {
				return nil, fmt.Errorf("objstore: commit committer: %w", err)
			}
			c.Committer = sig
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("objstore: scanning commit body: %w", err)
	}

	c.Message = strings.TrimSpace(strings.Join(msgLines, "\n"))
	return c, nil
}

// Tag is an annotated tag object: a named pointer at another object plus a
// tagger and message. Lightweight tags never produce a Tag object — they
// are a plain reference (see internal/refstore).
type Tag struct {
	Object  ID
	ObjKind Kind
	Name    string
	Tagger  Signature
	Message string
}

// Marshal produces the line-oriented canonical tag payload.
func (t *Tag) Marshal() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Object)
	fmt.Fprintf(&buf, "type %s\n", t.ObjKind)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	fmt.Fprintf(&buf, "tagger %s\n", t.Tagger)
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// ParseTag decodes a tag payload produced by Marshal.
func ParseTag(payload []byte) (*Tag, error) {
	t := &Tag{}
	scanner := bufio.NewScanner(bytes.NewReader(payload))

	inMessage := false
	var msgLines []string

	for scanner.Scan() {
		line := scanner.Text()
		if inMessage {
			msgLines = append(msgLines, line)
			continue
		}
		if line == "" {
			inMessage = true
			continue
		}
		switch {
		case strings.HasPrefix(line, "object "):
			t.Object = ID(strings.TrimPrefix(line, "object "))
		case strings.HasPrefix(line, "type "):
			kind, err := ParseKind(strings.TrimPrefix(line, "type "))
			if err != nil {
				return nil, fmt.Errorf("objstore: tag type: %w", err)
			}
			t.ObjKind = kind
		case strings.HasPrefix(line, "tag "):
			t.Name = strings.TrimPrefix(line, "tag ")
		case strings.HasPrefix(line, "tagger "):
			sig, err := ParseSignature(strings.TrimPrefix(line, "tagger "))
			if err != nil {
				return nil, fmt.Errorf("objstore: tag tagger: %w", err)
			}
			t.Tagger = sig
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("objstore: scanning tag body: %w", err)
	}

	t.Message = strings.TrimSpace(strings.Join(msgLines, "\n"))
	return t, nil
}

// PutBlob stores raw file bytes as a blob object.
func (s *Store) PutBlob(content []byte) (ID, error) {
	return s.Put(KindBlob, content)
}

// GetBlob retrieves raw blob bytes, failing if id does not refer to a blob.
func (s *Store) GetBlob(id ID) ([]byte, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != KindBlob {
		return nil, fmt.Errorf("objstore: object %s is not a blob", id)
	}
	return payload, nil
}

// PutTree stores a Tree object.
func (s *Store) PutTree(t *Tree) (ID, error) {
	payload, err := t.Marshal()
	if err != nil {
		return "", err
	}
	return s.Put(KindTree, payload)
}

// GetTree retrieves and parses a Tree object.
func (s *Store) GetTree(id ID) (*Tree, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != KindTree {
		return nil, fmt.Errorf("objstore: object %s is not a tree", id)
	}
	return ParseTree(payload)
}

// PutCommit stores a Commit object.
func (s *Store) PutCommit(c *Commit) (ID, error) {
	return s.Put(KindCommit, c.Marshal())
}

// GetCommit retrieves and parses a Commit object.
func (s *Store) GetCommit(id ID) (*Commit, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != KindCommit {
		return nil, fmt.Errorf("objstore: object %s is not a commit", id)
	}
	return ParseCommit(payload)
}

// PutTag stores a Tag object.
func (s *Store) PutTag(t *Tag) (ID, error) {
	return s.Put(KindTag, t.Marshal())
}

// GetTag retrieves and parses a Tag object.
func (s *Store) GetTag(id ID) (*Tag, error) {
	kind, payload, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != KindTag {
		return nil, fmt.Errorf("objstore: object %s is not a tag", id)
	}
	return ParseTag(payload)
}
