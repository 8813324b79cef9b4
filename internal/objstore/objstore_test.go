package objstore

import (
	"testing"
	"time"

	"github.com/kirr-vcs/vcs/internal/vcserr"
)

func TestHashSerializeDeserializeRoundTrip(t *testing.T) {
	payload := []byte("hello\n")
	id := Hash(KindBlob, payload)

	serialized := Serialize(KindBlob, payload)
	kind, got, err := Deserialize(serialized)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if kind != KindBlob {
		t.Errorf("kind: got %v, want blob", kind)
	}
	if string(got) != string(payload) {
		t.Errorf("payload: got %q, want %q", got, payload)
	}

	again := Hash(KindBlob, got)
	if again != id {
		t.Errorf("hash not stable: got %s, want %s", again, id)
	}
}

func TestDeserializeMalformedObject(t *testing.T) {
	if _, _, err := Deserialize([]byte("not zlib data")); !vcserr.Is(err, vcserr.MalformedObject) {
		t.Fatalf("expected MalformedObject, got %v", err)
	}
}

func TestStorePutGetExists(t *testing.T) {
	store := Open(t.TempDir())

	id, err := store.Put(KindBlob, []byte("content\n"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !store.Exists(id) {
		t.Fatalf("expected object to exist after Put")
	}

	kind, payload, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if kind != KindBlob || string(payload) != "content\n" {
		t.Fatalf("Get returned unexpected data: kind=%v payload=%q", kind, payload)
	}
}

func TestStorePutIsIdempotent(t *testing.T) {
	store := Open(t.TempDir())
	id1, err := store.Put(KindBlob, []byte("same\n"))
	if err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	id2, err := store.Put(KindBlob, []byte("same\n"))
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected idempotent ids, got %s and %s", id1, id2)
	}
}

func TestGetObjectNotFound(t *testing.T) {
	store := Open(t.TempDir())
	if _, _, err := store.Get(ID("0000000000000000000000000000000000000a")); !vcserr.Is(err, vcserr.ObjectNotFound) {
		t.Fatalf("expected ObjectNotFound, got %v", err)
	}
}

func TestTreeMarshalSortsEntries(t *testing.T) {
	blobA := Hash(KindBlob, []byte("a"))
	blobB := Hash(KindBlob, []byte("b"))

	tree := &Tree{Entries: []TreeEntry{
		{Mode: ModeFile, Name: "zebra.txt", ID: blobA},
		{Mode: ModeFile, Name: "apple.txt", ID: blobB},
	}}

	payload, err := tree.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	parsed, err := ParseTree(payload)
	if err != nil {
		t.Fatalf("ParseTree failed: %v", err)
	}
	if len(parsed.Entries) != 2 || parsed.Entries[0].Name != "apple.txt" {
		t.Fatalf("expected sorted entries starting with apple.txt, got %+v", parsed.Entries)
	}
}

func TestTreeIdenticalEntriesProduceIdenticalID(t *testing.T) {
	blob := Hash(KindBlob, []byte("x"))
	t1 := &Tree{Entries: []TreeEntry{{Mode: ModeFile, Name: "b.txt", ID: blob}, {Mode: ModeFile, Name: "a.txt", ID: blob}}}
	t2 := &Tree{Entries: []TreeEntry{{Mode: ModeFile, Name: "a.txt", ID: blob}, {Mode: ModeFile, Name: "b.txt", ID: blob}}}

	p1, err := t1.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	p2, err := t2.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if Hash(KindTree, p1) != Hash(KindTree, p2) {
		t.Fatalf("expected identical tree ids for identical entry sets regardless of insertion order")
	}
}

func TestCommitMarshalParseRoundTrip(t *testing.T) {
	sig := Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: time.Unix(1700000000, 0).UTC()}
	c := &Commit{
		Tree:      ID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Parents:   []ID{"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		Author:    sig,
		Committer: sig,
		Message:   "a commit message",
	}

	parsed, err := ParseCommit(c.Marshal())
	if err != nil {
		t.Fatalf("ParseCommit failed: %v", err)
	}
	if parsed.Tree != c.Tree || len(parsed.Parents) != 1 || parsed.Parents[0] != c.Parents[0] {
		t.Fatalf("round-trip mismatch: %+v", parsed)
	}
	if parsed.Message != c.Message {
		t.Fatalf("message mismatch: got %q want %q", parsed.Message, c.Message)
	}
	if !timezoneFixedZero(parsed.Author.String()) {
		t.Fatalf("expected author line to serialize with +0000, got %q", parsed.Author.String())
	}
}

func timezoneFixedZero(sigLine string) bool {
	return len(sigLine) >= 5 && sigLine[len(sigLine)-5:] == "+0000"
}

func TestTagMarshalParseRoundTrip(t *testing.T) {
	sig := Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: time.Unix(1700000000, 0).UTC()}
	tag := &Tag{
		Object:  ID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		ObjKind: KindCommit,
		Name:    "v1.0.0",
		Tagger:  sig,
		Message: "release",
	}

	parsed, err := ParseTag(tag.Marshal())
	if err != nil {
		t.Fatalf("ParseTag failed: %v", err)
	}
	if parsed.Name != tag.Name || parsed.Object != tag.Object || parsed.ObjKind != KindCommit {
		t.Fatalf("round-trip mismatch: %+v", parsed)
	}
	if parsed.Message != tag.Message {
		t.Fatalf("message mismatch: got %q want %q", parsed.Message, tag.Message)
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		line      string
		wantName  string
		wantEmail string
		wantUnix  int64
		wantErr   bool
	}{
		{line: "Ada Lovelace <ada@example.com> 1700000000 +0000", wantName: "Ada Lovelace", wantEmail: "ada@example.com", wantUnix: 1700000000},
		{line: "Ada Lovelace <ada@example.com> 1700000000 +0530", wantName: "Ada Lovelace", wantEmail: "ada@example.com", wantUnix: 1700000000},
		{line: "<ada@example.com> 42 +0000", wantName: "", wantEmail: "ada@example.com", wantUnix: 42},
		{line: "no angle brackets at all", wantErr: true},
		{line: "Ada > reversed < 1700000000 +0000", wantErr: true},
		{line: "Ada <ada@example.com>", wantErr: true},
		{line: "Ada <ada@example.com> notanumber +0000", wantErr: true},
	}

	for _, tt := range tests {
		sig, err := ParseSignature(tt.line)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSignature(%q): expected error, got %+v", tt.line, sig)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSignature(%q) failed: %v", tt.line, err)
			continue
		}
		if sig.Name != tt.wantName || sig.Email != tt.wantEmail || sig.When.Unix() != tt.wantUnix {
			t.Errorf("ParseSignature(%q): got name=%q email=%q ts=%d", tt.line, sig.Name, sig.Email, sig.When.Unix())
		}
	}
}
