package repo

import (
	"os"

	"github.com/kirr-vcs/vcs/internal/commitengine"
)

// defaultAuthorName/Email are the fallback identity used when neither
// environment variable is set, shared by author, committer, and tagger
// fields.
const (
	defaultAuthorName  = "VCS User"
	defaultAuthorEmail = "user@vcs.local"
)

// ResolveIdentity resolves the author/committer identity: environment
// variables first (VCS_AUTHOR_NAME, VCS_AUTHOR_EMAIL), then the fixed
// fallback. No process-wide global is read here beyond os.Getenv itself;
// the resolved value is threaded through explicitly by every caller.
func ResolveIdentity() commitengine.Identity {
	name := os.Getenv("VCS_AUTHOR_NAME")
	if name == "" {
		name = defaultAuthorName
	}
	email := os.Getenv("VCS_AUTHOR_EMAIL")
	if email == "" {
		email = defaultAuthorEmail
	}
	return commitengine.Identity{Name: name, Email: email}
}
