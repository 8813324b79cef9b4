package ops

import (
	"time"

	"github.com/kirr-vcs/vcs/internal/commitengine"
	"github.com/kirr-vcs/vcs/internal/objstore"
	"github.com/kirr-vcs/vcs/internal/refstore"
	"github.com/kirr-vcs/vcs/internal/vcserr"
)

// CreateTagOptions configures a single tag creation.
type CreateTagOptions struct {
	Name      string
	Target    objstore.ID // commit to tag; caller resolves HEAD if empty before calling
	Annotated bool
	Message   string
	Tagger    commitengine.Identity
	Now       time.Time
}

// CreateTag writes a tag ref, optionally wrapping it in an annotated Tag
// object first. Fails with TagExists if the name is already taken.
func CreateTag(store *objstore.Store, refs *refstore.Store, opts CreateTagOptions) error {
	if refs.TagExists(opts.Name) {
		return vcserr.New(vcserr.TagExists, "ops: tag %q already exists", opts.Name)
	}

	if !opts.Annotated {
		return refs.SetTag(opts.Name, opts.Target)
	}

	tag := &objstore.Tag{
		Object:  opts.Target,
		ObjKind: objstore.KindCommit,
		Name:    opts.Name,
		Tagger:  objstore.Signature{Name: opts.Tagger.Name, Email: opts.Tagger.Email, When: opts.Now},
		Message: opts.Message,
	}
	tagID, err := store.PutTag(tag)
	if err != nil {
		return err
	}
	return refs.SetTag(opts.Name, tagID)
}

// DeleteTag removes a tag ref (lightweight or annotated; the underlying Tag
// object, if any, is left in the store — objects are never deleted).
func DeleteTag(refs *refstore.Store, name string) error {
	return refs.DeleteTag(name)
}

// ListTags returns all tag names, sorted.
func ListTags(refs *refstore.Store) ([]string, error) {
	return refs.ListTags()
}

// ResolveTagCommit peels a tag ref to the commit it ultimately points at,
// dereferencing the Tag object if the ref is annotated, so the result is
// the target commit rather than the tag object itself.
func ResolveTagCommit(store *objstore.Store, refs *refstore.Store, name string) (objstore.ID, error) {
	target, err := refs.GetTag(name)
	if err != nil {
		return "", err
	}
	if !store.Exists(target) {
		return target, nil
	}
	kind, payload, err := store.Get(target)
	if err != nil {
		return "", err
	}
	if kind != objstore.KindTag {
		return target, nil
	}
	tag, err := objstore.ParseTag(payload)
	if err != nil {
		return "", err
	}
	return tag.Object, nil
}
