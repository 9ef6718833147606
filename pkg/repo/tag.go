package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/object"
)

// ListTags returns every ref under refs/tags, sorted by name.
func (r *Repository) ListTags() ([]Ref, error) {
	refs, err := r.ListRefs()
	if err != nil {
		return nil, err
	}
	var tags []Ref
	for _, ref := range refs {
		if name, ok := strings.CutPrefix(ref.Name, "refs/tags/"); ok {
			tags = append(tags, Ref{Name: name, Hash: ref.Hash})
		}
	}
	return tags, nil
}

// CreateTag tags the object a name resolves to. A lightweight tag is just a
// ref; an annotated tag writes a tag object and points the ref at it.
func (r *Repository) CreateTag(name, target string, annotate bool, message string) error {
	sha, err := r.Find(target, "", true)
	if err != nil {
		return fmt.Errorf("tag: %w", err)
	}

	if annotate {
		obj, err := r.Store.Read(sha)
		if err != nil {
			return fmt.Errorf("tag: %w", err)
		}

		kv := object.NewKVLM()
		kv.Add("object", []byte(sha))
		kv.Add("type", []byte(obj.Type()))
		kv.Add("tag", []byte(name))
		kv.Add("tagger", []byte(fmt.Sprintf("%s %d %s",
			r.Config.Author(), time.Now().Unix(), time.Now().Format("-0700"))))
		if message == "" {
			message = name
		}
		kv.SetMessage([]byte(strings.TrimSpace(message) + "\n"))

		sha, err = r.Store.Write(&object.Tag{KVLM: kv})
		if err != nil {
			return fmt.Errorf("tag: %w", err)
		}
	}

	return r.CreateRef("tags/"+name, sha)
}
