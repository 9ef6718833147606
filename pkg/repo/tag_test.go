package repo

import "testing"

func TestCreateLightweightTag(t *testing.T) {
	r := testRepo(t)
	commit := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	if err := r.CreateTag("v1.0", "HEAD", false, ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	// A lightweight tag is just a ref to the commit itself.
	h, err := r.ResolveRef("refs/tags/v1.0")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if h != commit {
		t.Errorf("refs/tags/v1.0 = %s, want %s", h, commit)
	}
}

func TestCreateAnnotatedTag(t *testing.T) {
	r := testRepo(t)
	commit := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	if err := r.CreateTag("v2.0", "HEAD", true, "second release"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	refHash, err := r.ResolveRef("refs/tags/v2.0")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if refHash == commit {
		t.Fatal("annotated tag ref points at the commit, not a tag object")
	}

	tag, err := r.Store.ReadTag(refHash)
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if target, _ := tag.TargetHash(); target != commit {
		t.Errorf("object = %s, want %s", target, commit)
	}
	if typ, _ := tag.KVLM.Get("type"); typ != "commit" {
		t.Errorf("type = %q", typ)
	}
	if name, _ := tag.KVLM.Get("tag"); name != "v2.0" {
		t.Errorf("tag = %q", name)
	}
	if string(tag.KVLM.Message()) != "second release\n" {
		t.Errorf("message = %q", tag.KVLM.Message())
	}
}

func TestListTags(t *testing.T) {
	r := testRepo(t)
	commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	for _, name := range []string{"v1.0", "v0.9", "v1.1"} {
		if err := r.CreateTag(name, "HEAD", false, ""); err != nil {
			t.Fatalf("CreateTag %s: %v", name, err)
		}
	}

	tags, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	want := []string{"v0.9", "v1.0", "v1.1"}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags", len(tags))
	}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i].Name, name)
		}
	}
}

func TestCreateTagByExplicitTarget(t *testing.T) {
	r := testRepo(t)
	first := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")
	commitFiles(t, r, map[string]string{"a.txt": "two\n"}, "second")

	if err := r.CreateTag("old", string(first[:8]), false, ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	h, err := r.ResolveRef("refs/tags/old")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if h != first {
		t.Errorf("refs/tags/old = %s, want %s", h, first)
	}
}
