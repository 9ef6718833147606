package repo

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func TestFindHead(t *testing.T) {
	r := testRepo(t)
	h := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	got, err := r.Find("HEAD", "", false)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != h {
		t.Errorf("Find(HEAD) = %s, want %s", got, h)
	}
}

func TestFindNoSuchReference(t *testing.T) {
	r := testRepo(t)
	if _, err := r.Find("does-not-exist", "", false); !errors.Is(err, ErrNoSuchReference) {
		t.Errorf("error = %v, want ErrNoSuchReference", err)
	}
}

func TestFindShortHash(t *testing.T) {
	r := testRepo(t)

	h, err := r.Store.Write(&object.Blob{Data: []byte("hello\n")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := r.Find(string(h[:7]), "", false)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != h {
		t.Errorf("Find = %s, want %s", got, h)
	}

	// Abbreviations compare case-insensitively.
	got, err = r.Find(strings.ToUpper(string(h[:7])), "", false)
	if err != nil {
		t.Fatalf("Find upper: %v", err)
	}
	if got != h {
		t.Errorf("Find upper = %s, want %s", got, h)
	}
}

func TestFindTagBranchAmbiguity(t *testing.T) {
	r := testRepo(t)

	h1, err := r.Store.Write(&object.Blob{Data: []byte("one")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	h2, err := r.Store.Write(&object.Blob{Data: []byte("two")})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// "dual" names both a tag and a branch; neither wins.
	if err := r.CreateRef("tags/dual", h1); err != nil {
		t.Fatalf("CreateRef: %v", err)
	}
	if err := r.CreateRef("heads/dual", h2); err != nil {
		t.Fatalf("CreateRef: %v", err)
	}

	_, err = r.Find("dual", "", false)
	var ambiguous *AmbiguousReferenceError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("error = %v, want AmbiguousReferenceError", err)
	}
	if len(ambiguous.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2 entries", ambiguous.Candidates)
	}
}

func TestFindShortHashAmbiguity(t *testing.T) {
	r := testRepo(t)

	// Write blobs until two hashes share a 4-hex prefix. Content is fixed, so
	// the first colliding pair is always the same; the cap is far past the
	// birthday bound for 65536 buckets.
	byPrefix := make(map[string]object.Hash)
	var prefix string
	for i := 0; i < 10000; i++ {
		h, err := r.Store.Write(&object.Blob{Data: []byte(fmt.Sprintf("payload-%d", i))})
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		p := string(h[:4])
		if prev, ok := byPrefix[p]; ok && prev != h {
			prefix = p
			break
		}
		byPrefix[p] = h
	}
	if prefix == "" {
		t.Fatal("no 4-hex prefix collision found")
	}

	candidates, err := r.ResolveName(prefix)
	if err != nil {
		t.Fatalf("ResolveName: %v", err)
	}
	if len(candidates) < 2 {
		t.Fatalf("candidates = %v, want at least 2", candidates)
	}

	_, err = r.Find(prefix, "", false)
	var ambiguous *AmbiguousReferenceError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("error = %v, want AmbiguousReferenceError", err)
	}
}

func TestFindPeelsTagToCommit(t *testing.T) {
	r := testRepo(t)
	commit := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	if err := r.CreateTag("v1", "HEAD", true, "release"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	got, err := r.Find("v1", object.TypeCommit, true)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != commit {
		t.Errorf("Find(v1, commit) = %s, want %s", got, commit)
	}
}

func TestFindPeelsCommitToTree(t *testing.T) {
	r := testRepo(t)
	commit := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	treeHash, err := r.Find("HEAD", object.TypeTree, true)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	c, err := r.Store.ReadCommit(commit)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	want, _ := c.TreeHash()
	if treeHash != want {
		t.Errorf("Find(HEAD, tree) = %s, want %s", treeHash, want)
	}
}

func TestFindNoFollowTypeMismatch(t *testing.T) {
	r := testRepo(t)
	commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")

	// HEAD is a commit; without follow, asking for a tree yields nothing.
	got, err := r.Find("HEAD", object.TypeTree, false)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != "" {
		t.Errorf("Find = %q, want empty", got)
	}
}
