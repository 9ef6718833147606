package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func TestAddStagesBlobAndMetadata(t *testing.T) {
	r := testRepo(t)
	abs := writeWorkFile(t, r, "main.go", "package main\n")

	if err := r.Add([]string{abs}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	entry, ok := idx.Entry("main.go")
	if !ok {
		t.Fatalf("index missing main.go; entries: %+v", idx.Entries)
	}

	if entry.ModeType != ModeTypeRegular {
		t.Errorf("ModeType = %04b", entry.ModeType)
	}
	if entry.ModePerms != 0o644 {
		t.Errorf("ModePerms = %o", entry.ModePerms)
	}
	if entry.Size != uint32(len("package main\n")) {
		t.Errorf("Size = %d", entry.Size)
	}

	blob, err := r.Store.ReadBlob(entry.Hash)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "package main\n" {
		t.Errorf("blob = %q", blob.Data)
	}
}

func TestAddReplacesExistingEntry(t *testing.T) {
	r := testRepo(t)
	abs := writeWorkFile(t, r, "a.txt", "one\n")
	if err := r.Add([]string{abs}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	writeWorkFile(t, r, "a.txt", "two\n")
	if err := r.Add([]string{abs}); err != nil {
		t.Fatalf("second Add: %v", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(idx.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(idx.Entries))
	}
	if want := object.HashObject(&object.Blob{Data: []byte("two\n")}); idx.Entries[0].Hash != want {
		t.Errorf("hash = %s, want %s", idx.Entries[0].Hash, want)
	}
}

func TestAddKeepsEntriesSorted(t *testing.T) {
	r := testRepo(t)
	stageFiles(t, r, map[string]string{
		"z.txt":     "z\n",
		"a.txt":     "a\n",
		"dir/m.txt": "m\n",
	})

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	want := []string{"a.txt", "dir/m.txt", "z.txt"}
	if len(idx.Entries) != len(want) {
		t.Fatalf("got %d entries", len(idx.Entries))
	}
	for i, name := range want {
		if idx.Entries[i].Name != name {
			t.Errorf("entry %d = %q, want %q", i, idx.Entries[i].Name, name)
		}
	}
}

func TestAddRejectsPathOutsideWorktree(t *testing.T) {
	r := testRepo(t)
	outside := filepath.Join(t.TempDir(), "stray.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Add([]string{outside}); err == nil {
		t.Error("Add accepted a path outside the worktree")
	}
}

func TestRmUnstagesAndDeletes(t *testing.T) {
	r := testRepo(t)
	abs := writeWorkFile(t, r, "a.txt", "one\n")
	if err := r.Add([]string{abs}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Rm([]string{abs}, true); err != nil {
		t.Fatalf("Rm: %v", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(idx.Entries) != 0 {
		t.Errorf("entries = %+v, want none", idx.Entries)
	}
	if _, err := os.Stat(abs); !os.IsNotExist(err) {
		t.Errorf("working file survived: %v", err)
	}
}

func TestRmCachedKeepsWorkingFile(t *testing.T) {
	r := testRepo(t)
	abs := writeWorkFile(t, r, "a.txt", "one\n")
	if err := r.Add([]string{abs}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Rm([]string{abs}, false); err != nil {
		t.Fatalf("Rm: %v", err)
	}

	if _, err := os.Stat(abs); err != nil {
		t.Errorf("working file removed: %v", err)
	}
}

func TestRmUnstagedFails(t *testing.T) {
	r := testRepo(t)
	abs := writeWorkFile(t, r, "a.txt", "one\n")
	if err := r.Rm([]string{abs}, false); err == nil {
		t.Error("Rm succeeded on an unstaged file")
	}
}
