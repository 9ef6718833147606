package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// Add stages the given files: each one's content is written to the store as
// a blob and its index entry is replaced or inserted with fresh inode
// metadata. The index is rewritten wholesale.
func (r *Repository) Add(paths []string) error {
	idx, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range paths {
		rel, err := r.worktreeRel(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}
		abs := filepath.Join(r.Worktree, filepath.FromSlash(rel))

		data, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("add: read %q: %w", rel, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("add: stat %q: %w", rel, err)
		}

		h, err := r.Store.Write(&object.Blob{Data: data})
		if err != nil {
			return fmt.Errorf("add: write blob %q: %w", rel, err)
		}

		fst := statFile(info)
		entry := &IndexEntry{
			CTimeSec:  fst.CTimeSec,
			CTimeNsec: fst.CTimeNsec,
			MTimeSec:  fst.MTimeSec,
			MTimeNsec: fst.MTimeNsec,
			Dev:       fst.Dev,
			Ino:       fst.Ino,
			ModeType:  ModeTypeRegular,
			ModePerms: permBits(info),
			UID:       fst.UID,
			GID:       fst.GID,
			Size:      fst.Size,
			Hash:      h,
			Name:      rel,
		}

		if existing, ok := idx.Entry(rel); ok {
			*existing = *entry
		} else {
			idx.Entries = append(idx.Entries, entry)
		}
	}

	sort.Slice(idx.Entries, func(i, j int) bool {
		return idx.Entries[i].Name < idx.Entries[j].Name
	})

	if err := r.WriteIndex(idx); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Rm unstages the given files and, when deleteFiles is set, removes them
// from the working directory too.
func (r *Repository) Rm(paths []string, deleteFiles bool) error {
	idx, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	for _, p := range paths {
		rel, err := r.worktreeRel(p)
		if err != nil {
			return fmt.Errorf("rm: resolve path %q: %w", p, err)
		}

		found := false
		kept := idx.Entries[:0]
		for _, e := range idx.Entries {
			if e.Name == rel {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		idx.Entries = kept
		if !found {
			return fmt.Errorf("rm: %q is not staged", rel)
		}

		if deleteFiles {
			abs := filepath.Join(r.Worktree, filepath.FromSlash(rel))
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("rm: remove %q: %w", rel, err)
			}
		}
	}

	if err := r.WriteIndex(idx); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	return nil
}

// permBits normalizes file permissions to the two canonical values.
func permBits(info os.FileInfo) uint16 {
	if info.Mode()&0o111 != 0 {
		return 0o755
	}
	return 0o644
}

// worktreeRel converts a path (absolute, or relative to the current
// directory) into a slash-separated path relative to the worktree root.
func (r *Repository) worktreeRel(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		abs = filepath.Join(cwd, p)
	}
	rel, err := filepath.Rel(r.Worktree, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside the worktree", p)
	}
	return filepath.ToSlash(rel), nil
}
