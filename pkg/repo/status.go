package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/grit/pkg/object"
)

// HeadIndexStatus is the comparison of the last commit's tree against the
// staging index: what the next commit would record.
type HeadIndexStatus struct {
	Added    []string // staged, absent from HEAD
	Modified []string // staged with a different hash than HEAD
	Deleted  []string // in HEAD, no longer staged
}

// WorktreeStatus is the comparison of the staging index against the live
// working directory.
type WorktreeStatus struct {
	Modified  []string // staged but the working file's content differs
	Deleted   []string // staged but the working file is gone
	Untracked []string // on disk, unstaged, and not ignored
}

// StatusHeadIndex classifies every index entry against the flattened HEAD
// tree. On an unborn branch the HEAD side is the empty map, so everything
// staged reports as added.
func (r *Repository) StatusHeadIndex(idx *Index) (*HeadIndexStatus, error) {
	head, err := r.headTree()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	st := &HeadIndexStatus{}
	for _, e := range idx.Entries {
		headHash, inHead := head[e.Name]
		switch {
		case !inHead:
			st.Added = append(st.Added, e.Name)
		case headHash != e.Hash:
			st.Modified = append(st.Modified, e.Name)
		}
		delete(head, e.Name)
	}
	for name := range head {
		st.Deleted = append(st.Deleted, name)
	}

	sort.Strings(st.Added)
	sort.Strings(st.Modified)
	sort.Strings(st.Deleted)
	return st, nil
}

// headTree flattens the tree reachable from HEAD. A HEAD that resolves to
// nothing (fresh repository) yields an empty map.
func (r *Repository) headTree() (map[string]object.Hash, error) {
	out, err := r.FlattenTree("HEAD")
	if err != nil {
		if errors.Is(err, ErrNoSuchReference) {
			return make(map[string]object.Hash), nil
		}
		return nil, err
	}
	return out, nil
}

// StatusIndexWorktree classifies index entries against the working
// directory. Timestamp equality (ctime and mtime, seconds and nanoseconds)
// short-circuits the comparison; only when a timestamp differs is the
// working file re-hashed as a blob and compared by content. Files on disk
// but absent from the index are untracked, filtered through the ignore
// rules.
func (r *Repository) StatusIndexWorktree(idx *Index) (*WorktreeStatus, error) {
	ignore, err := r.ReadIgnore()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	onDisk := make(map[string]bool)
	err = filepath.WalkDir(r.Worktree, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == r.GitDir {
			return fs.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.Worktree, p)
		if err != nil {
			return err
		}
		onDisk[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("status: walk: %w", err)
	}

	st := &WorktreeStatus{}
	for _, e := range idx.Entries {
		abs := filepath.Join(r.Worktree, filepath.FromSlash(e.Name))
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				st.Deleted = append(st.Deleted, e.Name)
				delete(onDisk, e.Name)
				continue
			}
			return nil, fmt.Errorf("status: stat %q: %w", e.Name, err)
		}

		fst := statFile(info)
		if fst.CTimeSec != e.CTimeSec || fst.CTimeNsec != e.CTimeNsec ||
			fst.MTimeSec != e.MTimeSec || fst.MTimeNsec != e.MTimeNsec {
			data, err := os.ReadFile(abs)
			if err != nil {
				return nil, fmt.Errorf("status: read %q: %w", e.Name, err)
			}
			if object.HashObject(&object.Blob{Data: data}) != e.Hash {
				st.Modified = append(st.Modified, e.Name)
			}
		}
		delete(onDisk, e.Name)
	}

	for name := range onDisk {
		if !ignore.Check(name) {
			st.Untracked = append(st.Untracked, name)
		}
	}

	sort.Strings(st.Modified)
	sort.Strings(st.Deleted)
	sort.Strings(st.Untracked)
	return st, nil
}
