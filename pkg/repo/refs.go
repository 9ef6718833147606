package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// maxSymrefDepth bounds symbolic-ref indirection. Ref chains are acyclic by
// convention only; a pathological cycle is reported, not followed.
const maxSymrefDepth = 10

// ResolveRef resolves a ref name (e.g. "HEAD", "refs/heads/main") to an
// object hash, following "ref: " indirection one level per step. A ref file
// that does not exist resolves to the empty hash with no error: a fresh
// repository has a HEAD pointing at an unborn branch.
func (r *Repository) ResolveRef(name string) (object.Hash, error) {
	return r.resolveRef(name, 0)
}

func (r *Repository) resolveRef(name string, depth int) (object.Hash, error) {
	if depth >= maxSymrefDepth {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrRefDepth)
	}

	data, err := os.ReadFile(r.path(filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}

	content := strings.TrimRight(string(data), "\n")
	if target, ok := strings.CutPrefix(content, "ref: "); ok {
		return r.resolveRef(target, depth+1)
	}
	return object.Hash(content), nil
}

// CreateRef writes a hash to refs/<name>, creating parent directories.
func (r *Repository) CreateRef(name string, h object.Hash) error {
	p, err := r.file(true, append([]string{"refs"}, strings.Split(name, "/")...)...)
	if err != nil {
		return fmt.Errorf("create ref %q: %w", name, err)
	}
	if err := os.WriteFile(p, []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("create ref %q: %w", name, err)
	}
	return nil
}

// Ref is one reference with its fully resolved hash.
type Ref struct {
	Name string // slash path under the control dir, e.g. "refs/heads/main"
	Hash object.Hash
}

// ListRefs walks refs/ and returns every reference, resolved and sorted by
// name.
func (r *Repository) ListRefs() ([]Ref, error) {
	root := r.path("refs")

	var refs []Ref
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.GitDir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		h, err := r.ResolveRef(name)
		if err != nil {
			return err
		}
		if h == "" {
			return nil
		}
		refs = append(refs, Ref{Name: name, Hash: h})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("list refs: %w", err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Head reads .git/HEAD. For a symbolic HEAD it returns the target ref path
// (e.g. "refs/heads/main") and true; for a detached HEAD it returns the raw
// hash and false.
func (r *Repository) Head() (string, bool, error) {
	data, err := os.ReadFile(r.path("HEAD"))
	if err != nil {
		return "", false, fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	if target, ok := strings.CutPrefix(content, "ref: "); ok {
		return target, true, nil
	}
	return content, false, nil
}

// ActiveBranch returns the branch HEAD points at, or false when detached.
func (r *Repository) ActiveBranch() (string, bool, error) {
	head, symbolic, err := r.Head()
	if err != nil {
		return "", false, err
	}
	if !symbolic {
		return "", false, nil
	}
	branch, ok := strings.CutPrefix(head, "refs/heads/")
	if !ok {
		return "", false, nil
	}
	return branch, true, nil
}
