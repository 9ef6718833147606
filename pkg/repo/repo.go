package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
)

var (
	// ErrNotARepository reports that no control directory was found.
	ErrNotARepository = errors.New("not a grit repository")

	// ErrUnsupportedFormatVersion reports a repositoryformatversion other
	// than 0 in the config.
	ErrUnsupportedFormatVersion = errors.New("unsupported repository format version")

	// ErrNoSuchReference reports a name that resolved to no object.
	ErrNoSuchReference = errors.New("no such reference")

	// ErrRefDepth reports a symbolic-ref chain deeper than the resolution
	// bound (a cycle, in practice).
	ErrRefDepth = errors.New("symbolic ref chain too deep")

	// ErrInvalidIndexFormat reports a staging index that violates the
	// binary layout.
	ErrInvalidIndexFormat = errors.New("invalid index format")

	// ErrTargetNotEmpty and ErrTargetNotDirectory report checkout
	// destination validation failures.
	ErrTargetNotEmpty     = errors.New("target directory not empty")
	ErrTargetNotDirectory = errors.New("target is not a directory")
)

// AmbiguousReferenceError reports a name that resolved to more than one
// object, carrying the full candidate list.
type AmbiguousReferenceError struct {
	Name       string
	Candidates []object.Hash
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("ambiguous reference %q: candidates are %v", e.Name, e.Candidates)
}

// Repository represents an opened grit repository. It owns the worktree
// root, the control directory, and the loaded configuration; every core
// operation takes the repository handle explicitly.
type Repository struct {
	Worktree string        // working directory root
	GitDir   string        // .git/ control directory
	Config   *Config       // loaded .git/config
	Store    *object.Store // content-addressed object store
}

// path joins elements under the control directory.
func (r *Repository) path(elem ...string) string {
	return filepath.Join(append([]string{r.GitDir}, elem...)...)
}

// file returns the path to a file under the control directory, optionally
// creating its parent directories.
func (r *Repository) file(mkdir bool, elem ...string) (string, error) {
	if len(elem) > 1 {
		if _, err := r.dir(mkdir, elem[:len(elem)-1]...); err != nil {
			return "", err
		}
	}
	return r.path(elem...), nil
}

// dir returns the path to a directory under the control directory,
// optionally creating it.
func (r *Repository) dir(mkdir bool, elem ...string) (string, error) {
	p := r.path(elem...)
	info, err := os.Stat(p)
	if err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%q is not a directory", p)
		}
		return p, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	if !mkdir {
		return p, nil
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", p, err)
	}
	return p, nil
}
