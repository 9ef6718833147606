package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
)

// Checkout materializes a commit or tree into target, which must be an
// empty directory (or absent, in which case it is created). A commit peels
// to its tree first.
func (r *Repository) Checkout(name, target string) error {
	sha, err := r.Find(name, "", true)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	obj, err := r.Store.Read(sha)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if commit, ok := obj.(*object.Commit); ok {
		treeHash, ok := commit.TreeHash()
		if !ok {
			return fmt.Errorf("checkout: commit %s: %w: missing tree header", sha, object.ErrMalformedObject)
		}
		obj, err = r.Store.Read(treeHash)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}
	tree, ok := obj.(*object.Tree)
	if !ok {
		return fmt.Errorf("checkout: object %s is a %s, not a tree", sha, obj.Type())
	}

	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("checkout %q: %w", target, ErrTargetNotDirectory)
		}
		entries, err := os.ReadDir(target)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("checkout %q: %w", target, ErrTargetNotEmpty)
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("checkout: mkdir %q: %w", target, err)
		}
	} else {
		return fmt.Errorf("checkout: %w", err)
	}

	return r.checkoutTree(tree, target)
}

func (r *Repository) checkoutTree(tree *object.Tree, dir string) error {
	for _, leaf := range tree.Leaves {
		dest := filepath.Join(dir, leaf.Path)
		obj, err := r.Store.Read(leaf.Hash)
		if err != nil {
			return fmt.Errorf("checkout: read %s for %q: %w", leaf.Hash, leaf.Path, err)
		}

		switch o := obj.(type) {
		case *object.Tree:
			if err := os.Mkdir(dest, 0o755); err != nil {
				return fmt.Errorf("checkout: mkdir %q: %w", dest, err)
			}
			if err := r.checkoutTree(o, dest); err != nil {
				return err
			}
		case *object.Blob:
			if err := os.WriteFile(dest, o.Data, permForMode(leaf.Mode)); err != nil {
				return fmt.Errorf("checkout: write %q: %w", dest, err)
			}
		default:
			return fmt.Errorf("checkout: unsupported object type %q at %q", obj.Type(), leaf.Path)
		}
	}
	return nil
}

func permForMode(mode string) os.FileMode {
	if mode == object.TreeModeExecutable {
		return 0o755
	}
	return 0o644
}
