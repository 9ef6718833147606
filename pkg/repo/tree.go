package repo

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/object"
)

// TreeItem is one row of an ls-tree listing: the leaf's normalized mode,
// the object kind the mode denotes, the hash, and the prefix-joined path.
type TreeItem struct {
	Mode string
	Type object.Type
	Hash object.Hash
	Path string
}

// LsTree lists the tree a name resolves to. With recursive set, subtree
// leaves are descended into instead of listed.
func (r *Repository) LsTree(name string, recursive bool) ([]TreeItem, error) {
	var items []TreeItem
	if err := r.lsTree(name, recursive, "", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) lsTree(name string, recursive bool, prefix string, items *[]TreeItem) error {
	sha, err := r.Find(name, object.TypeTree, true)
	if err != nil {
		return err
	}
	tree, err := r.Store.ReadTree(sha)
	if err != nil {
		return err
	}

	for _, leaf := range tree.Leaves {
		typ, err := leafType(leaf)
		if err != nil {
			return err
		}

		full := leaf.Path
		if prefix != "" {
			full = prefix + "/" + leaf.Path
		}

		if recursive && typ == object.TypeTree {
			if err := r.lsTree(string(leaf.Hash), recursive, full, items); err != nil {
				return err
			}
			continue
		}
		*items = append(*items, TreeItem{Mode: leaf.Mode, Type: typ, Hash: leaf.Hash, Path: full})
	}
	return nil
}

// leafType maps a leaf's mode prefix to the object kind it points at:
// 04 tree, 10/12 blob, 16 commit (gitlink).
func leafType(leaf object.TreeLeaf) (object.Type, error) {
	if len(leaf.Mode) < 2 {
		return "", fmt.Errorf("%w: tree leaf mode %q", object.ErrMalformedObject, leaf.Mode)
	}
	switch leaf.Mode[:2] {
	case "04":
		return object.TypeTree, nil
	case "10", "12":
		return object.TypeBlob, nil
	case "16":
		return object.TypeCommit, nil
	default:
		return "", fmt.Errorf("%w: tree leaf mode %q", object.ErrMalformedObject, leaf.Mode)
	}
}

// FlattenTree resolves a name to a tree and flattens it recursively into a
// path-to-hash map, descending through subtree leaves.
func (r *Repository) FlattenTree(name string) (map[string]object.Hash, error) {
	out := make(map[string]object.Hash)
	sha, err := r.Find(name, object.TypeTree, true)
	if err != nil {
		return nil, err
	}
	if sha == "" {
		return out, nil
	}
	if err := r.flattenTree(sha, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) flattenTree(sha object.Hash, prefix string, out map[string]object.Hash) error {
	tree, err := r.Store.ReadTree(sha)
	if err != nil {
		return err
	}
	for _, leaf := range tree.Leaves {
		full := leaf.Path
		if prefix != "" {
			full = prefix + "/" + leaf.Path
		}
		if leaf.IsSubtree() {
			if err := r.flattenTree(leaf.Hash, full, out); err != nil {
				return err
			}
		} else {
			out[full] = leaf.Hash
		}
	}
	return nil
}
