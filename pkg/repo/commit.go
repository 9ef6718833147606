package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/object"
)

// CommitSigner signs a commit payload and returns the signature text placed
// in the gpgsig header. Multi-line signatures are folded as continuation
// lines by the KVLM codec.
type CommitSigner func(payload []byte) (string, error)

// Commit records the staging index as a new commit: trees are built
// bottom-up from the index, the commit object points at the root tree and
// the current HEAD (when born) as parent, and the current branch ref is
// advanced. The new commit hash is returned.
func (r *Repository) Commit(message string, signer CommitSigner) (object.Hash, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(idx.Entries) == 0 {
		return "", fmt.Errorf("commit: nothing staged")
	}

	treeHash, err := r.writeTreeFromIndex(idx)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, err := r.ResolveRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	now := time.Now()
	identity := fmt.Sprintf("%s %d %s", r.Config.Author(), now.Unix(), now.Format("-0700"))

	kv := object.NewKVLM()
	kv.Add("tree", []byte(treeHash))
	if parent != "" {
		kv.Add("parent", []byte(parent))
	}
	kv.Add("author", []byte(identity))
	kv.Add("committer", []byte(identity))

	msg := strings.TrimSpace(message) + "\n"
	kv.SetMessage([]byte(msg))

	if signer != nil {
		sig, err := signer(kv.Serialize())
		if err != nil {
			return "", fmt.Errorf("commit: sign: %w", err)
		}
		kv.Add("gpgsig", []byte(strings.TrimRight(sig, "\n")))
	}

	commitHash, err := r.Store.Write(&object.Commit{KVLM: kv})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if err := r.advanceHead(commitHash); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return commitHash, nil
}

// advanceHead moves the current branch (or a detached HEAD) to the hash.
func (r *Repository) advanceHead(h object.Hash) error {
	head, symbolic, err := r.Head()
	if err != nil {
		return err
	}
	if symbolic {
		p := r.path(filepath.FromSlash(head))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("update ref %q: %w", head, err)
		}
		if err := os.WriteFile(p, []byte(string(h)+"\n"), 0o644); err != nil {
			return fmt.Errorf("update ref %q: %w", head, err)
		}
		return nil
	}
	if err := os.WriteFile(r.path("HEAD"), []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("update HEAD: %w", err)
	}
	return nil
}

// writeTreeFromIndex builds one tree object per directory named in the
// index, deepest directories first so each parent can reference its
// children, and returns the root tree's hash.
func (r *Repository) writeTreeFromIndex(idx *Index) (object.Hash, error) {
	leaves := make(map[string][]object.TreeLeaf)
	leaves["."] = nil

	for _, e := range idx.Entries {
		// Every ancestor directory needs a bucket, even when it only holds
		// subdirectories.
		for dir := path.Dir(e.Name); ; dir = path.Dir(dir) {
			if _, ok := leaves[dir]; !ok {
				leaves[dir] = nil
			}
			if dir == "." {
				break
			}
		}
		leaves[path.Dir(e.Name)] = append(leaves[path.Dir(e.Name)], object.TreeLeaf{
			Mode: entryTreeMode(e),
			Path: path.Base(e.Name),
			Hash: e.Hash,
		})
	}

	dirs := make([]string, 0, len(leaves))
	for d := range leaves {
		dirs = append(dirs, d)
	}
	// Children before parents: deeper paths first, the root strictly last.
	sort.Slice(dirs, func(i, j int) bool { return dirDepth(dirs[i]) > dirDepth(dirs[j]) })

	var rootHash object.Hash
	for _, dir := range dirs {
		h, err := r.Store.Write(&object.Tree{Leaves: leaves[dir]})
		if err != nil {
			return "", fmt.Errorf("write tree %q: %w", dir, err)
		}
		if dir == "." {
			rootHash = h
			continue
		}
		parent := path.Dir(dir)
		leaves[parent] = append(leaves[parent], object.TreeLeaf{
			Mode: object.TreeModeDir,
			Path: path.Base(dir),
			Hash: h,
		})
	}
	return rootHash, nil
}

// dirDepth orders tree buckets so every directory is written before the
// directory that references it. A parent always has one separator fewer than
// its children; the root is below everything.
func dirDepth(dir string) int {
	if dir == "." {
		return -1
	}
	return strings.Count(dir, "/")
}

// entryTreeMode maps an index entry's mode type and permissions onto the
// six-digit tree leaf mode.
func entryTreeMode(e *IndexEntry) string {
	switch e.ModeType {
	case ModeTypeSymlink:
		return object.TreeModeSymlink
	case ModeTypeGitlink:
		return object.TreeModeGitlink
	default:
		if e.ModePerms&0o111 != 0 {
			return object.TreeModeExecutable
		}
		return object.TreeModeFile
	}
}
