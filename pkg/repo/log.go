package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// LogNode is one commit in a history walk.
type LogNode struct {
	Hash    object.Hash
	Summary string // first line of the commit message
	Parents []object.Hash
}

// Log walks the commit graph from a start name in depth-first order,
// visiting each commit once. Parent edges are preserved on the nodes so the
// presentation layer can render the graph.
func (r *Repository) Log(start string) ([]LogNode, error) {
	sha, err := r.Find(start, "", false)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	var nodes []LogNode
	seen := make(map[object.Hash]bool)
	if err := r.logWalk(sha, seen, &nodes); err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	return nodes, nil
}

func (r *Repository) logWalk(sha object.Hash, seen map[object.Hash]bool, nodes *[]LogNode) error {
	if seen[sha] {
		return nil
	}
	seen[sha] = true

	commit, err := r.Store.ReadCommit(sha)
	if err != nil {
		return err
	}

	summary := strings.TrimSpace(string(commit.KVLM.Message()))
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = summary[:i]
	}

	parents := commit.Parents()
	*nodes = append(*nodes, LogNode{Hash: sha, Summary: summary, Parents: parents})

	for _, parent := range parents {
		if err := r.logWalk(parent, seen, nodes); err != nil {
			return err
		}
	}
	return nil
}
