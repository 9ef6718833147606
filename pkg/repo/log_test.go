package repo

import (
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func TestLogLinearHistory(t *testing.T) {
	r := testRepo(t)
	first := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first change\n\nwith a body")
	second := commitFiles(t, r, map[string]string{"a.txt": "two\n"}, "second change")
	third := commitFiles(t, r, map[string]string{"a.txt": "three\n"}, "third change")

	nodes, err := r.Log("HEAD")
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}

	wantOrder := []object.Hash{third, second, first}
	wantSummary := []string{"third change", "second change", "first change"}
	for i := range wantOrder {
		if nodes[i].Hash != wantOrder[i] {
			t.Errorf("nodes[%d].Hash = %s, want %s", i, nodes[i].Hash, wantOrder[i])
		}
		if nodes[i].Summary != wantSummary[i] {
			t.Errorf("nodes[%d].Summary = %q, want %q", i, nodes[i].Summary, wantSummary[i])
		}
	}

	if len(nodes[0].Parents) != 1 || nodes[0].Parents[0] != second {
		t.Errorf("nodes[0].Parents = %v", nodes[0].Parents)
	}
	if len(nodes[2].Parents) != 0 {
		t.Errorf("root commit has parents %v", nodes[2].Parents)
	}
}

func TestLogFromMidpoint(t *testing.T) {
	r := testRepo(t)
	first := commitFiles(t, r, map[string]string{"a.txt": "one\n"}, "first")
	second := commitFiles(t, r, map[string]string{"a.txt": "two\n"}, "second")
	commitFiles(t, r, map[string]string{"a.txt": "three\n"}, "third")

	nodes, err := r.Log(string(second[:10]))
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Hash != second || nodes[1].Hash != first {
		t.Errorf("order = [%s %s]", nodes[0].Hash, nodes[1].Hash)
	}
}
