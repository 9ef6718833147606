package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
)

// Serialize encodes the tree in canonical form: leaves sorted by path, with
// a trailing slash on the sort key for subtree leaves so directories order as
// "name/". Each leaf is "<mode> <path>\0<20-byte-sha>" with no separator.
// Leaves constructed in memory emit modes without the six-digit zero pad
// (directories encode as the canonical five-byte "40000"); parsed leaves
// re-emit the width they carried on disk, keeping round-trips byte-identical
// for either encoding.
func (t *Tree) Serialize() []byte {
	sorted := make([]TreeLeaf, len(t.Leaves))
	copy(sorted, t.Leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return treeSortKey(sorted[i]) < treeSortKey(sorted[j])
	})

	var buf bytes.Buffer
	for _, leaf := range sorted {
		mode := leaf.Mode
		if len(mode) == 6 && mode[0] == '0' && !leaf.wideMode {
			mode = mode[1:]
		}
		buf.WriteString(mode)
		buf.WriteByte(' ')
		buf.WriteString(leaf.Path)
		buf.WriteByte(0)
		raw, err := hex.DecodeString(string(leaf.Hash))
		if err != nil || len(raw) != 20 {
			// Leaves are validated on construction/parse; a bad hash here is
			// a caller bug.
			panic(fmt.Sprintf("tree leaf %q has invalid hash %q", leaf.Path, leaf.Hash))
		}
		buf.Write(raw)
	}
	return buf.Bytes()
}

func treeSortKey(leaf TreeLeaf) string {
	if leaf.IsSubtree() {
		return leaf.Path + "/"
	}
	return leaf.Path
}

// UnmarshalTree parses a tree body leaf by leaf. Parsing terminates on
// discovered delimiters only and fails when a space, NUL, or the 20 hash
// bytes are missing.
func UnmarshalTree(data []byte) (*Tree, error) {
	t := &Tree{}
	pos := 0
	for pos < len(data) {
		leaf, next, err := treeParseOne(data, pos)
		if err != nil {
			return nil, err
		}
		t.Leaves = append(t.Leaves, leaf)
		pos = next
	}
	return t, nil
}

func treeParseOne(raw []byte, start int) (TreeLeaf, int, error) {
	spc := bytes.IndexByte(raw[start:], ' ')
	if spc < 0 {
		return TreeLeaf{}, 0, fmt.Errorf("%w: tree leaf missing mode separator at offset %d", ErrMalformedObject, start)
	}
	if spc != 5 && spc != 6 {
		return TreeLeaf{}, 0, fmt.Errorf("%w: tree leaf mode is %d bytes at offset %d", ErrMalformedObject, spc, start)
	}
	mode := string(raw[start : start+spc])
	wide := len(mode) == 6
	if len(mode) == 5 {
		mode = "0" + mode
	}

	rest := start + spc + 1
	nul := bytes.IndexByte(raw[rest:], 0)
	if nul < 0 {
		return TreeLeaf{}, 0, fmt.Errorf("%w: tree leaf missing path terminator at offset %d", ErrMalformedObject, rest)
	}
	path := string(raw[rest : rest+nul])

	shaStart := rest + nul + 1
	shaEnd := shaStart + 20
	if shaEnd > len(raw) {
		return TreeLeaf{}, 0, fmt.Errorf("%w: tree leaf hash truncated at offset %d", ErrMalformedObject, shaStart)
	}
	sha := hex.EncodeToString(raw[shaStart:shaEnd])

	return TreeLeaf{Mode: mode, Path: path, Hash: Hash(sha), wideMode: wide}, shaEnd, nil
}
