package repo

import (
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
	"pgregory.net/rapid"
)

func sampleEntry(name string, h object.Hash) *IndexEntry {
	return &IndexEntry{
		CTimeSec:  1700000000,
		CTimeNsec: 123456789,
		MTimeSec:  1700000001,
		MTimeNsec: 987654321,
		Dev:       64769,
		Ino:       4242,
		ModeType:  ModeTypeRegular,
		ModePerms: 0o644,
		UID:       1000,
		GID:       1000,
		Size:      11,
		Hash:      h,
		Name:      name,
	}
}

func TestIndexRoundTrip(t *testing.T) {
	idx := NewIndex()
	idx.Entries = append(idx.Entries,
		sampleEntry("a.txt", refHashA),
		sampleEntry("dir/nested.go", refHashB),
	)
	idx.Entries[1].ModePerms = 0o755
	idx.Entries[1].AssumeValid = true
	idx.Entries[1].Stage = 2

	data, err := encodeIndex(idx)
	if err != nil {
		t.Fatalf("encodeIndex: %v", err)
	}
	if len(data)%8 != 0 {
		t.Errorf("encoded length %d not 8-byte aligned", len(data))
	}

	got, err := parseIndex(data)
	if err != nil {
		t.Fatalf("parseIndex: %v", err)
	}
	if got.Version != indexVersion {
		t.Errorf("version = %d", got.Version)
	}
	if len(got.Entries) != len(idx.Entries) {
		t.Fatalf("got %d entries, want %d", len(got.Entries), len(idx.Entries))
	}
	for i := range idx.Entries {
		if !reflect.DeepEqual(*got.Entries[i], *idx.Entries[i]) {
			t.Errorf("entry %d:\ngot:  %+v\nwant: %+v", i, *got.Entries[i], *idx.Entries[i])
		}
	}
}

func TestIndexReadWriteFile(t *testing.T) {
	r := testRepo(t)

	// A repository with no index file reads as the empty index.
	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(idx.Entries) != 0 {
		t.Errorf("fresh index has %d entries", len(idx.Entries))
	}

	idx.Entries = append(idx.Entries, sampleEntry("file.txt", refHashA))
	if err := r.WriteIndex(idx); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}

	got, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if len(got.Entries) != 1 || !reflect.DeepEqual(*got.Entries[0], *idx.Entries[0]) {
		t.Errorf("round trip mismatch: %+v", got.Entries)
	}
}

func TestIndexLongName(t *testing.T) {
	// Names at or past the 12-bit length field fall back to the stored-length
	// sentinel and are read up to the NUL terminator.
	long := strings.Repeat("d/", 2400) + "leaf.txt"
	if len(long) < indexNameLenMax {
		t.Fatalf("test name too short: %d", len(long))
	}

	idx := NewIndex()
	idx.Entries = append(idx.Entries, sampleEntry(long, refHashA))

	data, err := encodeIndex(idx)
	if err != nil {
		t.Fatalf("encodeIndex: %v", err)
	}
	got, err := parseIndex(data)
	if err != nil {
		t.Fatalf("parseIndex: %v", err)
	}
	if got.Entries[0].Name != long {
		t.Errorf("long name truncated: got %d bytes, want %d", len(got.Entries[0].Name), len(long))
	}

	// Re-encoding what was read emits the identical byte sequence.
	again, err := encodeIndex(got)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if len(again) != len(data) {
		t.Errorf("re-encoded length %d, want %d", len(again), len(data))
	}
}

func validIndexBytes(t *testing.T) []byte {
	t.Helper()
	idx := NewIndex()
	idx.Entries = append(idx.Entries, sampleEntry("a.txt", refHashA))
	data, err := encodeIndex(idx)
	if err != nil {
		t.Fatalf("encodeIndex: %v", err)
	}
	return data
}

func TestParseIndexRejectsBadMagic(t *testing.T) {
	data := validIndexBytes(t)
	data[0] = 'X'
	if _, err := parseIndex(data); !errors.Is(err, ErrInvalidIndexFormat) {
		t.Errorf("error = %v, want ErrInvalidIndexFormat", err)
	}
}

func TestParseIndexRejectsBadVersion(t *testing.T) {
	data := validIndexBytes(t)
	binary.BigEndian.PutUint32(data[4:8], 3)
	if _, err := parseIndex(data); !errors.Is(err, ErrInvalidIndexFormat) {
		t.Errorf("error = %v, want ErrInvalidIndexFormat", err)
	}
}

func TestParseIndexRejectsTruncatedEntry(t *testing.T) {
	data := validIndexBytes(t)
	if _, err := parseIndex(data[:40]); !errors.Is(err, ErrInvalidIndexFormat) {
		t.Errorf("error = %v, want ErrInvalidIndexFormat", err)
	}
}

func TestParseIndexRejectsReservedModeBits(t *testing.T) {
	data := validIndexBytes(t)
	// Mode is the u32 at entry offset 24; its top 16 bits are reserved.
	data[12+24] = 0xFF
	if _, err := parseIndex(data); !errors.Is(err, ErrInvalidIndexFormat) {
		t.Errorf("error = %v, want ErrInvalidIndexFormat", err)
	}
}

func TestParseIndexRejectsBadModeType(t *testing.T) {
	data := validIndexBytes(t)
	// Type nibble 0b0100 is not a regular file, symlink, or gitlink.
	binary.BigEndian.PutUint32(data[12+24:12+28], 0b0100<<12|0o644)
	if _, err := parseIndex(data); !errors.Is(err, ErrInvalidIndexFormat) {
		t.Errorf("error = %v, want ErrInvalidIndexFormat", err)
	}
}

func TestParseIndexRequiresExtendedFlag(t *testing.T) {
	data := validIndexBytes(t)
	// Flags are the u16 at entry offset 60; clear bit 14.
	data[12+60] &^= 0x40
	if _, err := parseIndex(data); !errors.Is(err, ErrInvalidIndexFormat) {
		t.Errorf("error = %v, want ErrInvalidIndexFormat", err)
	}
}

func TestIndexRoundTripProperty(t *testing.T) {
	modeTypes := []uint16{ModeTypeRegular, ModeTypeSymlink, ModeTypeGitlink}

	rapid.Check(t, func(t *rapid.T) {
		idx := NewIndex()
		n := rapid.IntRange(0, 8).Draw(t, "entries")
		for i := 0; i < n; i++ {
			idx.Entries = append(idx.Entries, &IndexEntry{
				CTimeSec:    rapid.Uint32().Draw(t, "ctime"),
				CTimeNsec:   uint32(rapid.IntRange(0, 999999999).Draw(t, "ctimeNsec")),
				MTimeSec:    rapid.Uint32().Draw(t, "mtime"),
				MTimeNsec:   uint32(rapid.IntRange(0, 999999999).Draw(t, "mtimeNsec")),
				Dev:         rapid.Uint32().Draw(t, "dev"),
				Ino:         rapid.Uint32().Draw(t, "ino"),
				ModeType:    rapid.SampledFrom(modeTypes).Draw(t, "modeType"),
				ModePerms:   uint16(rapid.IntRange(0, 0o777).Draw(t, "perms")),
				UID:         rapid.Uint32().Draw(t, "uid"),
				GID:         rapid.Uint32().Draw(t, "gid"),
				Size:        rapid.Uint32().Draw(t, "size"),
				Hash:        object.Hash(rapid.StringMatching(`[0-9a-f]{40}`).Draw(t, "hash")),
				AssumeValid: rapid.Bool().Draw(t, "assumeValid"),
				Stage:       uint16(rapid.IntRange(0, 3).Draw(t, "stage")),
				Name:        rapid.StringMatching(`[a-z0-9._/-]{1,80}`).Draw(t, "name"),
			})
		}

		data, err := encodeIndex(idx)
		if err != nil {
			t.Fatalf("encodeIndex: %v", err)
		}
		got, err := parseIndex(data)
		if err != nil {
			t.Fatalf("parseIndex: %v", err)
		}
		if len(got.Entries) != len(idx.Entries) {
			t.Fatalf("got %d entries, want %d", len(got.Entries), len(idx.Entries))
		}
		for i := range idx.Entries {
			if !reflect.DeepEqual(*got.Entries[i], *idx.Entries[i]) {
				t.Fatalf("entry %d:\ngot:  %+v\nwant: %+v", i, *got.Entries[i], *idx.Entries[i])
			}
		}
	})
}
