package repo

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/odvcencio/grit/pkg/object"
)

// Staging index binary layout (all integers big-endian):
//
//	header:  "DIRC" | version u32 | entry count u32
//	entry:   62 fixed bytes | name | NUL | zero-pad to the next 8-byte
//	         boundary, measured from the start of the file
//
// The format carries no checksum; the write path is the exact inverse of the
// read path so that read(write(index)) == index.
const (
	indexSignature = "DIRC"
	indexVersion   = 2

	indexEntryFixedLen = 62

	// 4-bit object type stored in the mode field's top nibble.
	ModeTypeRegular uint16 = 0b1000
	ModeTypeSymlink uint16 = 0b1010
	ModeTypeGitlink uint16 = 0b1110

	// Name lengths at or above the sentinel are stored as "read until NUL".
	indexNameLenMax = 0xFFF
)

// IndexEntry is the staged state of one file.
type IndexEntry struct {
	CTimeSec    uint32
	CTimeNsec   uint32
	MTimeSec    uint32
	MTimeNsec   uint32
	Dev         uint32
	Ino         uint32
	ModeType    uint16 // one of ModeTypeRegular/Symlink/Gitlink
	ModePerms   uint16 // low 9 permission bits
	UID         uint32
	GID         uint32
	Size        uint32
	Hash        object.Hash
	AssumeValid bool
	Stage       uint16 // 2-bit stage number
	Name        string // slash-separated path relative to the worktree
}

// Index is the ordered staging area: the durable record of what was last
// staged, loaded at the start of every status operation and rewritten
// wholesale on any mutation.
type Index struct {
	Version uint32
	Entries []*IndexEntry
}

// NewIndex returns an empty version-2 index.
func NewIndex() *Index {
	return &Index{Version: indexVersion}
}

// Entry returns the entry for a path, if staged.
func (idx *Index) Entry(name string) (*IndexEntry, bool) {
	for _, e := range idx.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (r *Repository) indexPath() string {
	return r.path("index")
}

// ReadIndex loads the staging area from .git/index. A missing index file is
// the defined empty state, not an error.
func (r *Repository) ReadIndex() (*Index, error) {
	raw, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	idx, err := parseIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

func parseIndex(raw []byte) (*Index, error) {
	if len(raw) < 12 {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidIndexFormat)
	}
	if string(raw[0:4]) != indexSignature {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidIndexFormat, raw[0:4])
	}
	version := binary.BigEndian.Uint32(raw[4:8])
	if version != indexVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidIndexFormat, version)
	}
	count := binary.BigEndian.Uint32(raw[8:12])

	idx := &Index{Version: version}
	pos := 12
	for i := uint32(0); i < count; i++ {
		if pos+indexEntryFixedLen > len(raw) {
			return nil, fmt.Errorf("%w: entry %d truncated", ErrInvalidIndexFormat, i)
		}

		e := &IndexEntry{
			CTimeSec:  binary.BigEndian.Uint32(raw[pos : pos+4]),
			CTimeNsec: binary.BigEndian.Uint32(raw[pos+4 : pos+8]),
			MTimeSec:  binary.BigEndian.Uint32(raw[pos+8 : pos+12]),
			MTimeNsec: binary.BigEndian.Uint32(raw[pos+12 : pos+16]),
			Dev:       binary.BigEndian.Uint32(raw[pos+16 : pos+20]),
			Ino:       binary.BigEndian.Uint32(raw[pos+20 : pos+24]),
		}

		mode := binary.BigEndian.Uint32(raw[pos+24 : pos+28])
		if mode>>16 != 0 {
			return nil, fmt.Errorf("%w: entry %d has non-zero reserved mode bits", ErrInvalidIndexFormat, i)
		}
		e.ModeType = uint16(mode>>12) & 0xF
		switch e.ModeType {
		case ModeTypeRegular, ModeTypeSymlink, ModeTypeGitlink:
		default:
			return nil, fmt.Errorf("%w: entry %d has mode type %04b", ErrInvalidIndexFormat, i, e.ModeType)
		}
		e.ModePerms = uint16(mode) & 0x1FF

		e.UID = binary.BigEndian.Uint32(raw[pos+28 : pos+32])
		e.GID = binary.BigEndian.Uint32(raw[pos+32 : pos+36])
		e.Size = binary.BigEndian.Uint32(raw[pos+36 : pos+40])
		e.Hash = object.Hash(hex.EncodeToString(raw[pos+40 : pos+60]))

		flags := binary.BigEndian.Uint16(raw[pos+60 : pos+62])
		e.AssumeValid = flags&(1<<15) != 0
		if flags&(1<<14) == 0 {
			return nil, fmt.Errorf("%w: entry %d missing extended flag", ErrInvalidIndexFormat, i)
		}
		e.Stage = (flags >> 12) & 0x3
		nameLen := int(flags & indexNameLenMax)

		pos += indexEntryFixedLen

		if nameLen < indexNameLenMax {
			if pos+nameLen >= len(raw) || raw[pos+nameLen] != 0 {
				return nil, fmt.Errorf("%w: entry %d missing name terminator", ErrInvalidIndexFormat, i)
			}
			e.Name = string(raw[pos : pos+nameLen])
			pos += nameLen + 1
		} else {
			nul := bytes.IndexByte(raw[pos:], 0)
			if nul < 0 {
				return nil, fmt.Errorf("%w: entry %d missing name terminator", ErrInvalidIndexFormat, i)
			}
			e.Name = string(raw[pos : pos+nul])
			pos += nul + 1
		}

		if rem := pos % 8; rem != 0 {
			pos += 8 - rem
		}

		idx.Entries = append(idx.Entries, e)
	}

	return idx, nil
}

// WriteIndex rewrites the staging area wholesale via temp file + rename.
// There is no cross-process lock: concurrent writers race with last-writer-
// wins, by design of the format.
func (r *Repository) WriteIndex(idx *Index) error {
	data, err := encodeIndex(idx)
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	tmp, err := os.CreateTemp(r.GitDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write index: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: close: %w", err)
	}
	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: rename: %w", err)
	}
	return nil
}

func encodeIndex(idx *Index) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(indexSignature)

	var u32 [4]byte
	var u16 [2]byte
	putU32 := func(v uint32) {
		binary.BigEndian.PutUint32(u32[:], v)
		buf.Write(u32[:])
	}
	putU16 := func(v uint16) {
		binary.BigEndian.PutUint16(u16[:], v)
		buf.Write(u16[:])
	}

	putU32(idx.Version)
	putU32(uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		putU32(e.CTimeSec)
		putU32(e.CTimeNsec)
		putU32(e.MTimeSec)
		putU32(e.MTimeNsec)
		putU32(e.Dev)
		putU32(e.Ino)
		putU32(uint32(e.ModeType)<<12 | uint32(e.ModePerms))
		putU32(e.UID)
		putU32(e.GID)
		putU32(e.Size)

		sha, err := hex.DecodeString(string(e.Hash))
		if err != nil || len(sha) != 20 {
			return nil, fmt.Errorf("entry %q: invalid hash %q", e.Name, e.Hash)
		}
		buf.Write(sha)

		nameBytes := []byte(e.Name)
		nameLen := len(nameBytes)
		if nameLen >= indexNameLenMax {
			nameLen = indexNameLenMax
		}
		var flags uint16
		if e.AssumeValid {
			flags |= 1 << 15
		}
		flags |= 1 << 14
		flags |= (e.Stage & 0x3) << 12
		flags |= uint16(nameLen)
		putU16(flags)

		buf.Write(nameBytes)
		buf.WriteByte(0)

		// Padding is computed against the whole file, header included.
		if rem := buf.Len() % 8; rem != 0 {
			buf.Write(make([]byte, 8-rem))
		}
	}

	return buf.Bytes(), nil
}
