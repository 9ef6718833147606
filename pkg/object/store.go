package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed loose-object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds one zlib-compressed
// envelope "type len\0payload".
type Store struct {
	root string
}

// NewStore creates a Store rooted at the control directory. The objects/
// fan-out directories are created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if len(h) != 40 {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write serializes and stores an object, returning its content hash.
// Existing objects are never rewritten: content addressing makes the second
// write of identical content a no-op. New objects land via temp file + rename
// so a failed write is never observable as a valid object.
func (s *Store) Write(obj Object) (Hash, error) {
	data := obj.Serialize()
	h := HashObject(obj)

	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	if _, err := fmt.Fprintf(zw, "%s %d\x00", obj.Type(), len(data)); err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves and decodes an object by hash. The envelope's declared
// length must match the payload exactly, and the type tag must be one of the
// four known kinds.
func (s *Store) Read(h Hash) (Object, error) {
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("object read %s: decompress: %w", h, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("object read %s: decompress: %w", h, err)
	}

	objType, content, err := parseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}

	switch objType {
	case TypeBlob:
		return UnmarshalBlob(content)
	case TypeTree:
		return UnmarshalTree(content)
	case TypeCommit:
		return UnmarshalCommit(content)
	case TypeTag:
		return UnmarshalTag(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, objType)
	}
}

// parseEnvelope splits "type len\0payload" and validates the declared length.
func parseEnvelope(raw []byte) (Type, []byte, error) {
	spc := bytes.IndexByte(raw, ' ')
	if spc < 0 {
		return "", nil, fmt.Errorf("%w: envelope missing space", ErrMalformedObject)
	}
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 || nul < spc {
		return "", nil, fmt.Errorf("%w: envelope missing NUL", ErrMalformedObject)
	}

	objType := Type(raw[:spc])
	length, err := strconv.Atoi(string(raw[spc+1 : nul]))
	if err != nil {
		return "", nil, fmt.Errorf("%w: envelope length %q", ErrMalformedObject, raw[spc+1:nul])
	}

	content := raw[nul+1:]
	if length != len(content) {
		return "", nil, fmt.Errorf("%w: declared %d bytes, found %d", ErrCorruptObject, length, len(content))
	}
	return objType, content, nil
}

// ReadTyped reads an object and checks it against the wanted type.
func (s *Store) ReadTyped(h Hash, want Type) (Object, error) {
	obj, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if obj.Type() != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, obj.Type(), want)
	}
	return obj, nil
}

// ReadBlob reads an object and asserts it is a blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	obj, err := s.ReadTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return obj.(*Blob), nil
}

// ReadTree reads an object and asserts it is a tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	obj, err := s.ReadTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	return obj.(*Tree), nil
}

// ReadCommit reads an object and asserts it is a commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	obj, err := s.ReadTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return obj.(*Commit), nil
}

// ReadTag reads an object and asserts it is an annotated tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	obj, err := s.ReadTyped(h, TypeTag)
	if err != nil {
		return nil, err
	}
	return obj.(*Tag), nil
}

// ScanPrefix returns the hashes of loose objects whose hex name starts with
// the given prefix (at least four characters). This backs short-hash
// resolution: the two-character fan-out directory is scanned for matching
// remainders.
func (s *Store) ScanPrefix(prefix string) ([]Hash, error) {
	if len(prefix) < 4 {
		return nil, nil
	}
	dir := filepath.Join(s.root, "objects", prefix[:2])
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan objects %q: %w", prefix, err)
	}

	var out []Hash
	rest := prefix[2:]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) == 38 && len(rest) <= len(name) && name[:len(rest)] == rest {
			out = append(out, Hash(prefix[:2]+name))
		}
	}
	return out, nil
}
