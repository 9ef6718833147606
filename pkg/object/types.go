package object

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// Type identifies the kind of object stored. The on-disk format defines a
// closed set of four kinds; anything else is rejected at decode time.
type Type string

const (
	TypeBlob   Type = "blob"
	TypeTree   Type = "tree"
	TypeCommit Type = "commit"
	TypeTag    Type = "tag"
)

const (
	// Tree mode constants, normalized to six zero-padded octal digits.
	TreeModeDir        = "040000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// Object is the closed union over the four stored kinds. Serialize returns
// the canonical byte form the content hash is derived from.
type Object interface {
	Type() Type
	Serialize() []byte
}

// Blob holds raw file data. Its serialized form is the data itself.
type Blob struct {
	Data []byte
}

func (b *Blob) Type() Type { return TypeBlob }

func (b *Blob) Serialize() []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob (identity).
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// TreeLeaf is one entry in a tree object. Mode is kept normalized to six
// octal digits; IsSubtree derives from the mode prefix.
type TreeLeaf struct {
	Mode string // six-digit octal, e.g. "040000", "100644"
	Path string // relative name, no slashes
	Hash Hash

	// wideMode records that the leaf was parsed from a six-digit on-disk
	// mode, so re-serializing reproduces the same width and hash.
	wideMode bool
}

// IsSubtree reports whether the leaf points at another tree.
func (l TreeLeaf) IsSubtree() bool {
	return len(l.Mode) >= 2 && l.Mode[:2] == "04"
}

// Tree holds an ordered list of leaves. Serialization sorts them by the
// name-slash rule regardless of the in-memory order.
type Tree struct {
	Leaves []TreeLeaf
}

func (t *Tree) Type() Type { return TypeTree }

// Commit is a KVLM-structured object whose headers reference a tree and
// zero or more parents.
type Commit struct {
	KVLM *KVLM
}

func (c *Commit) Type() Type { return TypeCommit }

func (c *Commit) Serialize() []byte { return c.KVLM.Serialize() }

// TreeHash returns the hash in the commit's "tree" header.
func (c *Commit) TreeHash() (Hash, bool) {
	v, ok := c.KVLM.Get("tree")
	return Hash(v), ok
}

// Parents returns the hashes of all "parent" headers, in order.
func (c *Commit) Parents() []Hash {
	var out []Hash
	for _, v := range c.KVLM.GetAll("parent") {
		out = append(out, Hash(v))
	}
	return out
}

// UnmarshalCommit parses a commit from its serialized form.
func UnmarshalCommit(data []byte) (*Commit, error) {
	kv, err := ParseKVLM(data)
	if err != nil {
		return nil, err
	}
	return &Commit{KVLM: kv}, nil
}

// Tag is an annotated tag: same KVLM structure as a commit, with an
// "object" header pointing at the tagged object.
type Tag struct {
	KVLM *KVLM
}

func (t *Tag) Type() Type { return TypeTag }

func (t *Tag) Serialize() []byte { return t.KVLM.Serialize() }

// TargetHash returns the hash in the tag's "object" header.
func (t *Tag) TargetHash() (Hash, bool) {
	v, ok := t.KVLM.Get("object")
	return Hash(v), ok
}

// UnmarshalTag parses a tag from its serialized form.
func UnmarshalTag(data []byte) (*Tag, error) {
	kv, err := ParseKVLM(data)
	if err != nil {
		return nil, err
	}
	return &Tag{KVLM: kv}, nil
}
