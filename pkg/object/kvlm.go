package object

import (
	"bytes"
	"fmt"
)

// KVLM is the key-value-list-with-message structure shared by commits and
// tags: ordered headers (repeatable keys, values that may span lines) followed
// by a blank line and a free-text message. Key order is insertion order;
// repeated keys group at the first occurrence, as in the wire format. Input
// that interleaves a repeated key with other headers re-serializes with that
// key's values grouped together.
type KVLM struct {
	keys    []string
	values  map[string][][]byte
	message []byte
}

// NewKVLM returns an empty KVLM.
func NewKVLM() *KVLM {
	return &KVLM{values: make(map[string][][]byte)}
}

// Add appends a value under key, creating the key at the end of the header
// order on first use.
func (k *KVLM) Add(key string, value []byte) {
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.values[key] = append(k.values[key], value)
}

// Get returns the first value for key.
func (k *KVLM) Get(key string) (string, bool) {
	vs, ok := k.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return string(vs[0]), true
}

// GetAll returns every value for key, in order.
func (k *KVLM) GetAll(key string) []string {
	var out []string
	for _, v := range k.values[key] {
		out = append(out, string(v))
	}
	return out
}

// Keys returns the header keys in serialization order.
func (k *KVLM) Keys() []string {
	out := make([]string, len(k.keys))
	copy(out, k.keys)
	return out
}

// Message returns the free-text message.
func (k *KVLM) Message() []byte { return k.message }

// SetMessage replaces the free-text message.
func (k *KVLM) SetMessage(msg []byte) { k.message = msg }

// Serialize emits headers in order, folding embedded newlines in values as
// continuation lines (newline followed by one space), then a blank line and
// the message. The message is never continuation-escaped.
func (k *KVLM) Serialize() []byte {
	var buf bytes.Buffer
	for _, key := range k.keys {
		for _, value := range k.values[key] {
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(bytes.ReplaceAll(value, []byte("\n"), []byte("\n ")))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(k.message)
	return buf.Bytes()
}

// ParseKVLM parses the serialized header+message form. It tracks delimiter
// positions over the raw buffer and fails on a header line missing its space
// or newline; it never assumes any terminator beyond what it finds.
func ParseKVLM(raw []byte) (*KVLM, error) {
	k := NewKVLM()

	pos := 0
	for pos < len(raw) {
		// A newline at the cursor is the blank separator line: everything
		// after it is the message.
		if raw[pos] == '\n' {
			k.message = append([]byte(nil), raw[pos+1:]...)
			return k, nil
		}

		spc := bytes.IndexByte(raw[pos:], ' ')
		nl := bytes.IndexByte(raw[pos:], '\n')
		if spc < 0 || (nl >= 0 && nl < spc) {
			return nil, fmt.Errorf("%w: header line missing key separator at offset %d", ErrMalformedObject, pos)
		}
		if nl < 0 {
			return nil, fmt.Errorf("%w: unterminated header line at offset %d", ErrMalformedObject, pos)
		}

		key := string(raw[pos : pos+spc])

		// The value ends at the first newline not followed by a space;
		// continuation lines begin with exactly one space.
		end := pos + nl
		for end+1 < len(raw) && raw[end+1] == ' ' {
			next := bytes.IndexByte(raw[end+1:], '\n')
			if next < 0 {
				end = len(raw)
				break
			}
			end = end + 1 + next
		}

		value := unfoldContinuations(raw[pos+spc+1 : min(end, len(raw))])
		k.Add(key, value)

		pos = end + 1
	}

	return k, nil
}

// unfoldContinuations strips the single leading space after each embedded
// newline, inverting the serialization fold.
func unfoldContinuations(value []byte) []byte {
	out := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		out = append(out, value[i])
		if value[i] == '\n' && i+1 < len(value) && value[i+1] == ' ' {
			i++
		}
	}
	return out
}
