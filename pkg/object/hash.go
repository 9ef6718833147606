package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashObject computes the SHA-1 of the envelope "<type> <len>\0<payload>".
// The hash is the object's sole identity and storage key; it can be computed
// without a store (dry-run hashing).
func HashObject(obj Object) Hash {
	data := obj.Serialize()
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", obj.Type(), len(data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
