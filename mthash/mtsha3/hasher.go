// Package mtsha3 provides the SHA3-256 [mthash.Hasher].
//
// Labels are the lowercase hex encoding of the 32-byte digest.
// Branch labels hash the concatenated hex text of both children,
// so a verifier only ever deals in label text.
package mtsha3

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the size of the raw SHA3-256 digest.
const DigestSize = 32

// LabelSize is the size of a hex-encoded label.
const LabelSize = 2 * DigestSize

// Hasher is a [mthash.Hasher] backed by SHA3-256 hashes.
type Hasher struct{}

func (Hasher) Leaf(in []byte, dst []byte) []byte {
	sum := sha3.Sum256(in)
	return hex.AppendEncode(dst, sum[:])
}

func (Hasher) Node(left, right []byte, dst []byte) []byte {
	h := sha3.New256()
	_, _ = h.Write(left)
	_, _ = h.Write(right)

	var sum [DigestSize]byte
	return hex.AppendEncode(dst, h.Sum(sum[:0]))
}

func (Hasher) LabelSize() int {
	return LabelSize
}

// Label returns the leaf label of in as a string.
func Label(in []byte) string {
	return string(Hasher{}.Leaf(in, make([]byte, 0, LabelSize)))
}
