package merkletree

import (
	"github.com/civisgrid/merkletree/mthash"
	"github.com/civisgrid/merkletree/mthash/mtsha3"
)

// Verify reports whether proof shows that item is included
// under the given root label, using the default SHA3-256 hasher.
//
// See [VerifyWithHasher].
func Verify(item []byte, proof Proof, root string) bool {
	return VerifyWithHasher(mtsha3.Hasher{}, item, proof, root)
}

// VerifyWithHasher reports whether proof shows that item is included
// under the given root label.
//
// Verification only needs the item, the proof, the hasher,
// and a root label obtained from a trusted source;
// it does not need the tree.
// A malformed proof, such as one with an unknown side marker
// or a garbled sibling label, simply fails to verify.
func VerifyWithHasher(h mthash.Hasher, item []byte, proof Proof, root string) bool {
	sz := h.LabelSize()

	cur := h.Leaf(item, make([]byte, 0, sz))
	next := make([]byte, 0, sz)

	for _, e := range proof {
		switch e.Side {
		case SideLeft:
			next = h.Node([]byte(e.Sibling), cur, next[:0])
		case SideRight:
			next = h.Node(cur, []byte(e.Sibling), next[:0])
		default:
			return false
		}

		cur, next = next, cur
	}

	return string(cur) == root
}
