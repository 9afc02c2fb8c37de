package merkletree

import "fmt"

// Side indicates where a sibling label goes
// when recombining it with the running label during verification.
type Side byte

const (
	// SideLeft means the sibling is hashed first: Node(sibling, current).
	SideLeft Side = 'L'

	// SideRight means the sibling is hashed second: Node(current, sibling).
	SideRight Side = 'R'
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("Side(%q)", byte(s))
	}
}

// ProofEntry is one step of an inclusion proof.
type ProofEntry struct {
	Sibling string
	Side    Side
}

// Proof is an inclusion proof, ordered bottom-up.
// Index 0 is the sibling nearest the leaf,
// and the final entry is a child of the root.
// The proof of a single-node tree is empty.
type Proof []ProofEntry

// MakeProof returns the inclusion proof for item.
//
// If no leaf in t has the label of item,
// MakeProof returns a [NotFoundError].
// When several leaves share the label,
// the proof is for the first of them.
func (t *Tree) MakeProof(item []byte) (Proof, error) {
	label := string(t.hasher.Leaf(item, make([]byte, 0, t.hasher.LabelSize())))

	id, ok := t.reg.lookup(label)
	if !ok || !t.isLeaf(id) {
		// A branch label is not a proof target even if item happens to hash to it.
		return nil, NotFoundError{Label: label}
	}

	return t.proofFrom(id), nil
}

// LeafProof returns the inclusion proof for the leaf of input item i.
// It panics if i is out of range.
func (t *Tree) LeafProof(i int) Proof {
	return t.proofFrom(t.Leaf(i))
}

func (t *Tree) proofFrom(id NodeID) Proof {
	// The depth is known exactly, so size the proof once.
	proof := make(Proof, 0, t.Depth(id))

	for parent := t.parents[id]; parent != NoNode; id, parent = parent, t.parents[parent] {
		c := t.children[parent]
		switch id {
		case c[0]:
			proof = append(proof, ProofEntry{
				Sibling: string(t.labels[c[1]]),
				Side:    SideRight,
			})
		case c[1]:
			proof = append(proof, ProofEntry{
				Sibling: string(t.labels[c[0]]),
				Side:    SideLeft,
			})
		default:
			panic(fmt.Errorf(
				"BUG: node %d has parent %d whose children are %d and %d",
				id, parent, c[0], c[1],
			))
		}
	}

	return proof
}
