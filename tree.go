package merkletree

import (
	"fmt"

	"github.com/civisgrid/merkletree/mthash"
)

// NodeID identifies a node within a single [Tree].
//
// Leaves occupy IDs 0 through NumLeaves-1 in input order.
// Branches follow in the order they were created,
// so the root always has the highest ID.
type NodeID int

// NoNode is the NodeID reported for a missing parent or child.
const NoNode NodeID = -1

// Kind distinguishes leaves from branches.
type Kind uint8

const (
	KindLeaf Kind = iota + 1
	KindBranch
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBranch:
		return "branch"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Tree is an immutable binary hash tree.
//
// All node labels live in a single backing allocation,
// and the structure is expressed through integer-indexed tables
// instead of pointers between nodes.
type Tree struct {
	hasher mthash.Hasher

	// View into the backing label memory, one entry per node.
	labels [][]byte

	// Children are only set for branches; leaves hold {NoNode, NoNode}.
	children [][2]NodeID

	// Parent of every node; the root holds NoNode.
	parents []NodeID

	// The original items, aligned with the leaf IDs.
	items [][]byte

	reg registry
}

// Node is a read-only view of one node in a [Tree].
//
// Item references the caller's original data for leaves
// and must not be modified.
type Node struct {
	ID   NodeID
	Kind Kind

	Label string

	// Left and Right are NoNode for leaves.
	Left, Right NodeID

	// Parent is NoNode for the root.
	Parent NodeID

	// Item is nil for branches.
	Item []byte
}

// Hasher returns the hasher used to label the tree.
func (t *Tree) Hasher() mthash.Hasher {
	return t.hasher
}

// Root returns the ID of the root node.
func (t *Tree) Root() NodeID {
	return NodeID(len(t.labels) - 1)
}

// RootLabel returns the label of the root node.
func (t *Tree) RootLabel() string {
	return string(t.labels[t.Root()])
}

func (t *Tree) NumLeaves() int {
	return len(t.items)
}

func (t *Tree) NumBranches() int {
	return len(t.labels) - len(t.items)
}

func (t *Tree) NumNodes() int {
	return len(t.labels)
}

// Node returns a view of the node with the given ID.
// It panics if id is out of range.
func (t *Tree) Node(id NodeID) Node {
	t.checkID(id)

	n := Node{
		ID:     id,
		Label:  string(t.labels[id]),
		Left:   t.children[id][0],
		Right:  t.children[id][1],
		Parent: t.parents[id],
	}
	if t.isLeaf(id) {
		n.Kind = KindLeaf
		n.Item = t.items[id]
	} else {
		n.Kind = KindBranch
	}
	return n
}

// Leaf returns the ID of the leaf for input item i.
// It panics if i is out of range.
func (t *Tree) Leaf(i int) NodeID {
	if i < 0 || i >= len(t.items) {
		panic(fmt.Errorf(
			"BUG: attempted to get leaf at index %d; must be in range [0, %d)",
			i, len(t.items),
		))
	}
	return NodeID(i)
}

// Lookup returns the ID of the node with the given label.
func (t *Tree) Lookup(label string) (NodeID, bool) {
	return t.reg.lookup(label)
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	t.checkID(id)

	d := 0
	for p := t.parents[id]; p != NoNode; p = t.parents[p] {
		d++
	}
	return d
}

// Height returns the depth of the deepest leaf.
//
// Leaf 0 is paired on every level, so it is always one of the deepest leaves.
func (t *Tree) Height() int {
	return t.Depth(0)
}

func (t *Tree) isLeaf(id NodeID) bool {
	return int(id) < len(t.items)
}

func (t *Tree) checkID(id NodeID) {
	if id < 0 || int(id) >= len(t.labels) {
		panic(fmt.Errorf(
			"BUG: attempted to access node %d; must be in range [0, %d)",
			id, len(t.labels),
		))
	}
}
