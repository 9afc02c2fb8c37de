// Package merkletree contains a content-addressed binary hash tree
// built once from an ordered sequence of items,
// along with inclusion proofs that can be checked without the tree.
//
// Build a tree with [Build] (or [New] for the default SHA3-256 labels).
// Leaf i corresponds to input item i.
// Each level is reduced by pairing adjacent nodes left to right;
// when a level has an odd count, its last node is promoted unchanged
// to the next level, and it is never paired with a copy of itself.
//
// [*Tree.MakeProof] returns the sibling labels from a leaf to the root,
// and [Verify] recomputes the root from an item and a proof alone.
// Once built, a Tree is immutable and safe for concurrent reads.
package merkletree
