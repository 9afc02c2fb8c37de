// Package mthash defines the hashing contract used to label tree nodes.
//
// Labels are fixed-size textual digests.
// The tree stores them verbatim, uses them as registry keys,
// and feeds the raw label bytes back into [Hasher.Node]
// when combining two children.
package mthash

// Hasher is the interface for labelling leaves and branches.
// The tree passes the raw item bytes to Leaf to create a leaf label,
// and it passes two labels previously returned from Leaf or Node
// to Node to create a branch label, left operand first.
//
// To be allocation-efficient, the Hasher implementation
// must append its label to dst and return the extended slice,
// instead of creating a new byte slice.
// Hasher must not retain references to dst or to the inputs.
//
// Every label must be exactly LabelSize bytes.
//
// Furthermore, Hasher methods must be safe to call concurrently.
type Hasher interface {
	Leaf(in []byte, dst []byte) []byte
	Node(left, right []byte, dst []byte) []byte

	LabelSize() int
}
