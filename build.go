package merkletree

import (
	"fmt"
	"log/slog"

	"github.com/bits-and-blooms/bitset"
	"github.com/civisgrid/merkletree/mthash"
	"github.com/civisgrid/merkletree/mthash/mtsha3"
	"golang.org/x/sync/errgroup"
)

// minParallelPairs is the smallest number of pairs
// handed to a single goroutine when hashing a level concurrently.
const minParallelPairs = 64

// BuildConfig is the configuration used for [Build].
type BuildConfig struct {
	// How to label leaves and branches.
	// Defaults to [mtsha3.Hasher] when nil.
	Hasher mthash.Hasher

	// Parallelism is the maximum number of goroutines
	// used to hash a single level of the tree.
	// Values of 0 or 1 build the tree sequentially.
	// The resulting tree is identical either way.
	Parallelism int

	// Optional logger; nothing is logged when nil.
	Log *slog.Logger
}

// New builds a tree over items with the default SHA3-256 hasher.
func New(items [][]byte) (*Tree, error) {
	return Build(items, BuildConfig{})
}

// Build creates a tree whose leaves are the given items, in order.
//
// The tree references the item slices directly;
// the caller must not modify them while the tree is in use.
//
// Build returns [ErrEmptyInput] if items is empty.
func Build(items [][]byte, cfg BuildConfig) (*Tree, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInput
	}

	h := cfg.Hasher
	if h == nil {
		h = mtsha3.Hasher{}
	}
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	b := newBuilder(items, h, cfg.Parallelism)
	b.hashLeaves()

	// Each level is a list of node IDs, left to right.
	level := make([]NodeID, len(items))
	for i := range level {
		level[i] = NodeID(i)
	}

	writeID := NodeID(len(items))
	next := make([]NodeID, 0, (len(level)+1)/2)
	for len(level) > 1 {
		nPairs := len(level) / 2

		b.hashPairs(level, writeID)

		next = next[:0]
		for p := range nPairs {
			id := writeID + NodeID(p)
			left, right := level[2*p], level[2*p+1]

			b.t.children[id] = [2]NodeID{left, right}
			b.setParent(left, id)
			b.setParent(right, id)

			next = append(next, id)
		}

		if len(level)&1 == 1 {
			// Odd count: the final node moves up unchanged, still rightmost.
			next = append(next, level[len(level)-1])
		}

		writeID += NodeID(nPairs)
		level, next = next, level
	}

	if int(writeID) != len(b.t.labels) || level[0] != b.t.Root() {
		panic(fmt.Errorf(
			"BUG: built %d nodes with root %d for %d leaves (expected %d nodes)",
			writeID, level[0], len(items), len(b.t.labels),
		))
	}
	if n := b.haveParent.Count(); int(n) != len(b.t.labels)-1 {
		panic(fmt.Errorf(
			"BUG: %d nodes have a parent; expected %d", n, len(b.t.labels)-1,
		))
	}

	b.register(log)

	log.Debug(
		"Built tree",
		"leaves", b.t.NumLeaves(),
		"branches", b.t.NumBranches(),
		"height", b.t.Height(),
		"root", b.t.RootLabel(),
	)

	return b.t, nil
}

// builder holds the state only needed during construction.
type builder struct {
	t *Tree

	labelSize   int
	parallelism int

	// Which nodes have already been assigned a parent.
	haveParent *bitset.BitSet
}

func newBuilder(items [][]byte, h mthash.Hasher, parallelism int) *builder {
	labelSize := h.LabelSize()
	if labelSize <= 0 {
		panic(fmt.Errorf(
			"BUG: label size must be positive (got %d)", labelSize,
		))
	}

	// Any tree where every branch has exactly two children
	// has this many nodes.
	nNodes := 2*len(items) - 1

	// We know the exact node count and label size up front,
	// so back every label with a single slice.
	mem := make([]byte, nNodes*labelSize)
	labels := make([][]byte, nNodes)
	for i := range labels {
		start := i * labelSize
		end := start + labelSize

		// Zero length so the hasher appends directly into the arena.
		labels[i] = mem[start:start:end]
	}

	children := make([][2]NodeID, nNodes)
	parents := make([]NodeID, nNodes)
	for i := range nNodes {
		children[i] = [2]NodeID{NoNode, NoNode}
		parents[i] = NoNode
	}

	return &builder{
		t: &Tree{
			hasher: h,

			labels:   labels,
			children: children,
			parents:  parents,

			items: items,

			reg: newRegistry(nNodes),
		},

		labelSize:   labelSize,
		parallelism: parallelism,

		haveParent: bitset.MustNew(uint(nNodes)),
	}
}

func (b *builder) hashLeaves() {
	b.run(len(b.t.items), func(start, end int) {
		for i := start; i < end; i++ {
			b.store(NodeID(i), b.t.hasher.Leaf(b.t.items[i], b.t.labels[i]))
		}
	})
}

// hashPairs labels the branches for every full pair in level,
// writing them to consecutive IDs starting at writeID.
func (b *builder) hashPairs(level []NodeID, writeID NodeID) {
	b.run(len(level)/2, func(start, end int) {
		for p := start; p < end; p++ {
			id := writeID + NodeID(p)
			left, right := b.t.labels[level[2*p]], b.t.labels[level[2*p+1]]
			b.store(id, b.t.hasher.Node(left, right, b.t.labels[id]))
		}
	})
}

// run calls fn over [0, n), split across goroutines
// when parallelism is enabled and there is enough work.
// Every index writes to a distinct label slot,
// so the chunks share no mutable state.
func (b *builder) run(n int, fn func(start, end int)) {
	if b.parallelism <= 1 || n < 2*minParallelPairs {
		fn(0, n)
		return
	}

	chunk := max(minParallelPairs, (n+b.parallelism-1)/b.parallelism)

	var g errgroup.Group
	g.SetLimit(b.parallelism)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// store records the label produced by the hasher for id.
// The hasher must have appended exactly one label into the arena slot.
func (b *builder) store(id NodeID, label []byte) {
	if len(label) != b.labelSize {
		panic(fmt.Errorf(
			"BUG: hasher produced %d-byte label for node %d; expected %d bytes",
			len(label), id, b.labelSize,
		))
	}
	b.t.labels[id] = label
}

func (b *builder) setParent(child, parent NodeID) {
	if b.haveParent.Test(uint(child)) {
		panic(fmt.Errorf(
			"BUG: node %d already has parent %d; attempted to assign %d",
			child, b.t.parents[child], parent,
		))
	}
	b.haveParent.Set(uint(child))
	b.t.parents[child] = parent
}

func (b *builder) register(log *slog.Logger) {
	for i, label := range b.t.labels {
		if !b.t.reg.add(label, NodeID(i)) {
			log.Debug(
				"Duplicate label kept first node",
				"label", string(label),
				"node", i,
			)
		}
	}
}
