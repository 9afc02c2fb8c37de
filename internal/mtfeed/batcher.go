package mtfeed

import (
	"fmt"
	"log/slog"

	"github.com/civisgrid/merkletree"
	"github.com/civisgrid/merkletree/mthash"
)

// BatcherConfig is the configuration for [NewBatcher].
type BatcherConfig struct {
	// Number of items committed by each tree.
	Size int

	Hasher mthash.Hasher

	// Optional logger; nothing is logged when nil.
	Log *slog.Logger
}

// Batcher collects items and builds a tree
// every time a full batch is available.
//
// Batcher is not safe for concurrent use.
type Batcher struct {
	cfg BatcherConfig

	pending [][]byte

	onTree func(*merkletree.Tree, [][]byte) error
}

// NewBatcher returns a Batcher that calls onTree
// with each built tree and the items it commits to.
func NewBatcher(cfg BatcherConfig, onTree func(*merkletree.Tree, [][]byte) error) *Batcher {
	if cfg.Size <= 0 {
		panic(fmt.Errorf(
			"BUG: batch size must be positive (got %d)", cfg.Size,
		))
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}

	return &Batcher{
		cfg:     cfg,
		pending: make([][]byte, 0, cfg.Size),
		onTree:  onTree,
	}
}

// Add appends item to the current batch,
// building a tree if the batch is now full.
// The item must not be modified afterward.
func (b *Batcher) Add(item []byte) error {
	b.pending = append(b.pending, item)
	if len(b.pending) < b.cfg.Size {
		return nil
	}
	return b.Flush()
}

// Pending returns the number of items not yet committed to a tree.
func (b *Batcher) Pending() int {
	return len(b.pending)
}

// Flush builds a tree over any pending items.
// It does nothing if there are none.
func (b *Batcher) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}

	// The tree retains the item slice, so start a fresh one.
	items := b.pending
	b.pending = make([][]byte, 0, b.cfg.Size)

	tree, err := merkletree.Build(items, merkletree.BuildConfig{
		Hasher: b.cfg.Hasher,
		Log:    b.cfg.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to build batch tree: %w", err)
	}

	b.cfg.Log.Info("Committed batch", "items", len(items), "root", tree.RootLabel())

	return b.onTree(tree, items)
}
