package mtshard

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/civisgrid/merkletree"
	"github.com/civisgrid/merkletree/mthash"
	"github.com/civisgrid/merkletree/mthash/mtsha3"
	"github.com/klauspost/reedsolomon"
)

// MaxShards is the largest total shard count
// whose index fits in the leaf prefix.
const MaxShards = (1 << 16) - 1

// ErrTooFewShards is returned from [Reconstruct]
// when not enough shards pass verification.
var ErrTooFewShards = errors.New("too few verified shards to reconstruct")

// Config is the configuration for [Split] and [Reconstruct].
// The same values must be used on both sides.
type Config struct {
	DataShards, ParityShards int

	// How to label the shard tree.
	// Defaults to [mtsha3.Hasher] when nil.
	Hasher mthash.Hasher

	// Optional logger; nothing is logged when nil.
	Log *slog.Logger
}

func (c Config) hasher() mthash.Hasher {
	if c.Hasher == nil {
		return mtsha3.Hasher{}
	}
	return c.Hasher
}

func (c Config) log() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Log
}

func (c Config) encoder() (reedsolomon.Encoder, error) {
	if c.DataShards <= 0 {
		return nil, fmt.Errorf("data shard count must be positive (got %d)", c.DataShards)
	}
	if c.ParityShards < 0 {
		return nil, fmt.Errorf("parity shard count must be non-negative (got %d)", c.ParityShards)
	}
	if total := c.DataShards + c.ParityShards; total > MaxShards {
		return nil, fmt.Errorf(
			"too many shards: %d data and %d parity, but limit is %d",
			c.DataShards, c.ParityShards, MaxShards,
		)
	}

	enc, err := reedsolomon.New(c.DataShards, c.ParityShards)
	if err != nil {
		return nil, fmt.Errorf("failed to build Reed-Solomon encoder: %w", err)
	}
	return enc, nil
}

// Set is the result of [Split].
type Set struct {
	// The data shards followed by the parity shards.
	// Every shard has the same length.
	Shards [][]byte

	// Proofs is aligned one-to-one with Shards.
	Proofs []merkletree.Proof

	// Root is the label of the tree over all shards.
	Root string

	// Size is the length of the original data,
	// needed to strip padding during reconstruction.
	Size int
}

// Split erasure-codes data into shards
// and builds the tree committing to all of them.
// The input slice is not modified.
func Split(data []byte, cfg Config) (Set, error) {
	enc, err := cfg.encoder()
	if err != nil {
		return Set{}, err
	}

	// Split may use spare capacity of its input for padding,
	// so work on a copy.
	shards, err := enc.Split(slices.Clone(data))
	if err != nil {
		return Set{}, fmt.Errorf("failed to split data into shards: %w", err)
	}

	if err := enc.Encode(shards); err != nil {
		return Set{}, fmt.Errorf("failed to erasure-code data: %w", err)
	}

	tree, err := merkletree.Build(leafItems(shards), merkletree.BuildConfig{
		Hasher: cfg.hasher(),
		Log:    cfg.Log,
	})
	if err != nil {
		return Set{}, fmt.Errorf("failed to build shard tree: %w", err)
	}

	proofs := make([]merkletree.Proof, len(shards))
	for i := range shards {
		proofs[i] = tree.LeafProof(i)
	}

	cfg.log().Debug(
		"Split data into shards",
		"size", len(data),
		"data_shards", cfg.DataShards,
		"parity_shards", cfg.ParityShards,
		"shard_size", len(shards[0]),
		"root", tree.RootLabel(),
	)

	return Set{
		Shards: shards,
		Proofs: proofs,
		Root:   tree.RootLabel(),
		Size:   len(data),
	}, nil
}

// VerifyShard reports whether shard is the shard at index
// under the given root label.
func VerifyShard(h mthash.Hasher, index int, shard []byte, proof merkletree.Proof, root string) bool {
	if index < 0 || index > MaxShards {
		return false
	}
	return merkletree.VerifyWithHasher(h, leafItem(index, shard), proof, root)
}

// Reconstruct recovers the original data from any sufficient subset of shards.
//
// Missing shards must be nil.
// Shards whose proof does not verify against root are discarded.
// The shards slice itself is not modified.
//
// If fewer than cfg.DataShards shards remain,
// Reconstruct returns an error wrapping [ErrTooFewShards].
func Reconstruct(
	shards [][]byte, proofs []merkletree.Proof, root string, size int, cfg Config,
) ([]byte, error) {
	enc, err := cfg.encoder()
	if err != nil {
		return nil, err
	}

	if size < 0 {
		return nil, fmt.Errorf("data size must be non-negative (got %d)", size)
	}

	total := cfg.DataShards + cfg.ParityShards
	if len(shards) != total || len(proofs) != total {
		return nil, fmt.Errorf(
			"expected %d shards and proofs, got %d shards and %d proofs",
			total, len(shards), len(proofs),
		)
	}

	h := cfg.hasher()
	log := cfg.log()

	work := make([][]byte, total)
	have := bitset.MustNew(uint(total))
	shardSize := 0
	for i, shard := range shards {
		if shard == nil {
			continue
		}
		if !VerifyShard(h, i, shard, proofs[i], root) {
			log.Warn("Discarding shard that failed verification", "index", i)
			continue
		}
		work[i] = shard
		have.Set(uint(i))
		shardSize = len(shard)
	}

	if n := have.Count(); n < uint(cfg.DataShards) {
		return nil, fmt.Errorf(
			"%w: have %d of %d required", ErrTooFewShards, n, cfg.DataShards,
		)
	}

	if capacity := cfg.DataShards * shardSize; size > capacity {
		return nil, fmt.Errorf(
			"data size %d exceeds the %d bytes held by %d shards of %d bytes",
			size, capacity, cfg.DataShards, shardSize,
		)
	}

	if err := enc.ReconstructData(work); err != nil {
		return nil, fmt.Errorf("failed to reconstruct data: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(size)
	if err := enc.Join(&buf, work, size); err != nil {
		return nil, fmt.Errorf("failed to join shards: %w", err)
	}

	log.Debug(
		"Reconstructed data",
		"size", size,
		"verified_shards", have.Count(),
		"missing_shards", uint(total)-have.Count(),
	)

	return buf.Bytes(), nil
}

func leafItems(shards [][]byte) [][]byte {
	items := make([][]byte, len(shards))
	for i, shard := range shards {
		items[i] = leafItem(i, shard)
	}
	return items
}

func leafItem(index int, shard []byte) []byte {
	item := make([]byte, 2, 2+len(shard))
	binary.BigEndian.PutUint16(item, uint16(index))
	return append(item, shard...)
}
