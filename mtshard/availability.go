package mtshard

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/snappy"
)

const (
	rawAvailability    byte = 0
	snappyAvailability byte = 1
)

// Availability reports which of shards are present.
// A nil shard is missing.
func Availability(shards [][]byte) *bitset.BitSet {
	have := bitset.MustNew(uint(len(shards)))
	for i, s := range shards {
		if s != nil {
			have.Set(uint(i))
		}
	}
	return have
}

// AppendAvailability appends the encoded form of have to dst.
//
// The shard count is not part of the encoding;
// the decoder must already know it.
// Sparse or regular sets are snappy-compressed,
// otherwise the bitset words are written directly.
func AppendAvailability(dst []byte, have *bitset.BitSet) []byte {
	words := have.Words()
	raw := make([]byte, 8*len(words))
	for i, w := range words {
		// Little endian, to match the likely in-memory layout.
		binary.LittleEndian.PutUint64(raw[i*8:], w)
	}

	enc := snappy.Encode(nil, raw)

	// Snappy costs two extra bytes for its length prefix.
	if len(raw) <= len(enc)+2 {
		dst = append(dst, rawAvailability)
		return append(dst, raw...)
	}

	dst = append(dst, snappyAvailability)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(enc)))
	return append(dst, enc...)
}

// DecodeAvailability decodes a set produced by [AppendAvailability]
// for nShards total shards.
// It returns the bytes following the encoded set.
func DecodeAvailability(b []byte, nShards int) (*bitset.BitSet, []byte, error) {
	if nShards < 0 || nShards > MaxShards {
		return nil, nil, fmt.Errorf("shard count must be in range [0, %d] (got %d)", MaxShards, nShards)
	}
	if len(b) == 0 {
		return nil, nil, errors.New("missing availability header")
	}

	have := bitset.MustNew(uint(nShards))
	words := have.Words()
	nBytes := 8 * len(words)

	var raw, rest []byte
	switch b[0] {
	case rawAvailability:
		b = b[1:]
		if len(b) < nBytes {
			return nil, nil, fmt.Errorf(
				"raw availability needs %d bytes but only %d remain", nBytes, len(b),
			)
		}
		raw, rest = b[:nBytes], b[nBytes:]

	case snappyAvailability:
		b = b[1:]
		if len(b) < 2 {
			return nil, nil, errors.New("missing snappy availability length")
		}
		sz := int(binary.BigEndian.Uint16(b))
		b = b[2:]
		if len(b) < sz {
			return nil, nil, fmt.Errorf(
				"snappy availability needs %d bytes but only %d remain", sz, len(b),
			)
		}
		enc := b[:sz]
		rest = b[sz:]

		decSz, err := snappy.DecodedLen(enc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to calculate decoded availability length: %w", err)
		}
		if decSz != nBytes {
			return nil, nil, fmt.Errorf(
				"decoded availability would be %d bytes but expected %d", decSz, nBytes,
			)
		}

		raw, err = snappy.Decode(nil, enc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode snappy availability: %w", err)
		}

	default:
		return nil, nil, fmt.Errorf("unknown availability header byte 0x%x", b[0])
	}

	for i := range words {
		words[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}

	if tail := uint(nShards) % 64; tail != 0 && words[len(words)-1]>>tail != 0 {
		return nil, nil, fmt.Errorf("availability marks shards beyond count %d", nShards)
	}

	return have, rest, nil
}
