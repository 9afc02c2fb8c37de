// Package mtshard erasure-codes a payload into shards
// and commits to every shard with a single tree root.
//
// Each shard travels with its own inclusion proof,
// so a receiver holding only the root can discard corrupt shards
// before attempting reconstruction.
// Leaves are the big-endian uint16 shard index followed by the shard bytes,
// which binds every shard to its position.
package mtshard
