package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/civisgrid/merkletree"
	"github.com/civisgrid/merkletree/internal/mtfeed"
	"github.com/civisgrid/merkletree/mtshard"
	"github.com/urfave/cli/v2"
)

func runDemo(cctx *cli.Context) error {
	n := cctx.Int("count")
	if n < 1 || n > 255 {
		return fmt.Errorf("count must be in range [1, 255] (got %d)", n)
	}
	k := cctx.Int("item")
	if k < 1 || k > 255 {
		return fmt.Errorf("item must be in range [1, 255] (got %d)", k)
	}

	items := make([][]byte, n)
	for i := range items {
		items[i] = []byte{byte(i + 1)}
	}

	tree, err := merkletree.Build(items, merkletree.BuildConfig{Log: slog.Default()})
	if err != nil {
		return err
	}

	w := cctx.App.Writer
	fmt.Fprintf(w, "root:     %s\n", tree.RootLabel())
	fmt.Fprintf(w, "leaves:   %d\n", tree.NumLeaves())
	fmt.Fprintf(w, "branches: %d\n", tree.NumBranches())
	fmt.Fprintf(w, "height:   %d\n", tree.Height())

	item := []byte{byte(k)}
	proof, err := tree.MakeProof(item)
	if err != nil {
		return fmt.Errorf("failed to prove item %d: %w", item[0], err)
	}

	fmt.Fprintf(w, "proof[%d]: %s\n", item[0], proof)
	fmt.Fprintf(w, "verified: %t\n", merkletree.Verify(item, proof, tree.RootLabel()))
	return nil
}

func runRoot(cctx *cli.Context) error {
	items, err := readItemsFrom(cctx.Args().First(), cctx.Bool("hex"))
	if err != nil {
		return err
	}

	tree, err := merkletree.Build(items, merkletree.BuildConfig{Log: slog.Default()})
	if err != nil {
		return err
	}

	fmt.Fprintln(cctx.App.Writer, tree.RootLabel())
	return nil
}

type proveOutput struct {
	Root  string           `json:"root"`
	Index int              `json:"index"`
	Proof merkletree.Proof `json:"proof"`
}

func runProve(cctx *cli.Context) error {
	if cctx.NArg() != 2 {
		return fmt.Errorf("need to provide path to items and the item to prove")
	}
	isHex := cctx.Bool("hex")

	items, err := readItemsFrom(cctx.Args().Get(0), isHex)
	if err != nil {
		return err
	}
	item, err := parseItem(cctx.Args().Get(1), isHex)
	if err != nil {
		return err
	}

	tree, err := merkletree.Build(items, merkletree.BuildConfig{Log: slog.Default()})
	if err != nil {
		return err
	}

	proof, err := tree.MakeProof(item)
	if err != nil {
		return err
	}

	// MakeProof succeeded, so the item's label resolves to a leaf.
	id, _ := tree.Lookup(string(tree.Hasher().Leaf(item, nil)))
	out := proveOutput{
		Root:  tree.RootLabel(),
		Index: int(id),
		Proof: proof,
	}

	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runVerify(cctx *cli.Context) error {
	if cctx.NArg() != 1 {
		return fmt.Errorf("need to provide the item to verify")
	}

	item, err := parseItem(cctx.Args().First(), cctx.Bool("hex"))
	if err != nil {
		return err
	}

	proof, err := merkletree.ParseProof(cctx.String("proof"))
	if err != nil {
		return err
	}

	if !merkletree.Verify(item, proof, cctx.String("root")) {
		return cli.Exit("proof does not verify", 1)
	}

	fmt.Fprintln(cctx.App.Writer, "ok")
	return nil
}

type shardOutput struct {
	Root         string `json:"root"`
	Size         int    `json:"size"`
	DataShards   int    `json:"data_shards"`
	ParityShards int    `json:"parity_shards"`
	ShardSize    int    `json:"shard_size"`

	// Whether the data was recovered with every parity shard's worth of data shards missing.
	Recovered bool `json:"recovered"`

	// Encoded availability of the partial set used for recovery.
	Availability []byte `json:"availability"`
}

func runShard(cctx *cli.Context) error {
	p := cctx.Args().First()
	if p == "" {
		return fmt.Errorf("need to provide path to file")
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}

	cfg := mtshard.Config{
		DataShards:   cctx.Int("data"),
		ParityShards: cctx.Int("parity"),
		Log:          slog.Default(),
	}

	set, err := mtshard.Split(data, cfg)
	if err != nil {
		return err
	}

	// Drop as many leading shards as parity allows and recover from the rest.
	partial := append([][]byte(nil), set.Shards...)
	for i := 0; i < cfg.ParityShards && i < len(partial); i++ {
		partial[i] = nil
	}
	got, err := mtshard.Reconstruct(partial, set.Proofs, set.Root, set.Size, cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(shardOutput{
		Root:         set.Root,
		Size:         set.Size,
		DataShards:   cfg.DataShards,
		ParityShards: cfg.ParityShards,
		ShardSize:    len(set.Shards[0]),
		Recovered:    string(got) == string(data),
		Availability: mtshard.AppendAvailability(nil, mtshard.Availability(partial)),
	})
}

func runFeed(cctx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := slog.Default()

	batchSize := cctx.Int("batch")
	if batchSize <= 0 {
		return fmt.Errorf("batch must be positive (got %d)", batchSize)
	}

	w := cctx.App.Writer
	b := mtfeed.NewBatcher(mtfeed.BatcherConfig{Size: batchSize, Log: log}, func(tree *merkletree.Tree, items [][]byte) error {
		_, err := fmt.Fprintf(w, "%s %d\n", tree.RootLabel(), len(items))
		return err
	})

	cfg := mtfeed.Config{
		URL:      cctx.String("url"),
		Channels: cctx.StringSlice("channel"),
	}
	cb := mtfeed.Callbacks{
		Trade: func(_ string, _ mtfeed.Trade, raw []byte) error {
			return b.Add(raw)
		},
	}

	for {
		conn, err := mtfeed.Dial(ctx, log, cfg)
		if err != nil {
			return err
		}

		log.Info("Streaming feed", "url", cfg.URL, "channels", cfg.Channels)
		err = mtfeed.Stream(ctx, log, conn, cb)
		_ = conn.Close()

		if errors.Is(err, mtfeed.ErrReconnectRequested) {
			log.Info("Reconnecting at server request")
			continue
		}

		if flushErr := b.Flush(); flushErr != nil {
			return flushErr
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}
