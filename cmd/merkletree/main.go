package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	app.RunAndExitOnError()
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "merkletree",
		Usage: "build hash trees over items, and produce and check inclusion proofs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				EnvVars: []string{"MERKLETREE_LOG_LEVEL", "LOG_LEVEL"},
			},
		},
		Before: func(cctx *cli.Context) error {
			configLogger(cctx, errWriter(cctx))
			return nil
		},
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "demo",
			Usage:  "build a tree over the one-byte items 1 through N and prove one of them",
			Action: runDemo,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "count",
					Usage: "number of items",
					Value: 8,
				},
				&cli.IntFlag{
					Name:  "item",
					Usage: "value of the item to prove",
					Value: 5,
				},
			},
		},
		&cli.Command{
			Name:      "root",
			Usage:     "print the root label of a tree with one item per input line",
			ArgsUsage: "[<path>]",
			Action:    runRoot,
			Flags:     []cli.Flag{hexFlag},
		},
		&cli.Command{
			Name:      "prove",
			Usage:     "print the root label and inclusion proof for one item, as JSON",
			ArgsUsage: "<path> <item>",
			Action:    runProve,
			Flags:     []cli.Flag{hexFlag},
		},
		&cli.Command{
			Name:      "verify",
			Usage:     "check an inclusion proof against a trusted root label",
			ArgsUsage: "<item>",
			Action:    runVerify,
			Flags: []cli.Flag{
				hexFlag,
				&cli.StringFlag{
					Name:     "root",
					Usage:    "trusted root label",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "proof",
					Usage: "proof in text form (L:<label>,R:<label>,...)",
				},
			},
		},
		&cli.Command{
			Name:      "shard",
			Usage:     "erasure-code a file into shards committed by one root",
			ArgsUsage: "<path>",
			Action:    runShard,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "data",
					Usage: "number of data shards",
					Value: 8,
				},
				&cli.IntFlag{
					Name:  "parity",
					Usage: "number of parity shards",
					Value: 4,
				},
			},
		},
		&cli.Command{
			Name:   "feed",
			Usage:  "subscribe to the Bitstamp feed and commit trades in batches",
			Action: runFeed,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "url",
					Usage:   "websocket URL of the feed",
					Value:   "wss://ws.bitstamp.net",
					EnvVars: []string{"MERKLETREE_FEED_URL"},
				},
				&cli.StringSliceFlag{
					Name:  "channel",
					Usage: "channels to subscribe to",
					Value: cli.NewStringSlice("live_trades_btceur"),
				},
				&cli.IntFlag{
					Name:  "batch",
					Usage: "number of trades per tree",
					Value: 16,
				},
			},
		},
	}
	return app
}

var hexFlag = &cli.BoolFlag{
	Name:  "hex",
	Usage: "items are hex-encoded",
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// errWriter returns the writer for logs, falling back to stderr.
func errWriter(cctx *cli.Context) io.Writer {
	if cctx.App.ErrWriter != nil {
		return cctx.App.ErrWriter
	}
	return os.Stderr
}
