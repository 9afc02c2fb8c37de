// Package mttest contains helpers shared by tests across the module.
package mttest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a logger that writes through t.Log,
// so output is only shown for failing or verbose tests.
func NewLogger(t testing.TB) *slog.Logger {
	return slogt.New(t)
}

// CountingItems returns n one-byte items with the values 1 through n,
// matching the sample vectors fed by the command-line demo.
//
// n must not exceed 255.
func CountingItems(n int) [][]byte {
	if n < 0 || n > 255 {
		panic("BUG: CountingItems supports 0 through 255 items")
	}

	items := make([][]byte, n)
	for i := range items {
		items[i] = []byte{byte(i + 1)}
	}
	return items
}
