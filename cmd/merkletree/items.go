package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single input item.
const maxLineSize = 1 << 20

// readItems reads one item per line from r.
// When isHex is set, each line is decoded from hex.
func readItems(r io.Reader, isHex bool) ([][]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var items [][]byte
	for line := 1; sc.Scan(); line++ {
		item, err := parseItem(sc.Text(), isHex)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

func parseItem(s string, isHex bool) ([]byte, error) {
	if !isHex {
		return []byte(s), nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex item: %w", err)
	}
	return b, nil
}

// readItemsFrom reads items from the file at path,
// or from stdin when path is empty or "-".
func readItemsFrom(path string, isHex bool) ([][]byte, error) {
	if path == "" || path == "-" {
		return readItems(os.Stdin, isHex)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readItems(f, isHex)
}
