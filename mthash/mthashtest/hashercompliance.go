// Package mthashtest contains a compliance suite for [mthash.Hasher] implementations.
package mthashtest

import (
	"testing"

	"github.com/civisgrid/merkletree/mthash"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() mthash.Hasher

func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		a := h.Leaf([]byte("deterministic_data"), nil)
		b := h.Leaf([]byte("deterministic_data"), nil)

		require.Equal(t, a, b)
		require.Len(t, a, h.LabelSize())
	})

	t.Run("leaf respects content", func(t *testing.T) {
		t.Parallel()

		h := f()

		a := h.Leaf([]byte("hello"), nil)
		b := h.Leaf([]byte("hellp"), nil)

		require.NotEqual(t, a, b)
	})

	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		l := h.Leaf([]byte("left"), nil)
		r := h.Leaf([]byte("right"), nil)

		a := h.Node(l, r, nil)
		b := h.Node(l, r, nil)

		require.Equal(t, a, b)
		require.Len(t, a, h.LabelSize())
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h := f()

		l := h.Leaf([]byte("left"), nil)
		r := h.Leaf([]byte("right"), nil)

		require.NotEqual(t, h.Node(l, r, nil), h.Node(r, l, nil))
	})

	t.Run("appends to dst", func(t *testing.T) {
		t.Parallel()

		h := f()
		sz := h.LabelSize()

		want := h.Leaf([]byte("payload"), nil)

		prefix := []byte("prefix")
		dst := make([]byte, len(prefix), len(prefix)+sz)
		copy(dst, prefix)

		got := h.Leaf([]byte("payload"), dst)
		require.Equal(t, prefix, got[:len(prefix)])
		require.Equal(t, want, got[len(prefix):])

		// With exact capacity available, the label is written in place.
		require.Same(t, &dst[0], &got[0])

		wantNode := h.Node(want, want, nil)
		gotNode := h.Node(want, want, dst[:len(prefix)])
		require.Equal(t, prefix, gotNode[:len(prefix)])
		require.Equal(t, wantNode, gotNode[len(prefix):])
	})
}
