package merkletree_test

import (
	"testing"

	"github.com/civisgrid/merkletree"
	"github.com/stretchr/testify/require"
)

func TestVerify_fiveItems(t *testing.T) {
	t.Parallel()

	// No tree here: only the item, the proof, and a trusted root.
	proof := merkletree.Proof{
		{Sibling: label1234, Side: merkletree.SideLeft},
	}
	require.True(t, merkletree.Verify([]byte{5}, proof, rootLabel5))

	require.False(t, merkletree.Verify([]byte{4}, proof, rootLabel5))
	require.False(t, merkletree.Verify([]byte{5}, proof, label1234))
	require.False(t, merkletree.Verify([]byte{5}, nil, rootLabel5))
}

func TestVerify_tamperedSiblingByte(t *testing.T) {
	t.Parallel()

	tree := fiveItemTree(t)

	proof := tree.LeafProof(4)
	require.True(t, merkletree.Verify([]byte{5}, proof, tree.RootLabel()))

	sibling := proof[0].Sibling
	for i := range len(sibling) {
		b := []byte(sibling)
		b[i] ^= 0x01

		tampered := merkletree.Proof{{Sibling: string(b), Side: proof[0].Side}}
		require.False(t, merkletree.Verify([]byte{5}, tampered, tree.RootLabel()), "byte %d", i)
	}
}

func TestVerify_tamperedEachEntry(t *testing.T) {
	t.Parallel()

	tree := fiveItemTree(t)

	for leaf := range tree.NumLeaves() {
		item := []byte{byte(leaf + 1)}
		proof := tree.LeafProof(leaf)

		for i := range proof {
			tampered := append(merkletree.Proof(nil), proof...)
			tampered[i].Sibling = label5[:len(label5)-1] + "0"
			if tampered[i].Sibling == proof[i].Sibling {
				tampered[i].Sibling = label5[:len(label5)-1] + "1"
			}
			require.False(t, merkletree.Verify(item, tampered, tree.RootLabel()))

			flipped := append(merkletree.Proof(nil), proof...)
			if flipped[i].Side == merkletree.SideLeft {
				flipped[i].Side = merkletree.SideRight
			} else {
				flipped[i].Side = merkletree.SideLeft
			}
			require.False(t, merkletree.Verify(item, flipped, tree.RootLabel()))
		}
	}
}

func TestVerify_malformed(t *testing.T) {
	t.Parallel()

	tree := fiveItemTree(t)
	root := tree.RootLabel()
	proof := tree.LeafProof(0)

	for _, tc := range []struct {
		name  string
		proof merkletree.Proof
	}{
		{name: "truncated", proof: proof[:len(proof)-1]},
		{name: "extra entry", proof: append(append(merkletree.Proof(nil), proof...), proof[0])},
		{name: "unknown side", proof: merkletree.Proof{
			proof[0], {Sibling: proof[1].Sibling, Side: 'X'}, proof[2],
		}},
		{name: "zero side", proof: merkletree.Proof{
			proof[0], proof[1], {Sibling: proof[2].Sibling},
		}},
		{name: "empty sibling", proof: merkletree.Proof{
			{Side: merkletree.SideRight}, proof[1], proof[2],
		}},
		{name: "short sibling", proof: merkletree.Proof{
			{Sibling: proof[0].Sibling[:10], Side: merkletree.SideRight}, proof[1], proof[2],
		}},
		{name: "non-hex sibling", proof: merkletree.Proof{
			{Sibling: "not hex at all", Side: merkletree.SideRight}, proof[1], proof[2],
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NotPanics(t, func() {
				require.False(t, merkletree.Verify([]byte{1}, tc.proof, root))
			})
		})
	}

	require.True(t, merkletree.Verify([]byte{1}, proof, root))
}

func TestVerify_wrongRoot(t *testing.T) {
	t.Parallel()

	tree := fiveItemTree(t)
	proof := tree.LeafProof(2)

	require.False(t, merkletree.Verify([]byte{3}, proof, label1234))
	require.False(t, merkletree.Verify([]byte{3}, proof, ""))
	require.False(t, merkletree.Verify([]byte{3}, proof, "A6910D3FB99EB966D1AF1814CECF2626E0DDDAA324D57F61B2AE47003249803A"))
}
