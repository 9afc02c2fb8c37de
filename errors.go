package merkletree

import "errors"

// ErrEmptyInput is returned from [Build] when there are no items.
var ErrEmptyInput = errors.New("cannot build tree from zero items")

// ErrNotFound is matched by [NotFoundError] through [errors.Is].
var ErrNotFound = errors.New("item not found in tree")

// NotFoundError is returned from [*Tree.MakeProof]
// when no leaf in the tree has the item's label.
type NotFoundError struct {
	Label string
}

func (e NotFoundError) Error() string {
	return "no leaf with label " + e.Label
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
