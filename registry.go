package merkletree

// registry maps labels to node IDs.
// It is populated once during [Build] and read-only afterward.
type registry struct {
	byLabel map[string]NodeID
}

func newRegistry(nNodes int) registry {
	return registry{byLabel: make(map[string]NodeID, nNodes)}
}

// add records id under label.
// If the label is already present, the earlier node is kept
// and add reports false.
func (r registry) add(label []byte, id NodeID) bool {
	if _, ok := r.byLabel[string(label)]; ok {
		return false
	}
	r.byLabel[string(label)] = id
	return true
}

func (r registry) lookup(label string) (NodeID, bool) {
	id, ok := r.byLabel[label]
	return id, ok
}
