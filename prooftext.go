package merkletree

import (
	"fmt"
	"strings"
)

// The text form of a proof is a comma-separated list of entries,
// each a side marker, a colon, and the sibling label:
//
//	L:<label>,R:<label>
//
// The empty proof encodes as the empty string.
const (
	entrySeparator = ","
	sideSeparator  = ":"
)

// MalformedProofError is returned when parsing a proof from text fails.
type MalformedProofError struct {
	// Index of the offending entry.
	Entry int

	Reason string
}

func (e MalformedProofError) Error() string {
	return fmt.Sprintf("malformed proof entry %d: %s", e.Entry, e.Reason)
}

// String returns the text form of p.
func (p Proof) String() string {
	var sb strings.Builder
	for i, e := range p {
		if i > 0 {
			sb.WriteString(entrySeparator)
		}
		sb.WriteByte(byte(e.Side))
		sb.WriteString(sideSeparator)
		sb.WriteString(e.Sibling)
	}
	return sb.String()
}

// MarshalText implements [encoding.TextMarshaler].
// Entries with unknown side markers cannot be encoded.
func (p Proof) MarshalText() ([]byte, error) {
	for i, e := range p {
		if e.Side != SideLeft && e.Side != SideRight {
			return nil, MalformedProofError{Entry: i, Reason: "unknown side " + e.Side.String()}
		}
		if e.Sibling == "" || strings.Contains(e.Sibling, entrySeparator) {
			return nil, MalformedProofError{Entry: i, Reason: "sibling label cannot be encoded"}
		}
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *Proof) UnmarshalText(text []byte) error {
	parsed, err := ParseProof(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProof parses the text form produced by [Proof.String].
//
// ParseProof only checks the framing.
// Whether the labels are meaningful is left to verification.
func ParseProof(s string) (Proof, error) {
	if s == "" {
		return Proof{}, nil
	}

	parts := strings.Split(s, entrySeparator)
	proof := make(Proof, len(parts))
	for i, part := range parts {
		side, label, ok := strings.Cut(part, sideSeparator)
		if !ok {
			return nil, MalformedProofError{Entry: i, Reason: "missing side separator"}
		}
		if len(side) != 1 {
			return nil, MalformedProofError{Entry: i, Reason: fmt.Sprintf("side marker %q", side)}
		}

		switch Side(side[0]) {
		case SideLeft, SideRight:
		default:
			return nil, MalformedProofError{Entry: i, Reason: fmt.Sprintf("side marker %q", side)}
		}

		if label == "" {
			return nil, MalformedProofError{Entry: i, Reason: "empty sibling label"}
		}

		proof[i] = ProofEntry{Sibling: label, Side: Side(side[0])}
	}
	return proof, nil
}
