package model

import "fmt"

// RebalanceMode selects whether operator moves are subtracted from organic
// station activity before fitting.
type RebalanceMode int

const (
	// NotRebalanced uses raw occupancy deltas.
	NotRebalanced RebalanceMode = iota
	// Rebalanced corrects the deltas with operator rebalancing moves.
	Rebalanced
)

// ModeFromBool maps a use-rebalance flag to a RebalanceMode.
func ModeFromBool(include bool) RebalanceMode {
	if include {
		return Rebalanced
	}
	return NotRebalanced
}

// Tag returns the name used to disambiguate persisted models.
func (m RebalanceMode) Tag() string {
	if m == Rebalanced {
		return "rebalanced"
	}
	return "notrebalanced"
}

func (m RebalanceMode) String() string { return m.Tag() }

// ParseRebalanceMode parses the value produced by Tag.
func ParseRebalanceMode(s string) (RebalanceMode, error) {
	switch s {
	case "rebalanced":
		return Rebalanced, nil
	case "notrebalanced", "":
		return NotRebalanced, nil
	}
	return NotRebalanced, fmt.Errorf("unknown rebalance mode %q", s)
}

// MarshalText encodes the mode as its tag.
func (m RebalanceMode) MarshalText() ([]byte, error) { return []byte(m.Tag()), nil }

// UnmarshalText decodes a tag produced by MarshalText.
func (m *RebalanceMode) UnmarshalText(b []byte) error {
	v, err := ParseRebalanceMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
