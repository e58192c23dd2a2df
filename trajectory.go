package narrative

import "strings"

// Trajectory is one candidate narrative path: an ordered sequence of
// intentions without repeats, each placed after its prerequisites.
type Trajectory struct {
	Intentions []Intention `json:"intentions"`

	// Domain is the world the intentions were drawn from. Metrics read it
	// for totals and dependency types.
	Domain *Domain `json:"-"`
}

// Len returns the number of steps.
func (t Trajectory) Len() int { return len(t.Intentions) }

// IDs returns the intention identifiers in order.
func (t Trajectory) IDs() []string {
	ids := make([]string, len(t.Intentions))
	for i, in := range t.Intentions {
		ids[i] = in.ID
	}
	return ids
}

func (t Trajectory) String() string {
	return "[" + strings.Join(t.IDs(), " -> ") + "]"
}
