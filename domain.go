// Package narrative models a narrative world as character intentions linked by
// precedence dependencies, builds an acyclic Intention Dependency Graph from it,
// and enumerates and ranks candidate orderings of those intentions.
package narrative

// DependencyType tags a dependency. Both types constrain ordering the same way;
// they differ only in how the drama metric weighs them.
type DependencyType string

const (
	Intentional  DependencyType = "intentional"
	Motivational DependencyType = "motivational"
)

// IsValid reports whether t is a known dependency type.
func (t DependencyType) IsValid() bool {
	return t == Intentional || t == Motivational
}

// Domain is the declarative description of a narrative world.
type Domain struct {
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description" yaml:"description"`
	Characters   []string     `json:"characters" yaml:"characters"`
	Locations    []string     `json:"locations" yaml:"locations"`
	Intentions   []Intention  `json:"intentions" yaml:"intentions" validate:"dive"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies" validate:"dive"`
}

// Intention is an atomic narrative event.
// Metadata is free-form and is only read by metrics. JSON keeps an empty map
// distinct from a nil one.
type Intention struct {
	ID          string         `json:"id" yaml:"id" validate:"required"`
	Character   string         `json:"character" yaml:"character" validate:"required"`
	Target      string         `json:"target" yaml:"target" validate:"required"`
	Location    string         `json:"location" yaml:"location" validate:"required"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitzero" yaml:"metadata,omitempty"`
}

// Dependency states that To must happen before From becomes available.
type Dependency struct {
	From        string         `json:"from_intention" yaml:"from_intention" validate:"required"`
	To          string         `json:"to_intention" yaml:"to_intention" validate:"required"`
	Type        DependencyType `json:"type" yaml:"type" validate:"required,oneof=intentional motivational"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitzero" yaml:"metadata,omitempty"`
}

// Intention returns the intention with the given id and whether it exists.
func (d *Domain) Intention(id string) (Intention, bool) {
	for _, in := range d.Intentions {
		if in.ID == id {
			return in, true
		}
	}
	return Intention{}, false
}
