package narrative

import (
	"fmt"
	"slices"
)

// Graph is the Intention Dependency Graph built from a well-formed Domain.
// It is immutable after Build; every method is safe for concurrent use.
type Graph struct {
	domain     *Domain
	ids        []string
	intentions map[string]Intention
	deps       map[[2]string]Dependency
	prereqs    map[string][]string
	dependents map[string][]string
	order      []string
}

// Build validates d and constructs its graph: one node per intention, one
// edge per dependency. A domain with any problem yields a *BuildError; call
// Validate first for non-fatal diagnostics.
func Build(d *Domain) (*Graph, error) {
	if problems := Validate(d); len(problems) > 0 {
		return nil, &BuildError{Problems: problems}
	}

	g := &Graph{
		domain:     d,
		ids:        make([]string, 0, len(d.Intentions)),
		intentions: make(map[string]Intention, len(d.Intentions)),
		deps:       make(map[[2]string]Dependency, len(d.Dependencies)),
		prereqs:    make(map[string][]string),
		dependents: make(map[string][]string),
	}
	for _, in := range d.Intentions {
		g.ids = append(g.ids, in.ID)
		g.intentions[in.ID] = in
	}
	slices.Sort(g.ids)

	// A pair listed more than once is one edge; the last record wins.
	for _, dep := range d.Dependencies {
		key := [2]string{dep.From, dep.To}
		if _, ok := g.deps[key]; !ok {
			g.prereqs[dep.From] = append(g.prereqs[dep.From], dep.To)
			g.dependents[dep.To] = append(g.dependents[dep.To], dep.From)
		}
		g.deps[key] = dep
	}
	for id := range g.prereqs {
		slices.Sort(g.prereqs[id])
	}
	for id := range g.dependents {
		slices.Sort(g.dependents[id])
	}

	order, ok := g.topologicalSort()
	if !ok {
		// Validate already rejects cycles; this guards the invariant.
		return nil, &BuildError{Problems: []ValidationError{{
			Kind:    ProblemCycle,
			Message: "dependency cycle: topological ordering failed",
		}}}
	}
	g.order = order
	return g, nil
}

// topologicalSort orders intentions prerequisites-first using Kahn's
// algorithm, breaking ties by identifier.
func (g *Graph) topologicalSort() ([]string, bool) {
	unmet := make(map[string]int, len(g.ids))
	var ready []string
	for _, id := range g.ids {
		unmet[id] = len(g.prereqs[id])
		if unmet[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, dep := range g.dependents[id] {
			unmet[dep]--
			if unmet[dep] == 0 {
				i, _ := slices.BinarySearch(ready, dep)
				ready = slices.Insert(ready, i, dep)
			}
		}
	}
	return order, len(order) == len(g.ids)
}

// Domain returns the domain the graph was built from.
func (g *Graph) Domain() *Domain { return g.domain }

// Len returns the number of intentions.
func (g *Graph) Len() int { return len(g.ids) }

// IDs returns every intention identifier, sorted.
func (g *Graph) IDs() []string { return slices.Clone(g.ids) }

// TopologicalOrder returns the intentions with every prerequisite before its
// dependents.
func (g *Graph) TopologicalOrder() []string { return slices.Clone(g.order) }

// Roots returns the intentions no other intention requires, sorted.
func (g *Graph) Roots() []string {
	var out []string
	for _, id := range g.ids {
		if len(g.dependents[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Leaves returns the intentions that require nothing, sorted. They are the
// possible first steps of a trajectory.
func (g *Graph) Leaves() []string {
	var out []string
	for _, id := range g.ids {
		if len(g.prereqs[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// DependenciesOf returns the prerequisites of id, sorted.
func (g *Graph) DependenciesOf(id string) ([]string, error) {
	if _, ok := g.intentions[id]; !ok {
		return nil, intentionNotFound(id)
	}
	return slices.Clone(g.prereqs[id]), nil
}

// DependentsOf returns the intentions that require id, sorted.
func (g *Graph) DependentsOf(id string) ([]string, error) {
	if _, ok := g.intentions[id]; !ok {
		return nil, intentionNotFound(id)
	}
	return slices.Clone(g.dependents[id]), nil
}

// Intention returns the record of intention id.
func (g *Graph) Intention(id string) (Intention, error) {
	in, ok := g.intentions[id]
	if !ok {
		return Intention{}, intentionNotFound(id)
	}
	return in, nil
}

// Dependency returns the record of the dependency from -> to.
func (g *Graph) Dependency(from, to string) (Dependency, error) {
	dep, ok := g.deps[[2]string{from, to}]
	if !ok {
		return Dependency{}, dependencyNotFound(from, to)
	}
	return dep, nil
}

// Consistent reports whether t could have been produced from g: every
// intention exists, none repeats, and each appears after all of its
// prerequisites.
func (g *Graph) Consistent(t Trajectory) error {
	placed := make(map[string]bool, len(t.Intentions))
	for i, in := range t.Intentions {
		if _, ok := g.intentions[in.ID]; !ok {
			return intentionNotFound(in.ID)
		}
		if placed[in.ID] {
			return fmt.Errorf("narrative: trajectory step %d repeats intention %q", i, in.ID)
		}
		for _, pre := range g.prereqs[in.ID] {
			if !placed[pre] {
				return fmt.Errorf("narrative: trajectory step %d places %q before its prerequisite %q", i, in.ID, pre)
			}
		}
		placed[in.ID] = true
	}
	return nil
}
