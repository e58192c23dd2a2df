package narrative_test

import (
	"slices"
	"testing"

	"github.com/meikuraledutech/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_NodesMatchIntentions(t *testing.T) {
	for _, d := range []*narrative.Domain{chainDomain(), fanDomain(), loadDomain(t, "red_riding_hood.yaml")} {
		g := mustBuild(t, d)
		var want []string
		for _, in := range d.Intentions {
			want = append(want, in.ID)
		}
		slices.Sort(want)
		assert.Equal(t, want, g.IDs(), d.Name)
		assert.Equal(t, len(d.Intentions), g.Len())
		assert.Same(t, d, g.Domain())
	}
}

func TestGraph_ChainQueries(t *testing.T) {
	g := mustBuild(t, chainDomain())

	assert.Equal(t, []string{"C"}, g.Leaves())
	assert.Equal(t, []string{"A"}, g.Roots())
	assert.Equal(t, []string{"C", "B", "A"}, g.TopologicalOrder())

	deps, err := g.DependenciesOf("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, deps)

	dependents, err := g.DependentsOf("C")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, dependents)

	deps, err = g.DependenciesOf("C")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestGraph_RedRidingHood(t *testing.T) {
	g := mustBuild(t, loadDomain(t, "red_riding_hood.yaml"))

	assert.Equal(t, []string{"visit_grandmother"}, g.Leaves())
	assert.Equal(t, []string{"deliver_basket", "kill_wolf", "rescue_grandmother", "rescue_little_red"}, g.Roots())

	deps, err := g.DependenciesOf("kill_wolf")
	require.NoError(t, err)
	assert.Equal(t, []string{"eat_grandmother", "eat_little_red"}, deps)

	dependents, err := g.DependentsOf("visit_grandmother")
	require.NoError(t, err)
	assert.Equal(t, []string{"deliver_basket", "eat_grandmother", "eat_little_red"}, dependents)

	order := g.TopologicalOrder()
	require.Len(t, order, g.Len())
	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	for _, dep := range g.Domain().Dependencies {
		assert.Less(t, pos[dep.To], pos[dep.From], "%s before %s", dep.To, dep.From)
	}
}

func TestGraph_DataLookup(t *testing.T) {
	g := mustBuild(t, chainDomain())

	in, err := g.Intention("B")
	require.NoError(t, err)
	assert.Equal(t, "B", in.ID)
	assert.Equal(t, "here", in.Location)

	dep, err := g.Dependency("B", "C")
	require.NoError(t, err)
	assert.Equal(t, narrative.Motivational, dep.Type)

	_, err = g.Intention("Z")
	assert.ErrorIs(t, err, narrative.ErrIntentionNotFound)
	var lookup *narrative.LookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, "Z", lookup.Key)

	_, err = g.Dependency("C", "B")
	assert.ErrorIs(t, err, narrative.ErrDependencyNotFound)

	_, err = g.DependenciesOf("Z")
	assert.ErrorIs(t, err, narrative.ErrIntentionNotFound)
	_, err = g.DependentsOf("Z")
	assert.ErrorIs(t, err, narrative.ErrIntentionNotFound)
}

func TestGraph_Consistent(t *testing.T) {
	d := chainDomain()
	g := mustBuild(t, d)
	step := func(ids ...string) narrative.Trajectory {
		tr := narrative.Trajectory{Domain: d}
		for _, id := range ids {
			in, err := g.Intention(id)
			require.NoError(t, err)
			tr.Intentions = append(tr.Intentions, in)
		}
		return tr
	}

	assert.NoError(t, g.Consistent(step()))
	assert.NoError(t, g.Consistent(step("C", "B", "A")))
	assert.Error(t, g.Consistent(step("B")))
	assert.Error(t, g.Consistent(step("C", "A")))
	assert.Error(t, g.Consistent(step("C", "C")))

	unknown := step("C")
	unknown.Intentions = append(unknown.Intentions, narrative.Intention{ID: "Z"})
	assert.ErrorIs(t, g.Consistent(unknown), narrative.ErrIntentionNotFound)
}
