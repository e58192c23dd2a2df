package narrative_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/meikuraledutech/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(problems []narrative.ValidationError) []narrative.ProblemKind {
	out := make([]narrative.ProblemKind, len(problems))
	for i, p := range problems {
		out[i] = p.Kind
	}
	return out
}

func TestValidate_WellFormed(t *testing.T) {
	assert.Empty(t, narrative.Validate(chainDomain()))
	assert.Empty(t, narrative.Validate(fanDomain()))
	assert.Empty(t, narrative.Validate(loadDomain(t, "red_riding_hood.yaml")))
	assert.Empty(t, narrative.Validate(&narrative.Domain{Name: "empty"}))
}

func TestValidate_Nil(t *testing.T) {
	assert.NotEmpty(t, narrative.Validate(nil))
}

func TestValidate_Cycle(t *testing.T) {
	d := chainDomain()
	d.Dependencies = append(d.Dependencies, narrative.Dependency{From: "C", To: "A", Type: narrative.Intentional})

	problems := narrative.Validate(d)
	require.Len(t, problems, 1)
	p := problems[0]
	assert.Equal(t, narrative.ProblemCycle, p.Kind)
	assert.Equal(t, []string{"A", "B", "C"}, p.IDs)
	assert.Equal(t, "dependency cycle: A -> B -> C -> A", p.Message)
	assert.ErrorIs(t, p, narrative.ErrCycleDetected)
}

func TestValidate_CyclesReportedOnce(t *testing.T) {
	d := fanDomain()
	d.Dependencies = append(d.Dependencies,
		narrative.Dependency{From: "x", To: "w", Type: narrative.Intentional},
		narrative.Dependency{From: "y", To: "z", Type: narrative.Intentional},
		narrative.Dependency{From: "z", To: "y", Type: narrative.Intentional},
	)
	problems := narrative.Validate(d)
	var cycles [][]string
	for _, p := range problems {
		require.Equal(t, narrative.ProblemCycle, p.Kind)
		cycles = append(cycles, p.IDs)
	}
	assert.ElementsMatch(t, [][]string{{"w", "x"}, {"y", "z"}}, cycles)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *narrative.Domain)
		kind    narrative.ProblemKind
		mention string
	}{
		{
			name:    "missing to endpoint",
			mutate:  func(d *narrative.Domain) { d.Dependencies[0].To = "Z" },
			kind:    narrative.ProblemMissingIntention,
			mention: `"Z"`,
		},
		{
			name:    "missing from endpoint",
			mutate:  func(d *narrative.Domain) { d.Dependencies[1].From = "ghost" },
			kind:    narrative.ProblemMissingIntention,
			mention: "dependencies[1]",
		},
		{
			name:    "unknown character",
			mutate:  func(d *narrative.Domain) { d.Intentions[0].Character = "nobody" },
			kind:    narrative.ProblemUnknownCharacter,
			mention: `"nobody"`,
		},
		{
			name:    "unknown target",
			mutate:  func(d *narrative.Domain) { d.Intentions[1].Target = "stranger" },
			kind:    narrative.ProblemUnknownTarget,
			mention: `"stranger"`,
		},
		{
			name:    "unknown location",
			mutate:  func(d *narrative.Domain) { d.Intentions[2].Location = "moon" },
			kind:    narrative.ProblemUnknownLocation,
			mention: `"moon"`,
		},
		{
			name: "duplicate intention",
			mutate: func(d *narrative.Domain) {
				d.Intentions = append(d.Intentions, d.Intentions[0])
			},
			kind:    narrative.ProblemDuplicateIntention,
			mention: "intentions[3].id",
		},
		{
			name: "self dependency",
			mutate: func(d *narrative.Domain) {
				d.Dependencies = append(d.Dependencies, narrative.Dependency{From: "B", To: "B", Type: narrative.Intentional})
			},
			kind:    narrative.ProblemSelfDependency,
			mention: `"B" depends on itself`,
		},
		{
			name:    "invalid type",
			mutate:  func(d *narrative.Domain) { d.Dependencies[0].Type = "causal" },
			kind:    narrative.ProblemInvalidField,
			mention: "dependencies[0].type",
		},
		{
			name:    "missing id",
			mutate:  func(d *narrative.Domain) { d.Intentions[0].ID = "" },
			kind:    narrative.ProblemInvalidField,
			mention: "intentions[0].id is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := chainDomain()
			tt.mutate(d)
			problems := narrative.Validate(d)
			require.NotEmpty(t, problems)
			require.Contains(t, kinds(problems), tt.kind)
			for _, p := range problems {
				if p.Kind == tt.kind {
					assert.Contains(t, p.Message, tt.mention)
					return
				}
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	d := chainDomain()
	d.Intentions[0].Location = "moon"
	d.Intentions[1].Character = "nobody"
	d.Dependencies = append(d.Dependencies,
		narrative.Dependency{From: "C", To: "missing", Type: narrative.Intentional},
		narrative.Dependency{From: "C", To: "A", Type: narrative.Intentional},
	)
	got := kinds(narrative.Validate(d))
	assert.Contains(t, got, narrative.ProblemUnknownLocation)
	assert.Contains(t, got, narrative.ProblemUnknownCharacter)
	assert.Contains(t, got, narrative.ProblemMissingIntention)
	assert.Contains(t, got, narrative.ProblemCycle)
}

func TestBuild_RejectsInvalidDomain(t *testing.T) {
	d := chainDomain()
	d.Dependencies = append(d.Dependencies, narrative.Dependency{From: "C", To: "A", Type: narrative.Motivational})

	g, err := narrative.Build(d)
	require.Error(t, err)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, narrative.ErrInvalidDomain)
	assert.ErrorIs(t, err, narrative.ErrCycleDetected)

	var buildErr *narrative.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, narrative.ProblemCycle, buildErr.Problem().Kind)
	assert.True(t, strings.HasPrefix(err.Error(), "narrative: build: dependency cycle"), err.Error())
}

func TestBuild_ErrorNamesFirstProblem(t *testing.T) {
	d := chainDomain()
	d.Dependencies[0].To = "Z"
	d.Intentions[2].Location = "moon"

	_, err := narrative.Build(d)
	require.Error(t, err)
	assert.NotErrorIs(t, err, narrative.ErrCycleDetected)
	assert.Contains(t, err.Error(), `"moon"`)
	assert.Contains(t, err.Error(), "and 1 more")
}

func TestValidate_RepeatedDependencyPair(t *testing.T) {
	d := chainDomain()
	d.Dependencies = append(d.Dependencies, narrative.Dependency{From: "A", To: "B", Type: narrative.Motivational})
	assert.Empty(t, narrative.Validate(d))

	g, err := narrative.Build(d)
	require.NoError(t, err)

	deps, err := g.DependenciesOf("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, deps)
	dependents, err := g.DependentsOf("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, dependents)

	dep, err := g.Dependency("A", "B")
	require.NoError(t, err)
	assert.Equal(t, narrative.Motivational, dep.Type, "last record wins")

	ts, err := narrative.NewExplorer(g).Trajectories(3)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"C"}, {"C", "B"}, {"C", "B", "A"}}, idsOf(ts))
}
