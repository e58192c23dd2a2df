package narrative_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/narrative"
	"github.com/stretchr/testify/require"
)

func loadDomain(t *testing.T, file string) *narrative.Domain {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", file))
	require.NoError(t, err)
	defer f.Close()
	d, err := narrative.DecodeDomainYAML(f)
	require.NoError(t, err)
	return d
}

func mustBuild(t *testing.T, d *narrative.Domain) *narrative.Graph {
	t.Helper()
	g, err := narrative.Build(d)
	require.NoError(t, err)
	return g
}

// chainDomain: A depends on B, B depends on C.
func chainDomain() *narrative.Domain {
	return &narrative.Domain{
		Name:       "chain",
		Characters: []string{"x"},
		Locations:  []string{"here"},
		Intentions: []narrative.Intention{
			{ID: "A", Character: "x", Target: "x", Location: "here"},
			{ID: "B", Character: "x", Target: "x", Location: "here"},
			{ID: "C", Character: "x", Target: "x", Location: "here"},
		},
		Dependencies: []narrative.Dependency{
			{From: "A", To: "B", Type: narrative.Intentional},
			{From: "B", To: "C", Type: narrative.Motivational},
		},
	}
}

// fanDomain has three independent leaves and one intention needing two of them.
func fanDomain() *narrative.Domain {
	return &narrative.Domain{
		Name:       "fan",
		Characters: []string{"p", "q"},
		Locations:  []string{"north", "south"},
		Intentions: []narrative.Intention{
			{ID: "x", Character: "p", Target: "q", Location: "north"},
			{ID: "y", Character: "q", Target: "p", Location: "south"},
			{ID: "z", Character: "p", Target: "p", Location: "south"},
			{ID: "w", Character: "q", Target: "q", Location: "north"},
		},
		Dependencies: []narrative.Dependency{
			{From: "w", To: "x", Type: narrative.Intentional},
			{From: "w", To: "y", Type: narrative.Motivational},
		},
	}
}

func idsOf(ts []narrative.Trajectory) [][]string {
	out := make([][]string, len(ts))
	for i, t := range ts {
		out[i] = t.IDs()
	}
	return out
}
