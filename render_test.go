package narrative_test

import (
	"context"
	"testing"

	"github.com/meikuraledutech/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeats(t *testing.T) {
	d := loadDomain(t, "red_riding_hood.yaml")
	beats := narrative.Beats(trajectoryOf(t, d, "visit_grandmother", "eat_little_red"))
	require.Len(t, beats, 2)
	assert.Equal(t, narrative.Beat{
		ID:          "visit_grandmother",
		Character:   "little_red",
		Target:      "grandmother",
		Location:    "cottage",
		Description: "bring a basket of food to her sick grandmother",
	}, beats[0])
	assert.Equal(t, "wolf", beats[1].Character)
	assert.Empty(t, narrative.Beats(narrative.Trajectory{}))
}

func TestNopAdapter(t *testing.T) {
	var a narrative.Adapter = narrative.NopAdapter{}
	story, err := a.Generate(context.Background(), "tell it")
	require.NoError(t, err)
	assert.Equal(t, narrative.NopStory, story)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Generate(ctx, "tell it")
	assert.ErrorIs(t, err, context.Canceled)
}
