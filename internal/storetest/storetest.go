// Package storetest holds the behaviour every narrative.Store must share.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/meikuraledutech/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Domain returns a small well-formed domain exercising every field.
func Domain(name string) *narrative.Domain {
	return &narrative.Domain{
		Name:        name,
		Description: "a short chase through the woods",
		Characters:  []string{"wolf", "little_red", "grandmother"},
		Locations:   []string{"forest", "cottage"},
		Intentions: []narrative.Intention{
			{ID: "visit", Character: "little_red", Target: "grandmother", Location: "cottage", Description: "bring the basket"},
			{ID: "eat_little_red", Character: "wolf", Target: "little_red", Location: "forest",
				Metadata: map[string]any{"conflict": true, "intensity": 0.8, "tags": []any{"danger"}}},
			{ID: "warn", Character: "grandmother", Target: "little_red", Location: "cottage", Metadata: map[string]any{}},
		},
		Dependencies: []narrative.Dependency{
			{From: "eat_little_red", To: "visit", Type: narrative.Motivational, Description: "the wolf hears of the visit"},
			{From: "warn", To: "visit", Type: narrative.Intentional, Metadata: map[string]any{"weight": 2.0}},
		},
	}
}

// Run exercises a Store. open must return an empty store with its schema created.
func Run(t *testing.T, open func(t *testing.T) narrative.Store) {
	ctx := context.Background()

	t.Run("DomainRoundTrip", func(t *testing.T) {
		s := open(t)
		want := Domain("woods")
		require.NoError(t, s.SaveDomain(ctx, want))

		got, err := s.GetDomain(ctx, "woods")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got)
	})

	t.Run("EmptyCollectionsStayEmpty", func(t *testing.T) {
		s := open(t)
		want := &narrative.Domain{Name: "blank", Characters: []string{}}
		require.NoError(t, s.SaveDomain(ctx, want))

		got, err := s.GetDomain(ctx, "blank")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.NotNil(t, got.Characters)
		assert.Empty(t, got.Characters)
		assert.Nil(t, got.Locations)
	})

	t.Run("RepeatedDependencyPair", func(t *testing.T) {
		s := open(t)
		want := Domain("twice")
		want.Dependencies = append(want.Dependencies, narrative.Dependency{From: "warn", To: "visit", Type: narrative.Motivational})
		require.NoError(t, s.SaveDomain(ctx, want))

		got, err := s.GetDomain(ctx, "twice")
		require.NoError(t, err)
		assert.Equal(t, want.Dependencies, got.Dependencies)
	})

	t.Run("SaveDomainReplaces", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveDomain(ctx, Domain("woods")))

		smaller := Domain("woods")
		smaller.Intentions = smaller.Intentions[:1]
		smaller.Dependencies = nil
		require.NoError(t, s.SaveDomain(ctx, smaller))

		got, err := s.GetDomain(ctx, "woods")
		require.NoError(t, err)
		require.Len(t, got.Intentions, 1)
		assert.Empty(t, got.Dependencies)
	})

	t.Run("SaveDomainRejectsInvalid", func(t *testing.T) {
		s := open(t)
		bad := Domain("bad")
		bad.Dependencies = append(bad.Dependencies, narrative.Dependency{From: "visit", To: "warn", Type: narrative.Intentional})

		err := s.SaveDomain(ctx, bad)
		require.ErrorIs(t, err, narrative.ErrInvalidDomain)
		require.ErrorIs(t, err, narrative.ErrCycleDetected)

		got, err := s.GetDomain(ctx, "bad")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetMissingDomain", func(t *testing.T) {
		s := open(t)
		got, err := s.GetDomain(ctx, "nowhere")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListAndDeleteDomains", func(t *testing.T) {
		s := open(t)
		names, err := s.ListDomains(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		require.NoError(t, s.SaveDomain(ctx, Domain("b")))
		require.NoError(t, s.SaveDomain(ctx, Domain("a")))
		names, err = s.ListDomains(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)

		require.NoError(t, s.DeleteDomain(ctx, "a"))
		require.NoError(t, s.DeleteDomain(ctx, "missing"))
		names, err = s.ListDomains(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, names)
	})

	t.Run("Rankings", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveDomain(ctx, Domain("woods")))

		created := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
		r := &narrative.Ranking{
			Domain:    "woods",
			Metric:    narrative.MetricDrama,
			MaxLength: 3,
			CreatedAt: created,
			Entries: []narrative.RankingEntry{
				{Position: 0, Score: 1.5, IntentionIDs: []string{"visit", "eat_little_red"}},
				{Position: 1, Score: 0.25, IntentionIDs: []string{"visit"}},
			},
		}
		id, err := s.SaveRanking(ctx, r)
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, id, r.ID)

		got, err := s.GetRanking(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "woods", got.Domain)
		assert.Equal(t, narrative.MetricDrama, got.Metric)
		assert.Equal(t, 3, got.MaxLength)
		assert.True(t, created.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, created)
		assert.Equal(t, r.Entries, got.Entries)

		list, err := s.ListRankings(ctx, "woods")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		assert.Empty(t, list[0].Entries)

		missing, err := s.GetRanking(ctx, "00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		assert.Nil(t, missing)

		require.NoError(t, s.DeleteDomain(ctx, "woods"))
		gone, err := s.GetRanking(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}
