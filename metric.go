package narrative

import (
	"cmp"
	"maps"
	"slices"
)

// Metric scores a trajectory. Higher is better; no range is enforced.
type Metric interface {
	Score(t Trajectory) float64
}

// MetricFunc adapts a plain function to Metric.
type MetricFunc func(t Trajectory) float64

func (f MetricFunc) Score(t Trajectory) float64 { return f(t) }

// Names of the built-in metrics.
const (
	MetricNovelty   = "novelty"
	MetricCoherence = "coherence"
	MetricDrama     = "drama"
)

// Registry maps metric names to metrics. It does no locking: register
// everything before scoring from several goroutines.
type Registry struct {
	metrics map[string]Metric
}

// NewRegistry returns a registry holding the built-in metrics.
func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]Metric)}
	r.Register(MetricNovelty, Novelty{})
	r.Register(MetricCoherence, Coherence{})
	r.Register(MetricDrama, Drama{})
	return r
}

// Register adds m under name, replacing any metric already registered under
// it. It panics if name is empty or m is nil.
func (r *Registry) Register(name string, m Metric) {
	if name == "" {
		panic("narrative: Register metric with empty name")
	}
	if m == nil {
		panic("narrative: Register metric " + name + " is nil")
	}
	r.metrics[name] = m
}

// Lookup returns the metric registered under name.
func (r *Registry) Lookup(name string) (Metric, error) {
	m, ok := r.metrics[name]
	if !ok {
		return nil, &ConfigurationError{Metric: name, Available: r.Names()}
	}
	return m, nil
}

// Names returns the registered metric names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.metrics))
}

// Scored pairs a trajectory with its score.
type Scored struct {
	Trajectory Trajectory `json:"trajectory"`
	Score      float64    `json:"score"`
}

// Score scores every trajectory with the named metric and returns them by
// descending score. The sort is stable: equal scores keep their input order.
func (r *Registry) Score(ts []Trajectory, metric string) ([]Scored, error) {
	m, err := r.Lookup(metric)
	if err != nil {
		return nil, err
	}
	scored := make([]Scored, len(ts))
	for i, t := range ts {
		scored[i] = Scored{Trajectory: t, Score: m.Score(t)}
	}
	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scored, nil
}

// Rank is Score without the scores.
func (r *Registry) Rank(ts []Trajectory, metric string) ([]Trajectory, error) {
	scored, err := r.Score(ts, metric)
	if err != nil {
		return nil, err
	}
	out := make([]Trajectory, len(scored))
	for i, s := range scored {
		out[i] = s.Trajectory
	}
	return out, nil
}
