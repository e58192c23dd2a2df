package narrative

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxTrajectories caps enumeration unless WithMaxTrajectories says
// otherwise.
const DefaultMaxTrajectories = 1 << 20

// Explorer enumerates, samples and ranks trajectories over a Graph.
//
// Enumeration is exponential in the branching factor of the graph. The only
// bounds are maxLength and the trajectory cap; exceeding the cap returns
// ErrTrajectoryLimit instead of a truncated result.
type Explorer struct {
	graph           *Graph
	registry        *Registry
	logger          *zap.Logger
	maxTrajectories int
	workers         int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Explorer) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRegistry ranks with r instead of a fresh NewRegistry.
func WithRegistry(r *Registry) Option {
	return func(e *Explorer) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithMaxTrajectories caps how many trajectories one enumeration may
// produce. n <= 0 removes the cap.
func WithMaxTrajectories(n int) Option {
	return func(e *Explorer) { e.maxTrajectories = n }
}

// WithWorkers enumerates from up to n starting intentions in parallel. The
// output order does not depend on n.
func WithWorkers(n int) Option {
	return func(e *Explorer) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRand sets the source used by RandomTrajectory.
func WithRand(r *rand.Rand) Option {
	return func(e *Explorer) {
		if r != nil {
			e.rng = r
		}
	}
}

// NewExplorer returns an Explorer over g.
func NewExplorer(g *Graph, opts ...Option) *Explorer {
	e := &Explorer{
		graph:           g,
		logger:          zap.NewNop(),
		maxTrajectories: DefaultMaxTrajectories,
		workers:         1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Graph returns the explored graph.
func (e *Explorer) Graph() *Graph { return e.graph }

// Registry returns the metric registry used for ranking.
func (e *Explorer) Registry() *Registry { return e.registry }

// AddMetric registers m under name, replacing any metric of that name.
func (e *Explorer) AddMetric(name string, m Metric) {
	e.registry.Register(name, m)
}

// RankTrajectories orders ts by the named metric, highest score first.
func (e *Explorer) RankTrajectories(ts []Trajectory, metric string) ([]Trajectory, error) {
	return e.registry.Rank(ts, metric)
}

// Trajectories returns every trajectory of length 1 through maxLength,
// starting from each leaf in identifier order and trying the available
// intentions at each step in identifier order.
func (e *Explorer) Trajectories(maxLength int) ([]Trajectory, error) {
	return e.TrajectoriesFrom(maxLength)
}

// TrajectoriesFrom is Trajectories restricted to the given first steps.
// Every start must be a leaf. With no starts it uses all leaves.
func (e *Explorer) TrajectoriesFrom(maxLength int, starts ...string) ([]Trajectory, error) {
	if e.graph == nil {
		return nil, ErrNoGraph
	}
	starts, err := e.startSet(starts)
	if err != nil {
		return nil, err
	}
	if maxLength <= 0 || len(starts) == 0 {
		return nil, nil
	}

	e.logger.Debug("enumerating trajectories",
		zap.Int("max_length", maxLength),
		zap.Strings("starts", starts),
		zap.Int("workers", e.workers),
	)

	var count atomic.Int64
	results := make([][]Trajectory, len(starts))

	run := func(i int) error {
		w := newWalker(e.graph, maxLength, int64(e.maxTrajectories), &count)
		return w.walk(starts[i], func(t Trajectory) {
			results[i] = append(results[i], t)
		})
	}

	if e.workers > 1 && len(starts) > 1 {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i := range starts {
			g.Go(func() error { return run(i) })
		}
		if err := g.Wait(); err != nil {
			e.logger.Warn("trajectory enumeration aborted", zap.Error(err))
			return nil, err
		}
	} else {
		for i := range starts {
			if err := run(i); err != nil {
				e.logger.Warn("trajectory enumeration aborted", zap.Error(err))
				return nil, err
			}
		}
	}

	out := make([]Trajectory, 0, count.Load())
	for _, r := range results {
		out = append(out, r...)
	}
	e.logger.Debug("enumerated trajectories", zap.Int("count", len(out)))
	return out, nil
}

// RandomTrajectory walks the graph once, picking uniformly among the
// available intentions at each step, until nothing is available or the
// walk reaches maxLength. Only each step is uniform, not the trajectory.
func (e *Explorer) RandomTrajectory(maxLength int) (Trajectory, error) {
	return e.RandomTrajectoryFrom(maxLength)
}

// RandomTrajectoryFrom is RandomTrajectory with the first step picked
// uniformly among starts. Starts are checked as in TrajectoriesFrom.
func (e *Explorer) RandomTrajectoryFrom(maxLength int, starts ...string) (Trajectory, error) {
	if e.graph == nil {
		return Trajectory{}, ErrNoGraph
	}
	starts, err := e.startSet(starts)
	if err != nil {
		return Trajectory{}, err
	}
	w := newWalker(e.graph, maxLength, 0, nil)

	e.mu.Lock()
	defer e.mu.Unlock()
	choices := starts
	for len(w.path) < maxLength && len(choices) > 0 {
		w.push(choices[e.rng.IntN(len(choices))])
		choices = w.available()
	}
	return w.trajectory(), nil
}

// startSet returns the sorted, deduplicated starts, or every leaf when
// starts is empty. Each start must have no prerequisites.
func (e *Explorer) startSet(starts []string) ([]string, error) {
	if len(starts) == 0 {
		return e.graph.Leaves(), nil
	}
	starts = slices.Clone(starts)
	slices.Sort(starts)
	starts = slices.Compact(starts)
	for _, id := range starts {
		pre, err := e.graph.DependenciesOf(id)
		if err != nil {
			return nil, err
		}
		if len(pre) > 0 {
			return nil, fmt.Errorf("%w: %q requires %v", ErrInvalidStart, id, pre)
		}
	}
	return starts, nil
}

// walker holds the state of one depth-first enumeration: the current path
// and, per intention, how many of its prerequisites are not on the path.
type walker struct {
	g         *Graph
	maxLength int
	limit     int64
	count     *atomic.Int64

	path  []Intention
	on    map[string]bool
	unmet map[string]int
}

func newWalker(g *Graph, maxLength int, limit int64, count *atomic.Int64) *walker {
	w := &walker{
		g:         g,
		maxLength: maxLength,
		limit:     limit,
		count:     count,
		path:      make([]Intention, 0, max(maxLength, 0)),
		on:        make(map[string]bool, len(g.ids)),
		unmet:     make(map[string]int, len(g.ids)),
	}
	for _, id := range g.ids {
		w.unmet[id] = len(g.prereqs[id])
	}
	return w
}

func (w *walker) push(id string) {
	w.path = append(w.path, w.g.intentions[id])
	w.on[id] = true
	for _, dep := range w.g.dependents[id] {
		w.unmet[dep]--
	}
}

func (w *walker) pop() {
	id := w.path[len(w.path)-1].ID
	w.path = w.path[:len(w.path)-1]
	delete(w.on, id)
	for _, dep := range w.g.dependents[id] {
		w.unmet[dep]++
	}
}

// available lists, in identifier order, the intentions not on the path whose
// prerequisites are all on it.
func (w *walker) available() []string {
	var out []string
	for _, id := range w.g.ids {
		if !w.on[id] && w.unmet[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

func (w *walker) trajectory() Trajectory {
	return Trajectory{Intentions: slices.Clone(w.path), Domain: w.g.domain}
}

func (w *walker) emit(fn func(Trajectory)) error {
	if n := w.count.Add(1); w.limit > 0 && n > w.limit {
		return fmt.Errorf("%w: more than %d trajectories", ErrTrajectoryLimit, w.limit)
	}
	fn(w.trajectory())
	return nil
}

// frame is one level of the explicit DFS stack: the intentions available
// at that depth and the next one to try.
type frame struct {
	choices []string
	next    int
}

// walk emits, in DFS order, every trajectory that begins with start.
func (w *walker) walk(start string, fn func(Trajectory)) error {
	w.push(start)
	if err := w.emit(fn); err != nil {
		return err
	}
	if w.maxLength == 1 {
		w.pop()
		return nil
	}

	stack := []frame{{choices: w.available()}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.choices) {
			stack = stack[:len(stack)-1]
			w.pop()
			continue
		}
		id := top.choices[top.next]
		top.next++

		w.push(id)
		if err := w.emit(fn); err != nil {
			return err
		}
		if len(w.path) < w.maxLength {
			stack = append(stack, frame{choices: w.available()})
		} else {
			w.pop()
		}
	}
	return nil
}
