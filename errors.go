package narrative

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDomain      = errors.New("narrative: domain is not well-formed")
	ErrCycleDetected      = errors.New("narrative: cycle detected, dependencies are not acyclic")
	ErrIntentionNotFound  = errors.New("narrative: intention not found")
	ErrDependencyNotFound = errors.New("narrative: dependency not found")
	ErrUnknownMetric      = errors.New("narrative: unknown metric")
	ErrTrajectoryLimit    = errors.New("narrative: trajectory limit exceeded")
	ErrInvalidStart       = errors.New("narrative: start intention has prerequisites")
	ErrNoGraph            = errors.New("narrative: explorer has no graph")
	ErrDomainNotFound     = errors.New("narrative: domain not found")
	ErrRankingNotFound    = errors.New("narrative: ranking not found")
)

// ProblemKind classifies a ValidationError.
type ProblemKind string

const (
	ProblemInvalidField       ProblemKind = "invalid_field"
	ProblemUnknownCharacter   ProblemKind = "unknown_character"
	ProblemUnknownTarget      ProblemKind = "unknown_target"
	ProblemUnknownLocation    ProblemKind = "unknown_location"
	ProblemDuplicateIntention ProblemKind = "duplicate_intention"
	ProblemMissingIntention   ProblemKind = "missing_intention"
	ProblemSelfDependency     ProblemKind = "self_dependency"
	ProblemCycle              ProblemKind = "cycle"
)

// ValidationError describes one structural problem of a Domain.
// IDs holds the offending identifiers; for a cycle, its members in cycle order.
type ValidationError struct {
	Kind    ProblemKind `json:"kind"`
	IDs     []string    `json:"ids,omitempty"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string { return e.Message }

// Is lets errors.Is match a cycle problem against ErrCycleDetected.
func (e ValidationError) Is(target error) bool {
	return target == ErrCycleDetected && e.Kind == ProblemCycle
}

// BuildError is returned by Build when the domain is not well-formed.
type BuildError struct {
	Problems []ValidationError
}

func (e *BuildError) Error() string {
	if len(e.Problems) == 0 {
		return ErrInvalidDomain.Error()
	}
	first := e.Problem()
	msg := fmt.Sprintf("narrative: build: %s", first.Message)
	if n := len(e.Problems) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Problem returns the most relevant problem: the first cycle when there is one,
// otherwise the first problem found.
func (e *BuildError) Problem() ValidationError {
	for _, p := range e.Problems {
		if p.Kind == ProblemCycle {
			return p
		}
	}
	return e.Problems[0]
}

func (e *BuildError) Is(target error) bool {
	if target == ErrInvalidDomain {
		return true
	}
	for _, p := range e.Problems {
		if p.Is(target) {
			return true
		}
	}
	return false
}

// LookupError reports a query for something the graph does not hold.
type LookupError struct {
	What string
	Key  string
	err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("narrative: %s %q not found", e.What, e.Key)
}

func (e *LookupError) Unwrap() error { return e.err }

func intentionNotFound(id string) error {
	return &LookupError{What: "intention", Key: id, err: ErrIntentionNotFound}
}

func dependencyNotFound(from, to string) error {
	return &LookupError{What: "dependency", Key: from + " -> " + to, err: ErrDependencyNotFound}
}

// ConfigurationError reports ranking with a metric name nobody registered.
type ConfigurationError struct {
	Metric    string
	Available []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("narrative: unknown metric %q (registered: %s)", e.Metric, strings.Join(e.Available, ", "))
}

func (e *ConfigurationError) Unwrap() error { return ErrUnknownMetric }
