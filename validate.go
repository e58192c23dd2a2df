package narrative

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate lists every structural problem of d. It never fails: an empty
// result means d is well-formed and Build will accept it.
func Validate(d *Domain) []ValidationError {
	if d == nil {
		return []ValidationError{{Kind: ProblemInvalidField, Message: "domain is nil"}}
	}

	var problems []ValidationError
	problems = append(problems, fieldProblems(d)...)

	characters := toSet(d.Characters)
	locations := toSet(d.Locations)

	seen := make(map[string]int, len(d.Intentions))
	for i, in := range d.Intentions {
		prefix := fmt.Sprintf("intentions[%d]", i)
		if in.ID != "" {
			if prev, ok := seen[in.ID]; ok {
				problems = append(problems, ValidationError{
					Kind:    ProblemDuplicateIntention,
					IDs:     []string{in.ID},
					Message: fmt.Sprintf("%s.id %q is a duplicate of intentions[%d]", prefix, in.ID, prev),
				})
			} else {
				seen[in.ID] = i
			}
		}
		if in.Character != "" && !characters[in.Character] {
			problems = append(problems, ValidationError{
				Kind:    ProblemUnknownCharacter,
				IDs:     []string{in.ID, in.Character},
				Message: fmt.Sprintf("%s: character %q is not declared (intention %q)", prefix, in.Character, in.ID),
			})
		}
		if in.Target != "" && !characters[in.Target] {
			problems = append(problems, ValidationError{
				Kind:    ProblemUnknownTarget,
				IDs:     []string{in.ID, in.Target},
				Message: fmt.Sprintf("%s: target %q is not a declared character (intention %q)", prefix, in.Target, in.ID),
			})
		}
		if in.Location != "" && !locations[in.Location] {
			problems = append(problems, ValidationError{
				Kind:    ProblemUnknownLocation,
				IDs:     []string{in.ID, in.Location},
				Message: fmt.Sprintf("%s: location %q is not declared (intention %q)", prefix, in.Location, in.ID),
			})
		}
	}

	for i, dep := range d.Dependencies {
		prefix := fmt.Sprintf("dependencies[%d]", i)
		if dep.From != "" {
			if _, ok := seen[dep.From]; !ok {
				problems = append(problems, ValidationError{
					Kind:    ProblemMissingIntention,
					IDs:     []string{dep.From, dep.To},
					Message: fmt.Sprintf("%s: from_intention %q does not exist", prefix, dep.From),
				})
			}
		}
		if dep.To != "" {
			if _, ok := seen[dep.To]; !ok {
				problems = append(problems, ValidationError{
					Kind:    ProblemMissingIntention,
					IDs:     []string{dep.From, dep.To},
					Message: fmt.Sprintf("%s: to_intention %q does not exist", prefix, dep.To),
				})
			}
		}
		if dep.From != "" && dep.From == dep.To {
			problems = append(problems, ValidationError{
				Kind:    ProblemSelfDependency,
				IDs:     []string{dep.From},
				Message: fmt.Sprintf("%s: intention %q depends on itself", prefix, dep.From),
			})
		}
	}

	for _, cycle := range findCycles(d, seen) {
		closed := append(slices.Clone(cycle), cycle[0])
		problems = append(problems, ValidationError{
			Kind:    ProblemCycle,
			IDs:     cycle,
			Message: "dependency cycle: " + strings.Join(closed, " -> "),
		})
	}

	return problems
}

// fieldProblems runs the struct-tag checks on intentions and dependencies.
func fieldProblems(d *Domain) []ValidationError {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Kind: ProblemInvalidField, Message: err.Error()}}
	}
	problems := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, ValidationError{
			Kind:    ProblemInvalidField,
			Message: formatFieldError(fe),
		})
	}
	return problems
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s %q is invalid; valid values: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// findCycles runs a three-colour DFS over the prerequisite relation and
// returns each distinct simple cycle it closes, rotated to start at its
// smallest identifier. Edges touching unknown intentions and self-loops are
// ignored here; they are reported separately.
func findCycles(d *Domain, known map[string]int) [][]string {
	adj := make(map[string][]string)
	for _, dep := range d.Dependencies {
		if dep.From == dep.To {
			continue
		}
		if _, ok := known[dep.From]; !ok {
			continue
		}
		if _, ok := known[dep.To]; !ok {
			continue
		}
		adj[dep.From] = append(adj[dep.From], dep.To)
	}
	for id := range adj {
		slices.Sort(adj[id])
		adj[id] = slices.Compact(adj[id])
	}

	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(ids))
	var stack []string
	var cycles [][]string
	reported := make(map[string]bool)

	var dfs func(id string)
	dfs = func(id string) {
		state[id] = visiting
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				start := slices.Index(stack, next)
				cycle := canonicalCycle(stack[start:])
				key := cycleKey(cycle)
				if !reported[key] {
					reported[key] = true
					cycles = append(cycles, cycle)
				}
			case unvisited:
				dfs(next)
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
	}

	for _, id := range ids {
		if state[id] == unvisited {
			dfs(id)
		}
	}
	return cycles
}

func canonicalCycle(path []string) []string {
	lo := 0
	for i, id := range path {
		if id < path[lo] {
			lo = i
		}
	}
	out := make([]string, 0, len(path))
	out = append(out, path[lo:]...)
	return append(out, path[:lo]...)
}

func cycleKey(cycle []string) string {
	members := slices.Clone(cycle)
	slices.Sort(members)
	return strings.Join(members, "\x00")
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
