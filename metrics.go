package narrative

import (
	"encoding/json"
	"strings"
)

// Novelty averages three ratios: distinct characters (actors and targets),
// distinct locations and distinct intentions in the trajectory over the
// domain's totals. A trajectory without a domain scores 0.
type Novelty struct{}

func (Novelty) Score(t Trajectory) float64 {
	if len(t.Intentions) == 0 || t.Domain == nil {
		return 0
	}
	characters := make(map[string]bool)
	locations := make(map[string]bool)
	ids := make(map[string]bool)
	for _, in := range t.Intentions {
		characters[in.Character] = true
		characters[in.Target] = true
		locations[in.Location] = true
		ids[in.ID] = true
	}
	d := t.Domain
	return (ratio(len(characters), len(d.Characters)) +
		ratio(len(locations), len(d.Locations)) +
		ratio(len(ids), len(d.Intentions))) / 3
}

// Coherence is the fraction of adjacent pairs that share a character (as
// actor or target) or a location. Trajectories shorter than two steps score 1.
type Coherence struct{}

func (Coherence) Score(t Trajectory) float64 {
	n := len(t.Intentions)
	if n <= 1 {
		return 1
	}
	linked := 0
	for i := 0; i < n-1; i++ {
		a, b := t.Intentions[i], t.Intentions[i+1]
		if a.Location == b.Location || sharesCharacter(a, b) {
			linked++
		}
	}
	return float64(linked) / float64(n-1)
}

func sharesCharacter(a, b Intention) bool {
	return a.Character == b.Character || a.Character == b.Target ||
		a.Target == b.Character || a.Target == b.Target
}

// DramaWeights tunes Drama.
type DramaWeights struct {
	// Motivational and Intentional weigh each dependency of that type whose
	// two ends are both in the trajectory.
	Motivational float64 `json:"motivational"`
	Intentional  float64 `json:"intentional"`
	// Conflict and Intensity weigh the per-intention signals.
	Conflict  float64 `json:"conflict"`
	Intensity float64 `json:"intensity"`
}

// DefaultDramaWeights is used by a zero Drama.
var DefaultDramaWeights = DramaWeights{
	Motivational: 1,
	Intentional:  0.5,
	Conflict:     2,
	Intensity:    1.5,
}

var (
	conflictKeywords  = []string{"eat", "kill", "attack", "fight", "steal", "trick", "deceive"}
	emotionalKeywords = []string{"love", "hate", "fear", "anger", "joy", "sadness", "surprise"}
)

// Drama sums weighted dependency types among the trajectory's intentions and
// each intention's conflict and intensity, divided by the trajectory length.
//
// Conflict comes from metadata "conflict" (true or a number) or a conflict
// keyword in the id or description. Intensity comes from a numeric
// metadata "intensity", else 1 for an emotional keyword in the id and 0.5
// for one in the description.
type Drama struct {
	Weights DramaWeights
}

func (m Drama) Score(t Trajectory) float64 {
	n := len(t.Intentions)
	if n == 0 {
		return 0
	}
	w := m.Weights
	if w == (DramaWeights{}) {
		w = DefaultDramaWeights
	}

	var total float64
	if t.Domain != nil {
		on := make(map[string]bool, n)
		for _, in := range t.Intentions {
			on[in.ID] = true
		}
		// A pair listed twice counts once, with the type of its last record.
		last := make(map[[2]string]int)
		for i, dep := range t.Domain.Dependencies {
			last[[2]string{dep.From, dep.To}] = i
		}
		for i, dep := range t.Domain.Dependencies {
			if !on[dep.From] || !on[dep.To] || last[[2]string{dep.From, dep.To}] != i {
				continue
			}
			switch dep.Type {
			case Motivational:
				total += w.Motivational
			case Intentional:
				total += w.Intentional
			}
		}
	}
	for _, in := range t.Intentions {
		total += w.Conflict*conflictLevel(in) + w.Intensity*intensityLevel(in)
	}
	return total / float64(n)
}

func conflictLevel(in Intention) float64 {
	if v, ok := in.Metadata["conflict"]; ok {
		if b, ok := v.(bool); ok {
			if b {
				return 1
			}
			return 0
		}
		if f, ok := asFloat(v); ok {
			return max(f, 0)
		}
	}
	if containsAny(in.ID, conflictKeywords) || containsAny(in.Description, conflictKeywords) {
		return 1
	}
	return 0
}

func intensityLevel(in Intention) float64 {
	if v, ok := in.Metadata["intensity"]; ok {
		if f, ok := asFloat(v); ok {
			return max(f, 0)
		}
	}
	switch {
	case containsAny(in.ID, emotionalKeywords):
		return 1
	case containsAny(in.Description, emotionalKeywords):
		return 0.5
	}
	return 0
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// asFloat accepts the number types JSON, YAML and Go literals produce.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
