package narrative

import "context"

// Beat is one step of a trajectory reduced to what a story prompt needs.
type Beat struct {
	ID          string `json:"id"`
	Character   string `json:"character"`
	Target      string `json:"target"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

// Beats converts t into prompt-ready records, in trajectory order.
func Beats(t Trajectory) []Beat {
	beats := make([]Beat, len(t.Intentions))
	for i, in := range t.Intentions {
		beats[i] = Beat{
			ID:          in.ID,
			Character:   in.Character,
			Target:      in.Target,
			Location:    in.Location,
			Description: in.Description,
		}
	}
	return beats
}

// Adapter turns a prompt into story text. Implementations wrap a model
// provider; none ship with this package beyond NopAdapter.
type Adapter interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NopStory is what NopAdapter generates.
const NopStory = "Once upon a time, the story was left untold."

// NopAdapter ignores the prompt and returns NopStory. It exists for tests
// and examples.
type NopAdapter struct{}

func (NopAdapter) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return NopStory, nil
}
