package bot

import (
	"fmt"

	"durak/internal/domain"
)

// BotLevel selects a brain implementation.
type BotLevel string

const (
	BotLevelEasy     BotLevel = "easy"
	BotLevelStandard BotLevel = "standard"
)

// NewBrain creates a new AI brain based on the specified level.
// rng is only used by levels that randomize.
func NewBrain(level BotLevel, rng domain.RNG) (Brain, error) {
	switch level {
	case BotLevelStandard, "":
		return NewHeuristic(), nil
	case BotLevelEasy:
		if rng == nil {
			return nil, fmt.Errorf("bot level %q requires a random source", level)
		}
		return &RandomBot{RNG: rng}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}
