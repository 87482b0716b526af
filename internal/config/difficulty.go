package config

// DifficultyPreset represents a named bot difficulty.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// StrategyForPreset returns the bot strategy id for a difficulty preset.
func StrategyForPreset(preset DifficultyPreset) (string, bool) {
	switch preset {
	case DifficultyEasy:
		return "random", true
	case DifficultyNormal:
		return "greedy", true
	case DifficultyHard:
		return "cautious", true
	default:
		return "", false
	}
}
