package game

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// DifficultyForLevel scales the requested scenario with the merchant level.
func DifficultyForLevel(level int) Difficulty {
	switch {
	case level < 5:
		return Easy
	case level < 15:
		return Medium
	default:
		return Hard
	}
}
