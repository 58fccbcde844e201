package goal

import (
	"fmt"
	"time"
)

// Kind discriminates the two goal variants. Recycle goals track fractional
// progress fed by recycling events; reduce goals track per-material targets.
type Kind string

const (
	KindRecycle Kind = "recycle"
	KindReduce  Kind = "reduce"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

type Status string

const (
	StatusActual   Status = "ACTUAL"
	StatusNext     Status = "NEXT"
	StatusInactive Status = "INACTIVE"
)

// CompletionThreshold is the progress value at which a recycle goal counts
// as fully completed. Progress is clamped here, never truncated below.
const CompletionThreshold = 1.0

// Goal is a tracked recycling-behavior target owned by exactly one user.
// Items and SkipDaysLeft are meaningful only when Kind == KindReduce.
type Goal struct {
	ID           string
	UserID       string
	Kind         Kind
	Difficulty   Difficulty
	Frequency    Frequency
	Status       Status
	Progress     float64
	Multiplier   float64
	NextCheck    time.Time
	SkipDaysLeft int
	Items        []Item
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item is a per-material sub-target composing a reduce goal.
type Item struct {
	Material       string
	TargetQuantity int
	ActualQuantity int
}

// Increment raises the actual quantity by amount. Negative amounts are
// delegated to Decrement so the zero floor always holds.
func (i *Item) Increment(amount int) {
	if amount < 0 {
		_ = i.Decrement(-amount)
		return
	}
	i.ActualQuantity += amount
}

// Decrement lowers the actual quantity by amount, clamping at zero. The
// clamped case is reported so callers can surface the boundary condition
// instead of silently losing quantity.
func (i *Item) Decrement(amount int) error {
	if amount < 0 {
		i.Increment(-amount)
		return nil
	}
	if amount > i.ActualQuantity {
		i.ActualQuantity = 0
		return fmt.Errorf("decrement %d exceeds actual quantity for material %s", amount, i.Material)
	}
	i.ActualQuantity -= amount
	return nil
}

// Met reports whether the item's actual quantity reached its target.
func (i Item) Met() bool {
	return i.TargetQuantity > 0 && i.ActualQuantity >= i.TargetQuantity
}

func (g Goal) Validate() error {
	if g.UserID == "" {
		return fmt.Errorf("goal user id is required")
	}
	switch g.Kind {
	case KindRecycle, KindReduce:
	default:
		return fmt.Errorf("unknown goal kind %q", g.Kind)
	}
	if _, err := ParseDifficulty(string(g.Difficulty)); err != nil {
		return err
	}
	if _, err := ParseFrequency(string(g.Frequency)); err != nil {
		return err
	}
	if g.Kind == KindReduce && len(g.Items) == 0 {
		return fmt.Errorf("reduce goal requires at least one item")
	}
	for _, item := range g.Items {
		if item.Material == "" {
			return fmt.Errorf("reduce item material is required")
		}
		if item.TargetQuantity <= 0 {
			return fmt.Errorf("reduce item target must be > 0 for material %s", item.Material)
		}
	}
	return nil
}

func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
}

func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(raw) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return Frequency(raw), nil
	default:
		return "", fmt.Errorf("unknown frequency %q", raw)
	}
}

// MultiplierFor scales the reward of a goal by how demanding it is.
func MultiplierFor(d Difficulty, f Frequency) float64 {
	multiplier := 1.0
	switch d {
	case DifficultyMedium:
		multiplier = 1.5
	case DifficultyHard:
		multiplier = 2.0
	}
	switch f {
	case FrequencyWeekly:
		multiplier *= 1.25
	case FrequencyMonthly:
		multiplier *= 1.5
	}
	return multiplier
}

// NextCheckFrom returns the date the goal is next evaluated, one full
// frequency window after now.
func NextCheckFrom(now time.Time, f Frequency) time.Time {
	switch f {
	case FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return now.AddDate(0, 1, 0)
	default:
		return now.AddDate(0, 0, 1)
	}
}

// SkipDaysFor is the skip allowance granted to a fresh reduce goal.
func SkipDaysFor(f Frequency) int {
	switch f {
	case FrequencyWeekly:
		return 2
	case FrequencyMonthly:
		return 5
	default:
		return 0
	}
}
