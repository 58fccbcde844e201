package goal

import (
	"testing"
	"time"
)

func TestItem_IncrementAndDecrement(t *testing.T) {
	t.Parallel()

	item := Item{Material: "plastic", TargetQuantity: 5}

	item.Increment(3)
	if item.ActualQuantity != 3 {
		t.Fatalf("unexpected quantity: %d", item.ActualQuantity)
	}

	if err := item.Decrement(2); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if item.ActualQuantity != 1 {
		t.Fatalf("unexpected quantity: %d", item.ActualQuantity)
	}

	// Over-decrement clamps at zero and reports the boundary.
	if err := item.Decrement(5); err == nil {
		t.Fatalf("expected error for over-decrement")
	}
	if item.ActualQuantity != 0 {
		t.Fatalf("quantity not clamped: %d", item.ActualQuantity)
	}

	// Negative arguments flip direction.
	item.Increment(-1)
	if item.ActualQuantity != 0 {
		t.Fatalf("negative increment must clamp at zero: %d", item.ActualQuantity)
	}
	if err := item.Decrement(-4); err != nil {
		t.Fatalf("negative decrement: %v", err)
	}
	if item.ActualQuantity != 4 {
		t.Fatalf("negative decrement must add: %d", item.ActualQuantity)
	}
}

func TestItem_Met(t *testing.T) {
	t.Parallel()

	if (Item{TargetQuantity: 5, ActualQuantity: 4}).Met() {
		t.Fatalf("item below target must not be met")
	}
	if !(Item{TargetQuantity: 5, ActualQuantity: 5}).Met() {
		t.Fatalf("item at target must be met")
	}
	if (Item{TargetQuantity: 0, ActualQuantity: 10}).Met() {
		t.Fatalf("zero target never counts as met")
	}
}

func TestGoal_Validate(t *testing.T) {
	t.Parallel()

	valid := Goal{
		UserID:     "user-1",
		Kind:       KindReduce,
		Difficulty: DifficultyEasy,
		Frequency:  FrequencyDaily,
		Items:      []Item{{Material: "glass", TargetQuantity: 3}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(g *Goal)
	}{
		{"missing user", func(g *Goal) { g.UserID = "" }},
		{"unknown kind", func(g *Goal) { g.Kind = "compost" }},
		{"unknown difficulty", func(g *Goal) { g.Difficulty = "EXTREME" }},
		{"unknown frequency", func(g *Goal) { g.Frequency = "HOURLY" }},
		{"reduce without items", func(g *Goal) { g.Items = nil }},
		{"item without material", func(g *Goal) { g.Items = []Item{{TargetQuantity: 3}} }},
		{"item without target", func(g *Goal) { g.Items = []Item{{Material: "glass"}} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := valid
			g.Items = append([]Item(nil), valid.Items...)
			tc.mutate(&g)
			if err := g.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestMultiplierFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    Difficulty
		f    Frequency
		want float64
	}{
		{DifficultyEasy, FrequencyDaily, 1.0},
		{DifficultyMedium, FrequencyDaily, 1.5},
		{DifficultyHard, FrequencyDaily, 2.0},
		{DifficultyEasy, FrequencyWeekly, 1.25},
		{DifficultyMedium, FrequencyWeekly, 1.875},
		{DifficultyHard, FrequencyMonthly, 3.0},
	}

	for _, tc := range tests {
		if got := MultiplierFor(tc.d, tc.f); got != tc.want {
			t.Fatalf("MultiplierFor(%s, %s) = %f, want %f", tc.d, tc.f, got, tc.want)
		}
	}
}

func TestNextCheckFrom(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	if got := NextCheckFrom(now, FrequencyDaily); !got.Equal(now.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected daily next check: %s", got)
	}
	if got := NextCheckFrom(now, FrequencyWeekly); !got.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected weekly next check: %s", got)
	}
	if got := NextCheckFrom(now, FrequencyMonthly); !got.Equal(now.AddDate(0, 1, 0)) {
		t.Fatalf("unexpected monthly next check: %s", got)
	}
}

func TestSkipDaysFor(t *testing.T) {
	t.Parallel()

	if got := SkipDaysFor(FrequencyDaily); got != 0 {
		t.Fatalf("daily skip allowance: %d", got)
	}
	if got := SkipDaysFor(FrequencyWeekly); got != 2 {
		t.Fatalf("weekly skip allowance: %d", got)
	}
	if got := SkipDaysFor(FrequencyMonthly); got != 5 {
		t.Fatalf("monthly skip allowance: %d", got)
	}
}
