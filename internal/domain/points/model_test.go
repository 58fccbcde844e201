package points

import "testing"

func TestCalculateTotal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Counters
		want int
	}{
		{"zero counters", Counters{}, 0},
		{"full weight categories", Counters{Recycle: 10, Reuse: 5}, 15},
		{"knowledge discounted", Counters{Knowledge: 2}, 2},           // 1.7 rounds up
		{"reduce heavily discounted", Counters{Reduce: 10}, 2},        // 1.5 rounds up
		{"mixed", Counters{Recycle: 10, Reuse: 5, Knowledge: 2}, 17},  // 16.7
		{"all categories", Counters{Recycle: 10, Reuse: 5, Knowledge: 2, Reduce: 3}, 17}, // 17.15
		{"round half up", Counters{Reduce: 10, Knowledge: 0}, 2},      // 1.5 -> 2
		{"round down", Counters{Knowledge: 1}, 1},                     // 0.85 -> 1
		{"large values stay exact", Counters{Recycle: 1000, Reuse: 500, Knowledge: 100, Reduce: 200}, 1615},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateTotal(tc.c); got != tc.want {
				t.Fatalf("CalculateTotal(%+v) = %d, want %d", tc.c, got, tc.want)
			}
		})
	}
}

func TestCalculateTotal_Deterministic(t *testing.T) {
	t.Parallel()

	c := Counters{Recycle: 7, Reuse: 3, Reduce: 9, Knowledge: 4}
	first := CalculateTotal(c)
	for i := 0; i < 100; i++ {
		if got := CalculateTotal(c); got != first {
			t.Fatalf("total not stable: %d vs %d", got, first)
		}
	}
}

func TestApply_FloorsAtZero(t *testing.T) {
	t.Parallel()

	c := Counters{Recycle: 3, Reuse: 1}
	out := c.Apply(Delta{Recycle: -10, Reuse: 2, Knowledge: -1})

	if out.Recycle != 0 {
		t.Fatalf("recycle not floored: %d", out.Recycle)
	}
	if out.Reuse != 3 {
		t.Fatalf("unexpected reuse: %d", out.Reuse)
	}
	if out.Knowledge != 0 {
		t.Fatalf("knowledge not floored: %d", out.Knowledge)
	}

	// The receiver is untouched.
	if c.Recycle != 3 || c.Reuse != 1 {
		t.Fatalf("apply mutated receiver: %+v", c)
	}
}

func TestDelta_IsZero(t *testing.T) {
	t.Parallel()

	if !(Delta{}).IsZero() {
		t.Fatalf("empty delta must be zero")
	}
	if (Delta{Reduce: -1}).IsZero() {
		t.Fatalf("negative delta is not zero")
	}
}
