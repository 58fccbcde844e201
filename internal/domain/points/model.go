package points

import (
	"math"
	"time"
)

// Category weights for the aggregated score. Recycle and reuse count in
// full; knowledge and reduce are discounted.
const (
	knowledgeWeight = 0.85
	reduceWeight    = 0.15
)

// Counters is a user's accumulated raw points per category. Version backs
// the optimistic concurrency check on updates.
type Counters struct {
	UserID    string
	Recycle   int
	Reuse     int
	Reduce    int
	Knowledge int
	Version   int64
	UpdatedAt time.Time
}

// Delta is a signed change to one or more categories, produced by goal
// tracking and folded into Counters.
type Delta struct {
	Recycle   int
	Reuse     int
	Reduce    int
	Knowledge int
}

func (d Delta) IsZero() bool {
	return d.Recycle == 0 && d.Reuse == 0 && d.Reduce == 0 && d.Knowledge == 0
}

// Apply folds the delta into the counters, flooring every category at zero.
func (c Counters) Apply(d Delta) Counters {
	c.Recycle = clampNonNegative(c.Recycle + d.Recycle)
	c.Reuse = clampNonNegative(c.Reuse + d.Reuse)
	c.Reduce = clampNonNegative(c.Reduce + d.Reduce)
	c.Knowledge = clampNonNegative(c.Knowledge + d.Knowledge)
	return c
}

// CalculateTotal computes the weighted total from the four stored category
// counters. It is pure: identical counters always yield the same total,
// with standard rounding to the nearest integer.
func CalculateTotal(c Counters) int {
	total := float64(c.Recycle) +
		float64(c.Reuse) +
		float64(c.Knowledge)*knowledgeWeight +
		float64(c.Reduce)*reduceWeight
	return int(math.Round(total))
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
