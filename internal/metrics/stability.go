package metrics

import (
	"math"

	"github.com/san-kum/mnasim/internal/sim"
)

// Bounded is the fraction of samples whose whole state lies within
// ±limit. NaN and Inf entries count as out of bounds.
type Bounded struct {
	limit   float64
	outside int
	total   int
	first   float64
}

func NewBounded(limit float64) *Bounded {
	return &Bounded{limit: limit, first: -1}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) Observe(smp sim.Sample) {
	b.total++
	for _, v := range smp.State {
		if math.IsNaN(v) || math.Abs(v) > b.limit {
			b.outside++
			if b.first < 0 {
				b.first = smp.Time
			}
			return
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.total == 0 {
		return 1
	}
	return 1 - float64(b.outside)/float64(b.total)
}

// FirstEscape is the time of the first out-of-bounds sample, or -1.
func (b *Bounded) FirstEscape() float64 { return b.first }

func (b *Bounded) Reset() {
	b.outside, b.total = 0, 0
	b.first = -1
}
