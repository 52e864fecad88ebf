package metrics

import (
	"math"

	"github.com/san-kum/mnasim/internal/sim"
)

// Peak is the largest magnitude of the record probe.
type Peak struct {
	name string
	peak float64
}

func NewPeak() *Peak {
	return &Peak{name: "peak"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.Record))
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }

// Final is the last observed value of the record probe.
type Final struct {
	name string
	last float64
}

func NewFinal() *Final {
	return &Final{name: "final"}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(s sim.Sample) { f.last = s.Record }

func (f *Final) Value() float64 { return f.last }

func (f *Final) Reset() { f.last = 0 }

// Mean is the average magnitude of the record probe.
type Mean struct {
	name    string
	sum     float64
	samples int
}

func NewMean() *Mean {
	return &Mean{name: "mean"}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(s sim.Sample) {
	m.sum += math.Abs(s.Record)
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// SettlingTime is the earliest time after which the record probe stays
// within tol·|final| of its last observed value. It returns -1 before any
// sample is seen.
type SettlingTime struct {
	name   string
	tol    float64
	times  []float64
	values []float64
}

func NewSettlingTime(tol float64) *SettlingTime {
	return &SettlingTime{name: "settling_time", tol: tol}
}

func (s *SettlingTime) Name() string { return s.name }

func (s *SettlingTime) Observe(smp sim.Sample) {
	s.times = append(s.times, smp.Time)
	s.values = append(s.values, smp.Record)
}

func (s *SettlingTime) Value() float64 {
	n := len(s.values)
	if n == 0 {
		return -1
	}
	final := s.values[n-1]
	band := s.tol * math.Abs(final)

	settled := s.times[n-1]
	for i := n - 1; i >= 0; i-- {
		if math.Abs(s.values[i]-final) > band {
			break
		}
		settled = s.times[i]
	}
	return settled
}

func (s *SettlingTime) Reset() {
	s.times = s.times[:0]
	s.values = s.values[:0]
}
