package analysis

import (
	"errors"
	"math"
)

var ErrNoSamples = errors.New("analysis: not enough samples")

// StepResponse summarizes a signal that starts at Initial and settles at
// Final. Times are -1 when the signal never reaches the level.
type StepResponse struct {
	Initial      float64
	Final        float64
	Peak         float64
	PeakTime     float64
	Overshoot    float64 // percent of the step
	RiseTime     float64 // 10% to 90% of the step
	TimeConstant float64 // first reach of 63.2% of the step
	SettlingTime float64 // entry into ±tol·|step| around Final for good
}

// Analyze computes the step-response figures of values sampled at times.
func Analyze(times, values []float64, tol float64) (*StepResponse, error) {
	n := len(values)
	if n < 2 || len(times) != n {
		return nil, ErrNoSamples
	}

	r := &StepResponse{
		Initial:      values[0],
		Final:        values[n-1],
		PeakTime:     times[0],
		Peak:         values[0],
		RiseTime:     -1,
		TimeConstant: -1,
	}
	step := r.Final - r.Initial
	sign := 1.0
	if step < 0 {
		sign = -1
	}

	for i, v := range values {
		if sign*v > sign*r.Peak {
			r.Peak = v
			r.PeakTime = times[i]
		}
	}
	if step != 0 {
		r.Overshoot = math.Max(0, sign*(r.Peak-r.Final)/math.Abs(step)*100)
	}

	t10 := crossing(times, values, r.Initial+0.1*step, sign)
	t90 := crossing(times, values, r.Initial+0.9*step, sign)
	if t10 >= 0 && t90 >= 0 {
		r.RiseTime = t90 - t10
	}
	r.TimeConstant = crossing(times, values, r.Initial+(1-math.Exp(-1))*step, sign)

	band := tol * math.Abs(step)
	r.SettlingTime = times[n-1]
	for i := n - 1; i >= 0; i-- {
		if math.Abs(values[i]-r.Final) > band {
			break
		}
		r.SettlingTime = times[i]
	}
	return r, nil
}

// crossing returns the first time the signal reaches level, interpolating
// between samples, or -1.
func crossing(times, values []float64, level, sign float64) float64 {
	for i := 1; i < len(values); i++ {
		if sign*values[i] >= sign*level {
			prev, cur := values[i-1], values[i]
			if cur == prev {
				return times[i]
			}
			frac := (level - prev) / (cur - prev)
			frac = math.Max(0, math.Min(1, frac))
			return times[i-1] + frac*(times[i]-times[i-1])
		}
	}
	return -1
}
