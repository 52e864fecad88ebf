// Package analysis characterizes recorded transients.
//
//   - [Analyze]: step-response figures of one signal (rise time, overshoot,
//     settling time, time constant)
//   - [NewTrajectory]: one unknown plotted against another, e.g. the
//     speed-current trajectory of the motor
//
// Both work on stored samples, so they apply to fresh results and to runs
// loaded back from the store alike:
//
//	resp, err := analysis.Analyze(times, values, 0.02)
//	fmt.Printf("tau=%.4fs overshoot=%.1f%%\n", resp.TimeConstant, resp.Overshoot)
package analysis
