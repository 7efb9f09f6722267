package analysis

import (
	"sort"
	"time"
)

const resolutionProbes = 64

// TimerName names the clock used for measurements.
// Go's time.Now carries a monotonic reading on every supported platform, so
// all elapsed times are computed from the monotonic clock.
func TimerName() string {
	return "monotonic"
}

// TimerResolution estimates the smallest observable tick of the measurement
// clock by spinning until consecutive readings differ, repeatedly, and taking
// the median difference.
func TimerResolution() time.Duration {
	deltas := make([]float64, 0, resolutionProbes)
	for i := 0; i < resolutionProbes; i++ {
		start := time.Now()
		delta := time.Since(start)
		for delta <= 0 {
			delta = time.Since(start)
		}
		deltas = append(deltas, float64(delta.Nanoseconds()))
	}
	sort.Float64s(deltas)
	return time.Duration(median(deltas))
}
