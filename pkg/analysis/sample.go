package analysis

import (
	"time"
)

// Sample is a single measured execution of a block. Immutable once recorded.
type Sample struct {
	Class   string
	Elapsed time.Duration
	TakenAt time.Time
}

// Run accumulates the samples produced for one block under one configuration.
// It is owned exclusively by the analysis session which created it and is
// discarded after a verdict is produced. Not safe for concurrent mutation;
// sampling within a run is sequential.
type Run struct {
	config  Config
	order   []string
	samples map[string][]Sample
	dropped map[string]int
	failed  map[string]*ExecutionFailureError
}

func newRun(config Config, classes []InputClass) *Run {
	run := &Run{
		config:  config,
		samples: map[string][]Sample{},
		dropped: map[string]int{},
		failed:  map[string]*ExecutionFailureError{},
	}
	for _, class := range classes {
		run.order = append(run.order, class.Name)
	}
	return run
}

func (r *Run) record(sample Sample) {
	r.samples[sample.Class] = append(r.samples[sample.Class], sample)
}

func (r *Run) drop(class string) {
	r.dropped[class]++
}

func (r *Run) fail(failure *ExecutionFailureError) {
	r.failed[failure.Class] = failure
}

// usableClasses returns names of classes which completed sampling without a
// failure and kept their dropped-sample rate under the configured fraction.
func (r *Run) usableClasses() []string {
	usable := []string{}
	for _, class := range r.order {
		if _, failed := r.failed[class]; failed {
			continue
		}
		if len(r.samples[class]) == 0 {
			continue
		}
		usable = append(usable, class)
	}
	return usable
}

// droppedFraction returns the ratio of dropped samples to attempted
// measurements for given class.
func (r *Run) droppedFraction(class string) float64 {
	attempted := len(r.samples[class]) + r.dropped[class]
	if attempted == 0 {
		return 0
	}
	return float64(r.dropped[class]) / float64(attempted)
}

// elapsedNanos returns recorded elapsed times of a class as float64
// nanoseconds for the statistical helpers.
func (r *Run) elapsedNanos(class string) []float64 {
	samples := r.samples[class]
	nanos := make([]float64, len(samples))
	for i, sample := range samples {
		nanos[i] = float64(sample.Elapsed.Nanoseconds())
	}
	return nanos
}
