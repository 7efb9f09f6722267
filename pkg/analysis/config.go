package analysis

import (
	"fmt"
	"time"
)

// Config is a set of parameters controlling one analysis run. It is validated
// eagerly, before any measurement begins.
type Config struct {
	// Number of recorded executions per input class.
	Iterations int
	// Number of discarded executions before sampling starts. Warm-up
	// stabilizes caches and branch predictors so the first recorded samples
	// are comparable with the rest.
	Warmups int
	// Statistical threshold with p-value semantics, in (0, 1]. The verdict is
	// vulnerable when the cross-class test statistic falls below it.
	Threshold float64
	// Upper bound on a single block invocation. Overrunning samples are
	// dropped, not treated as fatal.
	SampleTimeout time.Duration
	// Maximum tolerated ratio of dropped samples per class, in [0, 1). A class
	// exceeding it is excluded from the verdict.
	MaxDroppedFraction float64
}

// DefaultConfig returns the documented defaults: 100 iterations, 10 warm-ups,
// 0.05 threshold, one minute sample timeout and 10% tolerated drops.
func DefaultConfig() Config {
	return Config{
		Iterations:         100,
		Warmups:            10,
		Threshold:          0.05,
		SampleTimeout:      time.Minute,
		MaxDroppedFraction: 0.1,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return &InvalidConfigurationError{Reason: fmt.Sprintf("iterations must be a positive integer, got %d", c.Iterations)}
	}
	if c.Warmups < 0 {
		return &InvalidConfigurationError{Reason: fmt.Sprintf("warmups must not be negative, got %d", c.Warmups)}
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		return &InvalidConfigurationError{Reason: fmt.Sprintf("threshold must lie in (0, 1], got %g", c.Threshold)}
	}
	if c.SampleTimeout <= 0 {
		return &InvalidConfigurationError{Reason: fmt.Sprintf("sample timeout must be positive, got %s", c.SampleTimeout)}
	}
	if c.MaxDroppedFraction < 0 || c.MaxDroppedFraction >= 1 {
		return &InvalidConfigurationError{Reason: fmt.Sprintf("max dropped fraction must lie in [0, 1), got %g", c.MaxDroppedFraction)}
	}
	return nil
}
