package analysis

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Analyzer executes a block repeatedly under varying secret-input classes and
// decides whether timing variance correlates with the secret value.
//
// Measurement is a single synchronous pipeline: warm-up, sample, summarize,
// threshold-compare, verdict. Samples of one run are taken strictly
// sequentially; concurrent sampling of the same block corrupts the signal.
// Independent analyzers measuring different blocks may run in parallel.
type Analyzer struct {
	config Config
}

// New validates the configuration and returns an Analyzer.
func New(config Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{config: config}, nil
}

// Analyze measures the block for each input class and produces a verdict.
//
// A block error fails only the affected class; sampling of the remaining
// classes continues. Samples overrunning the configured timeout are dropped
// and counted; a class exceeding the tolerated dropped fraction is excluded.
// When fewer than two classes end up usable the run aborts with
// InsufficientDataError.
func (a *Analyzer) Analyze(block Block, classes []InputClass) (*Verdict, error) {
	if block == nil {
		return nil, &InvalidConfigurationError{Reason: "block must not be nil"}
	}
	if len(classes) < 2 {
		return nil, &InsufficientDataError{Reason: fmt.Sprintf("correlation is undefined with %d input class(es), need at least 2", len(classes))}
	}
	seen := map[string]bool{}
	for _, class := range classes {
		if class.Name == "" || class.Input == nil {
			return nil, &InvalidConfigurationError{Reason: "every input class needs a name and an input generator"}
		}
		if seen[class.Name] {
			return nil, &InvalidConfigurationError{Reason: fmt.Sprintf("input class %q defined twice", class.Name)}
		}
		seen[class.Name] = true
	}

	run := newRun(a.config, classes)
	for _, class := range classes {
		a.sampleClass(run, block, class)
	}

	usable := run.usableClasses()
	if len(usable) < 2 {
		return nil, &InsufficientDataError{
			Reason: fmt.Sprintf("only %d of %d input classes produced usable samples", len(usable), len(classes)),
		}
	}

	return a.verdict(run, usable), nil
}

// sampleClass performs warm-up and measurement for a single class.
func (a *Analyzer) sampleClass(run *Run, block Block, class InputClass) {
	logrus.Debugf("Sampling class %q: %d warm-up and %d recorded executions",
		class.Name, a.config.Warmups, a.config.Iterations)

	for i := 0; i < a.config.Warmups; i++ {
		if err := block(class.Input(i)); err != nil && errors.Cause(err) != ErrSampleTimedOut {
			run.fail(&ExecutionFailureError{Class: class.Name, Iteration: i - a.config.Warmups, Err: err})
			logrus.Warnf("Class %q failed during warm-up: %v", class.Name, err)
			return
		}
	}

	for i := 0; i < a.config.Iterations; i++ {
		input := class.Input(a.config.Warmups + i)

		start := time.Now()
		err := block(input)
		elapsed := time.Since(start)

		if err != nil {
			if errors.Cause(err) == ErrSampleTimedOut {
				run.drop(class.Name)
				logrus.Warnf("Class %q iteration %d timed out, sample dropped", class.Name, i)
				continue
			}
			run.fail(&ExecutionFailureError{Class: class.Name, Iteration: i, Err: err})
			logrus.Warnf("Class %q failed at iteration %d: %v", class.Name, i, err)
			return
		}

		if elapsed > a.config.SampleTimeout {
			run.drop(class.Name)
			logrus.Warnf("Class %q iteration %d overran sample timeout (%s > %s), sample dropped",
				class.Name, i, elapsed, a.config.SampleTimeout)
			continue
		}

		run.record(Sample{Class: class.Name, Elapsed: elapsed, TakenAt: start})
	}

	if fraction := run.droppedFraction(class.Name); fraction > a.config.MaxDroppedFraction {
		run.fail(&ExecutionFailureError{
			Class:     class.Name,
			Iteration: a.config.Iterations,
			Err: errors.Errorf("dropped-sample rate %.2f exceeds tolerated %.2f",
				fraction, a.config.MaxDroppedFraction),
		})
	}
}

// verdict runs the pairwise rank-sum tests over usable classes and assembles
// the immutable result.
func (a *Analyzer) verdict(run *Run, usable []string) *Verdict {
	pairs := len(usable) * (len(usable) - 1) / 2

	minP := 1.0
	effect := 0.0
	mostSeparated := [2]string{usable[0], usable[1]}

	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			left := run.elapsedNanos(usable[i])
			right := run.elapsedNanos(usable[j])

			// Bonferroni adjustment keeps the family-wise false positive
			// rate under the threshold when more than one pair is tested.
			adjusted := mannWhitneyP(left, right) * float64(pairs)
			if adjusted > 1 {
				adjusted = 1
			}

			logrus.Debugf("Pair %q vs %q: adjusted p=%.6g", usable[i], usable[j], adjusted)

			if adjusted < minP || (i == 0 && j == 1) {
				minP = adjusted
				effect = cliffsDelta(left, right)
				mostSeparated = [2]string{usable[i], usable[j]}
			}
		}
	}

	verdict := &Verdict{
		Statistic:     minP,
		EffectSize:    effect,
		Threshold:     a.config.Threshold,
		Vulnerable:    minP < a.config.Threshold,
		MostSeparated: mostSeparated,
		FailedClasses: map[string]string{},
	}

	for _, class := range run.order {
		verdict.Classes = append(verdict.Classes,
			summarize(class, run.elapsedNanos(class), run.dropped[class]))
		if failure, failed := run.failed[class]; failed {
			verdict.FailedClasses[class] = failure.Error()
		}
	}

	return verdict
}
