package analysis

import (
	"fmt"
	"time"
)

// ClassSummary is a dispersion-robust description of one class's timing
// distribution, carried by the verdict for audit.
type ClassSummary struct {
	Class   string
	Count   int
	Dropped int
	Median  time.Duration
	MAD     time.Duration
	Mean    time.Duration
	StdDev  time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Verdict is the immutable outcome of correlation analysis over one run.
type Verdict struct {
	// Statistic is the smallest Bonferroni-adjusted two-sided p-value over
	// all class pairs.
	Statistic float64
	// EffectSize is the Cliff's delta of the most separated pair.
	EffectSize float64
	// Threshold the verdict was decided against.
	Threshold float64
	// Vulnerable is true when Statistic < Threshold.
	Vulnerable bool
	// MostSeparated names the class pair which produced the statistic.
	MostSeparated [2]string
	// Classes holds per-class summaries in sampling order.
	Classes []ClassSummary
	// FailedClasses maps classes excluded from the verdict to the reason.
	FailedClasses map[string]string
}

// String renders the verdict decision in one line.
func (v *Verdict) String() string {
	decision := "no timing leak detected"
	if v.Vulnerable {
		decision = "VULNERABLE: timing correlates with secret input"
	}
	return fmt.Sprintf("%s (p=%.6g, effect=%.3f, threshold=%g, classes %q vs %q)",
		decision, v.Statistic, v.EffectSize, v.Threshold, v.MostSeparated[0], v.MostSeparated[1])
}

func summarize(class string, nanos []float64, dropped int) ClassSummary {
	summary := ClassSummary{
		Class:   class,
		Count:   len(nanos),
		Dropped: dropped,
		Median:  time.Duration(median(nanos)),
		MAD:     time.Duration(medianAbsoluteDeviation(nanos)),
		Mean:    time.Duration(mean(nanos)),
		StdDev:  time.Duration(stddev(nanos)),
	}
	if len(nanos) > 0 {
		min, max := nanos[0], nanos[0]
		for _, v := range nanos[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		summary.Min = time.Duration(min)
		summary.Max = time.Duration(max)
	}
	return summary
}
