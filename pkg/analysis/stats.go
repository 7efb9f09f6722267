package analysis

import (
	"math"
	"sort"
)

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func stddev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	m := mean(x)
	sum := 0.0
	for _, v := range x {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(x)-1))
}

func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// medianAbsoluteDeviation is the median of absolute deviations from the
// median. Preferred over stddev for summaries since scheduling noise makes
// timing distributions heavy tailed.
func medianAbsoluteDeviation(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := median(x)
	deviations := make([]float64, len(x))
	for i, v := range x {
		deviations[i] = math.Abs(v - m)
	}
	return median(deviations)
}

// rankSum returns the sum of ranks of `a` within the pooled, ascending-ranked
// union of `a` and `b`, with ties receiving their average rank, and the tie
// correction term sum(t^3 - t) over tie groups.
func rankSum(a, b []float64) (sum float64, tieTerm float64) {
	type observation struct {
		value float64
		fromA bool
	}

	pooled := make([]observation, 0, len(a)+len(b))
	for _, v := range a {
		pooled = append(pooled, observation{value: v, fromA: true})
	}
	for _, v := range b {
		pooled = append(pooled, observation{value: v})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	i := 0
	for i < len(pooled) {
		j := i
		for j < len(pooled) && pooled[j].value == pooled[i].value {
			j++
		}
		// Ranks are 1-based; everyone in the tie group gets the average rank.
		averageRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if pooled[k].fromA {
				sum += averageRank
			}
		}
		ties := float64(j - i)
		tieTerm += ties*ties*ties - ties
		i = j
	}
	return sum, tieTerm
}

// mannWhitneyP computes the two-sided p-value of the Mann-Whitney U test
// (Wilcoxon rank-sum) using the normal approximation with tie correction and
// continuity correction. Both sample sizes should be at least ~10 for the
// approximation to hold, which the iteration floor guarantees in practice.
// Returns 1 when the pooled variance degenerates (all observations tied).
func mannWhitneyP(a, b []float64) float64 {
	n1 := float64(len(a))
	n2 := float64(len(b))
	if n1 == 0 || n2 == 0 {
		return 1
	}

	sum, tieTerm := rankSum(a, b)
	u := sum - n1*(n1+1)/2

	meanU := n1 * n2 / 2
	n := n1 + n2
	variance := n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		// Every observation tied; the distributions are indistinguishable.
		return 1
	}

	z := math.Abs(u-meanU) - 0.5
	if z < 0 {
		z = 0
	}
	z /= math.Sqrt(variance)

	// Two-sided tail of the standard normal distribution.
	p := math.Erfc(z / math.Sqrt2)
	if p > 1 {
		p = 1
	}
	return p
}

// cliffsDelta computes the Cliff's delta effect size between two samples:
// the probability that a value from `a` exceeds one from `b`, minus the
// reverse. Ranges over [-1, 1]; 0 means full overlap.
func cliffsDelta(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	greater := 0
	less := 0
	for _, va := range a {
		for _, vb := range b {
			switch {
			case va > vb:
				greater++
			case va < vb:
				less++
			}
		}
	}
	return float64(greater-less) / float64(len(a)*len(b))
}
