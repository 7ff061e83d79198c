// Package posthoc produces the pairwise comparisons reported for significant
// effects: Welch's t-tests when two means are compared, Tukey HSD when the
// family is larger.
package posthoc

import (
	"math"

	"github.com/montanaflynn/stats"

	statsanova "goanova/adapters/stats/anova"
	"goanova/adapters/stats/dist"
	"goanova/domain/anova"
	"goanova/internal/errors"
)

// Comparator computes post-hoc detail at a fixed significance level.
type Comparator struct {
	dist  *dist.StatisticalDistributions
	alpha float64
}

// NewComparator creates a comparator. alpha is the significance threshold;
// confidence intervals carry 1-alpha coverage.
func NewComparator(d *dist.StatisticalDistributions, alpha float64) *Comparator {
	return &Comparator{dist: d, alpha: alpha}
}

// LevelMeans summarizes each level with its mean, confidence interval and
// sample size, in the level order of the ANOVA result.
func (c *Comparator) LevelMeans(levelStats []statsanova.LevelStat) []anova.LevelMean {
	means := make([]anova.LevelMean, 0, len(levelStats))
	for _, ls := range levelStats {
		means = append(means, c.summarize(ls.Level, ls.Values))
	}
	return means
}

// CellMeans summarizes each joint level combination the same way.
func (c *Comparator) CellMeans(cells []statsanova.CellStat) []anova.LevelMean {
	means := make([]anova.LevelMean, 0, len(cells))
	for _, cell := range cells {
		means = append(means, c.summarize(cell.Label(), cell.Values))
	}
	return means
}

func (c *Comparator) summarize(label string, values []float64) anova.LevelMean {
	mean, _ := stats.Mean(stats.Float64Data(values))
	lm := anova.LevelMean{
		Level:      label,
		Mean:       mean,
		CILower:    mean,
		CIUpper:    mean,
		SampleSize: len(values),
	}
	if len(values) < 2 {
		return lm
	}

	sd, _ := stats.StandardDeviationSample(stats.Float64Data(values))
	se := sd / math.Sqrt(float64(len(values)))
	tCrit := c.dist.TQuantile(1-c.alpha/2, len(values)-1)
	if !math.IsNaN(tCrit) {
		lm.CILower = mean - tCrit*se
		lm.CIUpper = mean + tCrit*se
	}
	return lm
}

// MainEffectComparisons produces the pairwise comparisons for a significant
// main effect: one Welch's t-test for a two-level factor, Tukey HSD across
// all pairs otherwise (pooled error from the one-way ANOVA).
func (c *Comparator) MainEffectComparisons(result *statsanova.OneWayResult) []anova.PairwiseComparison {
	if len(result.LevelStats) == 2 {
		cmp, err := c.WelchTTest(
			result.LevelStats[0].Level, result.LevelStats[0].Values,
			result.LevelStats[1].Level, result.LevelStats[1].Values,
		)
		if err != nil {
			return nil
		}
		return []anova.PairwiseComparison{cmp}
	}

	groups := make([]group, len(result.LevelStats))
	for i, ls := range result.LevelStats {
		groups[i] = group{label: ls.Level, mean: ls.Mean, values: ls.Values}
	}
	return c.tukeyHSD(groups, result.MSWithin, result.DFWithin, allPairs(len(groups)))
}

// InteractionComparisons produces pairwise comparisons for a significant
// interaction. Only combinations differing in exactly one factor are
// compared; pairs that differ in several factors at once are not informative.
// Tukey HSD is used when any participating factor has more than two observed
// levels, pairwise Welch's t-tests otherwise.
func (c *Comparator) InteractionComparisons(result *statsanova.InteractionResult) []anova.PairwiseComparison {
	cells := result.CellStats
	if len(cells) < 2 {
		return nil
	}

	var qualifying [][2]int
	for i := 0; i < len(cells); i++ {
		for j := i + 1; j < len(cells); j++ {
			if differInExactlyOne(cells[i].Levels, cells[j].Levels) {
				qualifying = append(qualifying, [2]int{i, j})
			}
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	if anyFactorOverTwoLevels(cells) {
		groups := make([]group, len(cells))
		for i, cell := range cells {
			groups[i] = group{label: cell.Label(), mean: cell.Mean, values: cell.Values}
		}
		return c.tukeyHSD(groups, result.MSResidual, result.ResidualDF, qualifying)
	}

	comparisons := make([]anova.PairwiseComparison, 0, len(qualifying))
	for _, pair := range qualifying {
		a, b := cells[pair[0]], cells[pair[1]]
		cmp, err := c.WelchTTest(a.Label(), a.Values, b.Label(), b.Values)
		if err != nil {
			continue
		}
		comparisons = append(comparisons, cmp)
	}
	return comparisons
}

// WelchTTest runs an independent two-sample t-test with unequal variances
// between groups a and b, reporting the mean difference (a - b), its
// confidence interval and two-tailed p-value.
func (c *Comparator) WelchTTest(labelA string, a []float64, labelB string, b []float64) (anova.PairwiseComparison, error) {
	n1, n2 := float64(len(a)), float64(len(b))
	if n1 < 2 || n2 < 2 {
		return anova.PairwiseComparison{}, errors.InsufficientData("Welch's t-test requires at least 2 observations per group")
	}

	mean1, _ := stats.Mean(stats.Float64Data(a))
	mean2, _ := stats.Mean(stats.Float64Data(b))
	var1, _ := stats.SampleVariance(stats.Float64Data(a))
	var2, _ := stats.SampleVariance(stats.Float64Data(b))

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		return anova.PairwiseComparison{}, errors.InsufficientData("Welch's t-test: zero standard error")
	}

	diff := mean1 - mean2
	tStat := diff / se

	// Welch-Satterthwaite degrees of freedom.
	df := math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))
	dfInt := int(math.Floor(df))
	if dfInt < 1 {
		dfInt = 1
	}

	pValue := c.dist.TTestPValue(tStat, dfInt)

	cmp := anova.PairwiseComparison{
		LevelA:         labelA,
		LevelB:         labelB,
		MeanDifference: diff,
		CILower:        diff,
		CIUpper:        diff,
		PValue:         pValue,
		IsSignificant:  pValue < c.alpha,
		Method:         anova.MethodWelchT,
	}

	tCrit := c.dist.TQuantile(1-c.alpha/2, dfInt)
	if !math.IsNaN(tCrit) {
		cmp.CILower = diff - tCrit*se
		cmp.CIUpper = diff + tCrit*se
	}
	return cmp, nil
}

type group struct {
	label  string
	mean   float64
	values []float64
}

// tukeyHSD compares the requested pairs with the studentized range statistic,
// using the supplied pooled error term. The family size for the range
// distribution is the full number of group means.
func (c *Comparator) tukeyHSD(groups []group, msError float64, dfError int, pairs [][2]int) []anova.PairwiseComparison {
	if msError <= 0 || dfError < 1 {
		return nil
	}

	k := len(groups)
	qCrit := c.dist.StudentizedRangeQuantile(c.alpha, k, dfError)

	comparisons := make([]anova.PairwiseComparison, 0, len(pairs))
	for _, pair := range pairs {
		a, b := groups[pair[0]], groups[pair[1]]
		na, nb := float64(len(a.values)), float64(len(b.values))
		if na == 0 || nb == 0 {
			continue
		}

		se := math.Sqrt(msError / 2 * (1/na + 1/nb))
		if se == 0 {
			continue
		}

		diff := a.mean - b.mean
		q := math.Abs(diff) / se
		pValue := c.dist.StudentizedRangePValue(q, k, dfError)

		cmp := anova.PairwiseComparison{
			LevelA:         a.label,
			LevelB:         b.label,
			MeanDifference: diff,
			CILower:        diff,
			CIUpper:        diff,
			PValue:         pValue,
			IsSignificant:  pValue < c.alpha,
			Method:         anova.MethodTukeyHSD,
		}
		if !math.IsNaN(qCrit) {
			cmp.CILower = diff - qCrit*se
			cmp.CIUpper = diff + qCrit*se
		}
		comparisons = append(comparisons, cmp)
	}
	return comparisons
}

func allPairs(n int) [][2]int {
	var pairs [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// differInExactlyOne reports whether two equal-length level tuples differ in
// exactly one position.
func differInExactlyOne(a, b []string) bool {
	diffs := 0
	for i := range a {
		if a[i] != b[i] {
			diffs++
		}
	}
	return diffs == 1
}

// anyFactorOverTwoLevels checks the observed level counts per factor position
// across the given cells.
func anyFactorOverTwoLevels(cells []statsanova.CellStat) bool {
	if len(cells) == 0 {
		return false
	}
	factorCount := len(cells[0].Levels)
	for pos := 0; pos < factorCount; pos++ {
		seen := make(map[string]bool)
		for _, cell := range cells {
			seen[cell.Levels[pos]] = true
		}
		if len(seen) > 2 {
			return true
		}
	}
	return false
}
