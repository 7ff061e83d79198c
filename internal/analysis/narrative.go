package analysis

import (
	"fmt"
	"strings"

	"goanova/domain/anova"
	"goanova/domain/core"
)

// Narrative generation is deterministic template work; no external model is
// involved. Inputs are the already-computed numbers of a significant effect.

// maxNarrativePairs caps how many significant pairwise differences are
// spelled out before falling back to a count.
const maxNarrativePairs = 3

func formatPValue(p float64) string {
	if p < 0.001 {
		return "p < 0.001"
	}
	return fmt.Sprintf("p = %.3f", p)
}

// describeMainEffect renders one significant main effect as a sentence-level
// finding. means must be sorted by mean, descending.
func describeMainEffect(factor core.FactorKey, response core.ResponseKey, sig anova.SignificanceInfo, dfError int, meaning anova.EffectMeaningfulness, means []anova.LevelMean, comparisons []anova.PairwiseComparison) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Factor %q has a significant effect on %q (F(%d, %d) = %.2f, %s).",
		factor, response, sig.DegreesOfFreedom, dfError, sig.FValue, formatPValue(sig.PValue))
	fmt.Fprintf(&b, " The effect size is %s (eta-squared = %.3f).", meaning.Level, meaning.EtaSquared)

	if len(means) >= 2 {
		highest, lowest := means[0], means[len(means)-1]
		fmt.Fprintf(&b, " %q had the highest mean %s (%.2f, n=%d) and %q the lowest (%.2f, n=%d).",
			highest.Level, response, highest.Mean, highest.SampleSize,
			lowest.Level, lowest.Mean, lowest.SampleSize)
	}

	if len(means) > 2 {
		fmt.Fprintf(&b, " Tukey HSD controlled the family-wise error rate across %d pairwise comparisons; p-values are approximate.",
			len(means)*(len(means)-1)/2)
	}

	appendSignificantPairs(&b, comparisons)
	return b.String()
}

// describeInteraction renders one significant interaction effect. means must
// be sorted by mean, descending.
func describeInteraction(factors []core.FactorKey, response core.ResponseKey, sig anova.SignificanceInfo, dfError int, meaning anova.EffectMeaningfulness, means []anova.LevelMean, comparisons []anova.PairwiseComparison) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The interaction between %s significantly affects %q (F(%d, %d) = %.2f, %s).",
		joinFactorNames(factors), response, sig.DegreesOfFreedom, dfError, sig.FValue, formatPValue(sig.PValue))
	fmt.Fprintf(&b, " The effect size is %s (partial eta-squared = %.3f).", meaning.Level, meaning.EtaSquared)

	if len(means) >= 2 {
		highest, lowest := means[0], means[len(means)-1]
		fmt.Fprintf(&b, " The highest mean %s (%.2f) occurred at %q and the lowest (%.2f) at %q.",
			response, highest.Mean, highest.Level, lowest.Mean, lowest.Level)
	}

	if usesTukey(comparisons) {
		fmt.Fprintf(&b, " Tukey HSD controlled the family-wise error rate across the compared level combinations; p-values are approximate.")
	}

	appendSignificantPairs(&b, comparisons)
	return b.String()
}

func appendSignificantPairs(b *strings.Builder, comparisons []anova.PairwiseComparison) {
	var significant []anova.PairwiseComparison
	for _, c := range comparisons {
		if c.IsSignificant {
			significant = append(significant, c)
		}
	}
	if len(significant) == 0 {
		if len(comparisons) > 0 {
			b.WriteString(" No individual pairwise difference reached significance.")
		}
		return
	}

	b.WriteString(" Significant differences: ")
	shown := len(significant)
	if shown > maxNarrativePairs {
		shown = maxNarrativePairs
	}
	parts := make([]string, 0, shown)
	for _, c := range significant[:shown] {
		parts = append(parts, fmt.Sprintf("%q vs %q (diff = %.2f, %s)",
			c.LevelA, c.LevelB, c.MeanDifference, formatPValue(c.PValue)))
	}
	b.WriteString(strings.Join(parts, "; "))
	if rest := len(significant) - shown; rest > 0 {
		fmt.Fprintf(b, "; and %d more", rest)
	}
	b.WriteString(".")
}

func joinFactorNames(factors []core.FactorKey) string {
	quoted := make([]string, len(factors))
	for i, f := range factors {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " and " + quoted[1]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " and " + quoted[len(quoted)-1]
	}
}

func usesTukey(comparisons []anova.PairwiseComparison) bool {
	for _, c := range comparisons {
		if c.Method == anova.MethodTukeyHSD {
			return true
		}
	}
	return false
}
