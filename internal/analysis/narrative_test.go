package analysis

import (
	"strings"
	"testing"

	"goanova/domain/anova"
	"goanova/domain/core"
)

func TestFormatPValue(t *testing.T) {
	if got := formatPValue(0.0002); got != "p < 0.001" {
		t.Errorf("formatPValue(0.0002) = %q", got)
	}
	if got := formatPValue(0.032); got != "p = 0.032" {
		t.Errorf("formatPValue(0.032) = %q", got)
	}
}

func TestDescribeMainEffect_Content(t *testing.T) {
	sig := anova.SignificanceInfo{
		SumOfSquares:     150,
		DegreesOfFreedom: 1,
		MeanSquare:       150,
		FValue:           150,
		PValue:           0.0003,
	}
	meaning := anova.ClassifyEtaSquared(0.97)
	means := []anova.LevelMean{
		{Level: "treatment", Mean: 21, SampleSize: 3},
		{Level: "control", Mean: 11, SampleSize: 3},
	}
	comparisons := []anova.PairwiseComparison{
		{LevelA: "control", LevelB: "treatment", MeanDifference: -10, PValue: 0.0003, IsSignificant: true, Method: anova.MethodWelchT},
	}

	desc := describeMainEffect("group", "score", sig, 4, meaning, means, comparisons)

	for _, want := range []string{
		`Factor "group"`,
		`"score"`,
		"F(1, 4) = 150.00",
		"p < 0.001",
		"high",
		`"treatment" had the highest mean`,
		`"control" the lowest`,
		"Significant differences",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}

	// Two levels means no Tukey caveat.
	if strings.Contains(desc, "Tukey") {
		t.Errorf("unexpected Tukey caveat for a 2-level factor:\n%s", desc)
	}
}

func TestDescribeMainEffect_TukeyCaveat(t *testing.T) {
	sig := anova.SignificanceInfo{DegreesOfFreedom: 2, FValue: 12.5, PValue: 0.002}
	means := []anova.LevelMean{
		{Level: "c", Mean: 30, SampleSize: 4},
		{Level: "b", Mean: 12, SampleSize: 4},
		{Level: "a", Mean: 10, SampleSize: 4},
	}

	desc := describeMainEffect("group", "score", sig, 9, anova.ClassifyEtaSquared(0.5), means, nil)

	if !strings.Contains(desc, "Tukey HSD") || !strings.Contains(desc, "3 pairwise comparisons") {
		t.Errorf("expected a Tukey caveat naming C(3,2)=3 comparisons:\n%s", desc)
	}
}

func TestDescribeInteraction_Content(t *testing.T) {
	sig := anova.SignificanceInfo{DegreesOfFreedom: 1, FValue: 100, PValue: 0.001}
	means := []anova.LevelMean{
		{Level: "a1 / b2", Mean: 20, SampleSize: 2},
		{Level: "a1 / b1", Mean: 10, SampleSize: 2},
	}
	comparisons := []anova.PairwiseComparison{
		{LevelA: "a1 / b1", LevelB: "a1 / b2", MeanDifference: -10, PValue: 0.01, IsSignificant: true, Method: anova.MethodTukeyHSD},
	}

	desc := describeInteraction([]core.FactorKey{"fa", "fb"}, "score", sig, 4, anova.ClassifyEtaSquared(0.96), means, comparisons)

	for _, want := range []string{
		`"fa" and "fb"`,
		"F(1, 4) = 100.00",
		"partial eta-squared",
		"Tukey HSD",
		"a1 / b2",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}
}

func TestAppendSignificantPairs_Truncation(t *testing.T) {
	comparisons := make([]anova.PairwiseComparison, 0, 5)
	for _, pair := range [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}, {"a", "e"}, {"a", "f"}} {
		comparisons = append(comparisons, anova.PairwiseComparison{
			LevelA: pair[0], LevelB: pair[1], MeanDifference: 1, PValue: 0.01, IsSignificant: true,
		})
	}

	var b strings.Builder
	appendSignificantPairs(&b, comparisons)
	out := b.String()

	if !strings.Contains(out, "and 2 more") {
		t.Errorf("expected truncation after %d pairs:\n%s", maxNarrativePairs, out)
	}
}

func TestAppendSignificantPairs_NoneSignificant(t *testing.T) {
	var b strings.Builder
	appendSignificantPairs(&b, []anova.PairwiseComparison{
		{LevelA: "a", LevelB: "b", PValue: 0.4},
	})
	if !strings.Contains(b.String(), "No individual pairwise difference") {
		t.Errorf("expected the no-significance sentence, got %q", b.String())
	}

	b.Reset()
	appendSignificantPairs(&b, nil)
	if b.Len() != 0 {
		t.Errorf("no comparisons should add nothing, got %q", b.String())
	}
}

func TestJoinFactorNames(t *testing.T) {
	cases := []struct {
		factors []core.FactorKey
		want    string
	}{
		{nil, ""},
		{[]core.FactorKey{"a"}, `"a"`},
		{[]core.FactorKey{"a", "b"}, `"a" and "b"`},
		{[]core.FactorKey{"a", "b", "c"}, `"a", "b" and "c"`},
	}
	for _, tc := range cases {
		if got := joinFactorNames(tc.factors); got != tc.want {
			t.Errorf("joinFactorNames(%v) = %q, want %q", tc.factors, got, tc.want)
		}
	}
}
