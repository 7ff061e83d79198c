package posthoc

import (
	"math"
	"testing"

	statsanova "goanova/adapters/stats/anova"
	"goanova/adapters/stats/dist"
	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/experiment"
)

const scoreKey core.ResponseKey = "score"

func factorialPoints(factor core.FactorKey, groups map[string][]float64, order []string) []experiment.FormattedDataPoint {
	var points []experiment.FormattedDataPoint
	for _, level := range order {
		for _, v := range groups[level] {
			points = append(points, experiment.FormattedDataPoint{
				Factors:           map[core.FactorKey]string{factor: level},
				ResponseVariables: map[core.ResponseKey]float64{scoreKey: v},
			})
		}
	}
	return points
}

func TestWelchTTest_SymmetryAndSignificance(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)

	a := []float64{10, 12, 11, 13, 9}
	b := []float64{20, 22, 21, 19, 23}

	ab, err := c.WelchTTest("a", a, "b", b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := c.WelchTTest("b", b, "a", a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(ab.MeanDifference+ba.MeanDifference) > 1e-9 {
		t.Errorf("swapping groups should negate the difference: %v vs %v", ab.MeanDifference, ba.MeanDifference)
	}
	if math.Abs(ab.PValue-ba.PValue) > 1e-9 {
		t.Errorf("p-value should be orientation-independent: %v vs %v", ab.PValue, ba.PValue)
	}
	if !ab.IsSignificant {
		t.Errorf("clearly separated groups should be significant, p=%v", ab.PValue)
	}
	if ab.Method != anova.MethodWelchT {
		t.Errorf("method = %q, expected Welch", ab.Method)
	}
	if ab.CILower >= ab.MeanDifference || ab.CIUpper <= ab.MeanDifference {
		t.Errorf("CI [%v, %v] should bracket the difference %v", ab.CILower, ab.CIUpper, ab.MeanDifference)
	}
}

func TestWelchTTest_DegenerateGroups(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)

	if _, err := c.WelchTTest("a", []float64{1}, "b", []float64{2, 3}); err == nil {
		t.Error("expected an error for a single-observation group")
	}
	if _, err := c.WelchTTest("a", []float64{5, 5, 5}, "b", []float64{5, 5, 5}); err == nil {
		t.Error("expected an error for zero standard error")
	}
}

func TestMainEffectComparisons_TwoLevelsUsesWelch(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)
	d := dist.New()

	groups := map[string][]float64{
		"control":   {10, 12, 11},
		"treatment": {20, 22, 21},
	}
	order := []string{"control", "treatment"}
	points := factorialPoints("group", groups, order)

	result, err := statsanova.OneWay(d, points, "group", scoreKey, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	comparisons := c.MainEffectComparisons(result)
	if len(comparisons) != 1 {
		t.Fatalf("expected exactly one comparison, got %d", len(comparisons))
	}
	cmp := comparisons[0]
	if cmp.Method != anova.MethodWelchT {
		t.Errorf("method = %q, expected Welch for a two-level factor", cmp.Method)
	}
	if math.Abs(cmp.MeanDifference+10) > 1e-9 {
		t.Errorf("control - treatment = %v, expected -10", cmp.MeanDifference)
	}
	if !cmp.IsSignificant {
		t.Errorf("expected significance, p=%v", cmp.PValue)
	}
}

func TestMainEffectComparisons_ManyLevelsUsesTukey(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)
	d := dist.New()

	// Three tight levels plus one far outlier: the outlier's pairs should be
	// the significant ones.
	groups := map[string][]float64{
		"a":       {10, 11, 10, 11},
		"b":       {10.5, 11.5, 10.5, 11.5},
		"c":       {11, 10, 11, 10},
		"outlier": {30, 31, 30, 31},
	}
	order := []string{"a", "b", "c", "outlier"}
	points := factorialPoints("group", groups, order)

	result, err := statsanova.OneWay(d, points, "group", scoreKey, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	comparisons := c.MainEffectComparisons(result)
	if len(comparisons) != 6 {
		t.Fatalf("expected C(4,2)=6 comparisons, got %d", len(comparisons))
	}

	for _, cmp := range comparisons {
		if cmp.Method != anova.MethodTukeyHSD {
			t.Fatalf("method = %q, expected Tukey for 4 levels", cmp.Method)
		}
		involvesOutlier := cmp.LevelA == "outlier" || cmp.LevelB == "outlier"
		if involvesOutlier && !cmp.IsSignificant {
			t.Errorf("%s vs %s: expected significance, p=%v", cmp.LevelA, cmp.LevelB, cmp.PValue)
		}
		if !involvesOutlier && cmp.IsSignificant {
			t.Errorf("%s vs %s: expected no significance, p=%v", cmp.LevelA, cmp.LevelB, cmp.PValue)
		}
	}
}

func TestInteractionComparisons_FiltersMultiFactorPairs(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)

	result := &statsanova.InteractionResult{
		MSResidual: 2.0,
		ResidualDF: 12,
		CellStats: []statsanova.CellStat{
			{Levels: []string{"a1", "b1"}, Count: 4, Mean: 10, Values: []float64{9, 11, 10, 10}},
			{Levels: []string{"a1", "b2"}, Count: 4, Mean: 20, Values: []float64{19, 21, 20, 20}},
			{Levels: []string{"a2", "b1"}, Count: 4, Mean: 20, Values: []float64{21, 19, 20, 20}},
			{Levels: []string{"a2", "b2"}, Count: 4, Mean: 10, Values: []float64{11, 9, 10, 10}},
		},
	}

	comparisons := c.InteractionComparisons(result)

	// Of the 6 cell pairs, two differ in both factors and must be excluded.
	if len(comparisons) != 4 {
		t.Fatalf("expected 4 comparisons, got %d", len(comparisons))
	}
	for _, cmp := range comparisons {
		if (cmp.LevelA == "a1 / b1" && cmp.LevelB == "a2 / b2") ||
			(cmp.LevelA == "a1 / b2" && cmp.LevelB == "a2 / b1") {
			t.Errorf("pair %s vs %s differs in both factors and should be filtered", cmp.LevelA, cmp.LevelB)
		}
		// Both factors have two levels, so Welch applies per pair.
		if cmp.Method != anova.MethodWelchT {
			t.Errorf("method = %q, expected Welch when no factor exceeds two levels", cmp.Method)
		}
	}
}

func TestInteractionComparisons_TukeyWhenFactorHasThreeLevels(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)

	cells := []statsanova.CellStat{
		{Levels: []string{"a1", "b1"}, Count: 3, Mean: 10, Values: []float64{9, 10, 11}},
		{Levels: []string{"a2", "b1"}, Count: 3, Mean: 12, Values: []float64{11, 12, 13}},
		{Levels: []string{"a3", "b1"}, Count: 3, Mean: 30, Values: []float64{29, 30, 31}},
		{Levels: []string{"a1", "b2"}, Count: 3, Mean: 11, Values: []float64{10, 11, 12}},
		{Levels: []string{"a2", "b2"}, Count: 3, Mean: 13, Values: []float64{12, 13, 14}},
		{Levels: []string{"a3", "b2"}, Count: 3, Mean: 31, Values: []float64{30, 31, 32}},
	}
	result := &statsanova.InteractionResult{
		MSResidual: 1.0,
		ResidualDF: 12,
		CellStats:  cells,
	}

	comparisons := c.InteractionComparisons(result)
	if len(comparisons) == 0 {
		t.Fatal("expected comparisons")
	}
	for _, cmp := range comparisons {
		if cmp.Method != anova.MethodTukeyHSD {
			t.Errorf("method = %q, expected Tukey when a factor has 3 levels", cmp.Method)
		}
	}
}

func TestLevelMeans_ConfidenceIntervals(t *testing.T) {
	c := NewComparator(dist.New(), 0.05)

	means := c.LevelMeans([]statsanova.LevelStat{
		{Level: "a", Count: 4, Mean: 10.5, Values: []float64{10, 11, 10, 11}},
		{Level: "single", Count: 1, Mean: 7, Values: []float64{7}},
	})
	if len(means) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(means))
	}

	a := means[0]
	if a.Level != "a" || math.Abs(a.Mean-10.5) > 1e-9 {
		t.Errorf("a: mean = %v, expected 10.5", a.Mean)
	}
	if a.CILower >= a.Mean || a.CIUpper <= a.Mean {
		t.Errorf("a: CI [%v, %v] should bracket the mean", a.CILower, a.CIUpper)
	}

	// One observation gives no interval; it collapses onto the mean.
	single := means[1]
	if single.CILower != single.Mean || single.CIUpper != single.Mean {
		t.Errorf("single: CI [%v, %v] should collapse to the mean", single.CILower, single.CIUpper)
	}
}
