package anova

import (
	"math"
	"testing"

	"goanova/adapters/stats/dist"
	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal/errors"
)

const scoreKey core.ResponseKey = "score"

// levelGroup pairs a level label with its observed values, in a fixed order.
type levelGroup struct {
	level  string
	values []float64
}

func makePoints(factor core.FactorKey, groups []levelGroup) []experiment.FormattedDataPoint {
	var points []experiment.FormattedDataPoint
	for _, g := range groups {
		for _, v := range g.values {
			points = append(points, experiment.FormattedDataPoint{
				Factors:           map[core.FactorKey]string{factor: g.level},
				ResponseVariables: map[core.ResponseKey]float64{scoreKey: v},
			})
		}
	}
	return points
}

func levelsOf(groups []levelGroup) []string {
	levels := make([]string, len(groups))
	for i, g := range groups {
		levels[i] = g.level
	}
	return levels
}

func TestOneWay_ControlVersusTreatment(t *testing.T) {
	groups := []levelGroup{
		{"control", []float64{10, 12, 11}},
		{"treatment", []float64{20, 22, 21}},
	}
	points := makePoints("group", groups)

	result, err := OneWay(dist.New(), points, "group", scoreKey, levelsOf(groups))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(result.BetweenSS-150) > 1e-9 {
		t.Errorf("BetweenSS = %v, expected 150", result.BetweenSS)
	}
	if math.Abs(result.WithinSS-4) > 1e-9 {
		t.Errorf("WithinSS = %v, expected 4", result.WithinSS)
	}
	if result.DFBetween != 1 || result.DFWithin != 4 {
		t.Errorf("df = (%d, %d), expected (1, 4)", result.DFBetween, result.DFWithin)
	}
	if math.Abs(result.FValue-150) > 1e-9 {
		t.Errorf("F = %v, expected 150", result.FValue)
	}
	if result.PValue >= 0.05 {
		t.Errorf("p = %v, expected significance at 0.05", result.PValue)
	}

	treatment := result.LevelStats[1]
	if treatment.Level != "treatment" || math.Abs(treatment.Mean-21) > 1e-9 {
		t.Errorf("treatment mean = %v, expected 21", treatment.Mean)
	}
}

func TestOneWay_SumOfSquaresDecomposition(t *testing.T) {
	groups := []levelGroup{
		{"a", []float64{3.1, 4.7, 5.2, 4.4}},
		{"b", []float64{7.9, 8.8, 6.5}},
		{"c", []float64{1.2, 2.4, 2.2, 0.9, 1.8}},
	}
	points := makePoints("factor", groups)

	result, err := OneWay(dist.New(), points, "factor", scoreKey, levelsOf(groups))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// totalSS around the grand mean must equal betweenSS + withinSS.
	var totalSS float64
	var n int
	for _, g := range groups {
		for _, v := range g.values {
			dev := v - result.GrandMean
			totalSS += dev * dev
			n++
		}
	}
	if math.Abs(totalSS-(result.BetweenSS+result.WithinSS)) > 1e-9 {
		t.Errorf("totalSS %v != betweenSS %v + withinSS %v", totalSS, result.BetweenSS, result.WithinSS)
	}

	if result.DFBetween+result.DFWithin != n-1 {
		t.Errorf("df additivity violated: %d + %d != %d", result.DFBetween, result.DFWithin, n-1)
	}

	if eta := result.EtaSquared(); eta <= 0 || eta >= 1 {
		t.Errorf("eta-squared = %v, expected within (0,1)", eta)
	}
}

func TestOneWay_InsufficientData(t *testing.T) {
	d := dist.New()

	cases := []struct {
		name   string
		groups []levelGroup
		levels []string
	}{
		{
			name:   "fewer points than levels+2",
			groups: []levelGroup{{"a", []float64{1}}, {"b", []float64{2, 3}}},
			levels: []string{"a", "b"},
		},
		{
			name:   "level with zero observations",
			groups: []levelGroup{{"a", []float64{1, 2, 3}}, {"b", []float64{4, 5}}},
			levels: []string{"a", "b", "ghost"},
		},
		{
			name:   "zero within-groups variance",
			groups: []levelGroup{{"a", []float64{5, 5, 5}}, {"b", []float64{9, 9, 9}}},
			levels: []string{"a", "b"},
		},
		{
			name:   "single level",
			groups: []levelGroup{{"a", []float64{1, 2, 3, 4}}},
			levels: []string{"a"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			points := makePoints("factor", tc.groups)
			_, err := OneWay(d, points, "factor", scoreKey, tc.levels)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.HasCode(err, errors.CodeInsufficientData) {
				t.Errorf("expected INSUFFICIENT_DATA, got %v", err)
			}
		})
	}
}

func TestObservedLevels_FirstAppearanceOrder(t *testing.T) {
	points := makePoints("factor", []levelGroup{
		{"b", []float64{1}},
		{"a", []float64{2}},
		{"b", []float64{3}},
		{"c", []float64{4}},
	})

	levels := ObservedLevels(points, "factor")
	want := []string{"b", "a", "c"}
	if len(levels) != len(want) {
		t.Fatalf("levels = %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("levels[%d] = %q, want %q", i, levels[i], want[i])
		}
	}
}
