package anova

import (
	"goanova/domain/core"
)

// ============================================================================
// SIGNIFICANCE PRIMITIVES
// ============================================================================

// SignificanceInfo carries one F-test's complete arithmetic.
// INVARIANT: MeanSquare == SumOfSquares / DegreesOfFreedom when df > 0.
type SignificanceInfo struct {
	SumOfSquares     float64 `json:"sum_of_squares"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	MeanSquare       float64 `json:"mean_square"`
	FValue           float64 `json:"f_value"`
	PValue           float64 `json:"p_value"`
}

// MeaningfulnessLevel is the qualitative effect-size bucket.
type MeaningfulnessLevel string

const (
	MeaningfulnessLow    MeaningfulnessLevel = "low"
	MeaningfulnessMedium MeaningfulnessLevel = "medium"
	MeaningfulnessHigh   MeaningfulnessLevel = "high"
)

// Cohen's conventional eta-squared boundaries.
const (
	EtaSquaredMediumThreshold = 0.06
	EtaSquaredHighThreshold   = 0.14
)

// EffectMeaningfulness is an effect-size value (eta-squared for main effects,
// partial eta-squared for interactions) plus its qualitative bucket.
type EffectMeaningfulness struct {
	EtaSquared float64             `json:"eta_squared"`
	Level      MeaningfulnessLevel `json:"level"`
}

// ClassifyEtaSquared buckets an eta-squared value at the 0.06 / 0.14 boundaries.
func ClassifyEtaSquared(eta float64) EffectMeaningfulness {
	level := MeaningfulnessLow
	if eta >= EtaSquaredHighThreshold {
		level = MeaningfulnessHigh
	} else if eta >= EtaSquaredMediumThreshold {
		level = MeaningfulnessMedium
	}
	return EffectMeaningfulness{EtaSquared: eta, Level: level}
}

// ============================================================================
// POST-HOC DETAIL
// ============================================================================

// LevelMean summarizes one factor level (or joint level combination):
// mean response, confidence interval, and sample size.
type LevelMean struct {
	Level      string  `json:"level"`
	Mean       float64 `json:"mean"`
	CILower    float64 `json:"ci_lower"`
	CIUpper    float64 `json:"ci_upper"`
	SampleSize int     `json:"sample_size"`
}

// ComparisonMethod names the procedure behind a pairwise comparison.
type ComparisonMethod string

const (
	MethodWelchT   ComparisonMethod = "welch_t"
	MethodTukeyHSD ComparisonMethod = "tukey_hsd"
)

// PairwiseComparison is one level-vs-level contrast.
// Comparing A vs B negates MeanDifference relative to B vs A; the p-value
// and significance flag are identical either way.
type PairwiseComparison struct {
	LevelA         string           `json:"level_a"`
	LevelB         string           `json:"level_b"`
	MeanDifference float64          `json:"mean_difference"`
	CILower        float64          `json:"ci_lower"`
	CIUpper        float64          `json:"ci_upper"`
	PValue         float64          `json:"p_value"`
	IsSignificant  bool             `json:"is_significant"`
	Method         ComparisonMethod `json:"method"`
}

// EnhancedInfo is the post-hoc detail attached to a significant effect:
// sorted level (or combination) means, pairwise comparisons, and a
// deterministic natural-language description.
type EnhancedInfo struct {
	LevelMeans          []LevelMean          `json:"level_means"`
	PairwiseComparisons []PairwiseComparison `json:"pairwise_comparisons"`
	Description         string               `json:"description"`
}

// ============================================================================
// EFFECTS
// ============================================================================

// MainEffectStatAnalysis is one factor's effect on one response variable.
// Enhanced is populated only when the effect is significant.
type MainEffectStatAnalysis struct {
	Factor           core.FactorKey       `json:"factor"`
	ResponseVariable core.ResponseKey     `json:"response_variable"`
	IsSignificant    bool                 `json:"is_significant"`
	Significance     SignificanceInfo     `json:"significance"`
	Meaningfulness   EffectMeaningfulness `json:"meaningfulness"`
	Enhanced         *EnhancedInfo        `json:"enhanced,omitempty"`
}

// InteractionStatAnalysis is a 2- or 3-way interaction effect on one
// response variable. Factors preserves declaration order.
// Meaningfulness holds partial eta-squared.
type InteractionStatAnalysis struct {
	Factors          []core.FactorKey     `json:"factors"`
	ResponseVariable core.ResponseKey     `json:"response_variable"`
	IsSignificant    bool                 `json:"is_significant"`
	Significance     SignificanceInfo     `json:"significance"`
	Meaningfulness   EffectMeaningfulness `json:"meaningfulness"`
	Enhanced         *EnhancedInfo        `json:"enhanced,omitempty"`
}

// Residual is the unexplained variance for one response variable after all
// valid main effects are accounted for.
type Residual struct {
	ResponseVariable core.ResponseKey `json:"response_variable"`
	DegreesOfFreedom int              `json:"degrees_of_freedom"`
	SumOfSquares     float64          `json:"sum_of_squares"`
	MeanSquare       float64          `json:"mean_square"`
}

// StatAnalysis is the aggregate output of one analysis run. List order is
// deterministic: factors, responses and factor combinations iterate in
// declaration order.
type StatAnalysis struct {
	MainEffects  []MainEffectStatAnalysis  `json:"main_effects"`
	Interactions []InteractionStatAnalysis `json:"interactions"`
	Residuals    []Residual                `json:"residuals"`
}
