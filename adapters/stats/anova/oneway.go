// Package anova implements the sum-of-squares decompositions behind the
// statistical engine: one-way ANOVA, 2- and 3-way interaction models, and
// residual (unexplained) variance.
package anova

import (
	"github.com/montanaflynn/stats"

	"goanova/adapters/stats/dist"
	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal/errors"
)

// LevelStat summarizes one factor level's observations.
type LevelStat struct {
	Level  string
	Count  int
	Mean   float64
	Values []float64
}

// OneWayResult is the complete arithmetic of a single-factor ANOVA.
// INVARIANTS: BetweenSS + WithinSS equals the total sum of squares around
// GrandMean, and DFBetween + DFWithin = SampleSize - 1.
type OneWayResult struct {
	Factor     core.FactorKey
	Response   core.ResponseKey
	BetweenSS  float64
	WithinSS   float64
	DFBetween  int
	DFWithin   int
	MSBetween  float64
	MSWithin   float64
	FValue     float64
	PValue     float64
	GrandMean  float64
	SampleSize int
	LevelStats []LevelStat // in the caller's level order
}

// EtaSquared is the fraction of total variance explained by the factor.
func (r *OneWayResult) EtaSquared() float64 {
	total := r.BetweenSS + r.WithinSS
	if total <= 0 {
		return 0
	}
	return r.BetweenSS / total
}

// OneWay computes a single factor's effect on a single response variable.
// Points lacking either the factor level or a numeric response value are
// skipped. Returns an INSUFFICIENT_DATA error when the decomposition is not
// well defined: fewer points than levels+2, an empty level, non-positive
// degrees of freedom, or zero within-groups variance.
func OneWay(d *dist.StatisticalDistributions, points []experiment.FormattedDataPoint, factor core.FactorKey, response core.ResponseKey, levels []string) (*OneWayResult, error) {
	if len(levels) < 2 {
		return nil, errors.InsufficientDataf("factor %q has %d level(s), need at least 2", factor, len(levels))
	}

	groups := make(map[string][]float64, len(levels))
	var all []float64
	for _, p := range points {
		level, ok := p.Level(factor)
		if !ok {
			continue
		}
		value, ok := p.Response(response)
		if !ok {
			continue
		}
		groups[level] = append(groups[level], value)
		all = append(all, value)
	}

	n := len(all)
	if n < len(levels)+2 {
		return nil, errors.InsufficientDataf("factor %q on %q: %d points for %d levels", factor, response, n, len(levels))
	}

	grandMean, _ := stats.Mean(stats.Float64Data(all))

	result := &OneWayResult{
		Factor:     factor,
		Response:   response,
		DFBetween:  len(levels) - 1,
		DFWithin:   n - len(levels),
		GrandMean:  grandMean,
		SampleSize: n,
		LevelStats: make([]LevelStat, 0, len(levels)),
	}

	for _, level := range levels {
		values := groups[level]
		if len(values) == 0 {
			return nil, errors.InsufficientDataf("factor %q level %q has no observations", factor, level)
		}
		mean, _ := stats.Mean(stats.Float64Data(values))

		count := float64(len(values))
		diff := mean - grandMean
		result.BetweenSS += count * diff * diff
		for _, v := range values {
			dev := v - mean
			result.WithinSS += dev * dev
		}

		result.LevelStats = append(result.LevelStats, LevelStat{
			Level:  level,
			Count:  len(values),
			Mean:   mean,
			Values: values,
		})
	}

	if result.DFBetween <= 0 || result.DFWithin <= 0 {
		return nil, errors.InsufficientDataf("factor %q on %q: non-positive degrees of freedom", factor, response)
	}

	result.MSBetween = result.BetweenSS / float64(result.DFBetween)
	result.MSWithin = result.WithinSS / float64(result.DFWithin)
	if result.MSWithin == 0 {
		// Zero within-group variance; F is undefined.
		return nil, errors.InsufficientDataf("factor %q on %q: zero within-groups variance", factor, response)
	}

	result.FValue = result.MSBetween / result.MSWithin
	result.PValue = d.FSurvival(result.FValue, result.DFBetween, result.DFWithin)

	return result, nil
}

// ObservedLevels returns the distinct levels of a factor actually present in
// the given points, ordered by first appearance.
func ObservedLevels(points []experiment.FormattedDataPoint, factor core.FactorKey) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, p := range points {
		level, ok := p.Level(factor)
		if !ok {
			continue
		}
		if !seen[level] {
			seen[level] = true
			levels = append(levels, level)
		}
	}
	return levels
}
