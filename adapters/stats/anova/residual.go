package anova

import (
	"github.com/montanaflynn/stats"

	"goanova/adapters/stats/dist"
	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal/errors"
)

// ResidualResult is the unexplained variance for one response variable after
// every valid single factor's main effect is subtracted from the total.
type ResidualResult struct {
	Response         core.ResponseKey
	SumOfSquares     float64
	DegreesOfFreedom int
	MeanSquare       float64
	SampleSize       int
}

// Residual computes the residual sum of squares for a response variable:
// total SS around the grand mean minus each factor's between-groups SS.
// Factors whose one-way ANOVA is not estimable contribute nothing (their
// main effect is omitted from the analysis too). Returns an
// INSUFFICIENT_DATA error when the residual degrees of freedom are not positive.
func Residual(d *dist.StatisticalDistributions, points []experiment.FormattedDataPoint, factors []core.FactorKey, response core.ResponseKey) (*ResidualResult, error) {
	var all []float64
	for _, p := range points {
		if value, ok := p.Response(response); ok {
			all = append(all, value)
		}
	}
	n := len(all)
	if n < 2 {
		return nil, errors.InsufficientDataf("residual on %q: only %d points", response, n)
	}

	grandMean, _ := stats.Mean(stats.Float64Data(all))
	var totalSS float64
	for _, v := range all {
		dev := v - grandMean
		totalSS += dev * dev
	}

	var explainedSS float64
	var explainedDF int
	for _, f := range factors {
		oneWay, err := OneWay(d, points, f, response, ObservedLevels(points, f))
		if err != nil {
			continue
		}
		explainedSS += oneWay.BetweenSS
		explainedDF += oneWay.DFBetween
	}

	df := (n - 1) - explainedDF
	if df <= 0 {
		return nil, errors.InsufficientDataf("residual on %q: non-positive degrees of freedom", response)
	}

	ss := totalSS - explainedSS
	if ss < 0 {
		ss = 0
	}

	return &ResidualResult{
		Response:         response,
		SumOfSquares:     ss,
		DegreesOfFreedom: df,
		MeanSquare:       ss / float64(df),
		SampleSize:       n,
	}, nil
}
