package anova

import (
	"strings"

	"github.com/montanaflynn/stats"

	"goanova/adapters/stats/dist"
	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal/errors"
)

// interactionMinPoints is the floor below which an interaction is not attempted.
const interactionMinPoints = 5

// cellKeySep joins level labels into an internal grouping key. Unit separator
// avoids collisions with any printable level label.
const cellKeySep = "\x1f"

// CombinationLabel renders a joint level combination for display.
func CombinationLabel(levels []string) string {
	return strings.Join(levels, " / ")
}

// CellStat summarizes one joint level-combination cell.
type CellStat struct {
	Levels []string // one level per factor, in factor order
	Count  int
	Mean   float64
	Values []float64
}

// Label renders the cell's display label.
func (c CellStat) Label() string {
	return CombinationLabel(c.Levels)
}

// InteractionResult is the arithmetic of a k-way (k in {2,3}) interaction:
// the combined-cell model compared against the sum of the participating
// factors' main effects.
type InteractionResult struct {
	Factors           []core.FactorKey
	Response          core.ResponseKey
	InteractionSS     float64
	InteractionDF     int
	ResidualSS        float64
	ResidualDF        int
	MSInteraction     float64
	MSResidual        float64
	FValue            float64
	PValue            float64
	PartialEtaSquared float64 // interactionSS / (interactionSS + residualSS)
	GrandMean         float64
	SampleSize        int
	CellStats         []CellStat // deterministic: cartesian order over observed levels
}

// Interaction computes the interaction effect of the given factors on one
// response variable. Returns an INSUFFICIENT_DATA error whenever the model is
// not estimable; callers omit the effect silently in that case.
func Interaction(d *dist.StatisticalDistributions, points []experiment.FormattedDataPoint, factors []core.FactorKey, response core.ResponseKey) (*InteractionResult, error) {
	if len(factors) < 2 {
		return nil, errors.InsufficientData("interaction requires at least 2 factors")
	}

	// Points usable by the combined model: hold the response and every factor.
	var usable []experiment.FormattedDataPoint
	withResponse := 0
	for _, p := range points {
		if _, ok := p.Response(response); !ok {
			continue
		}
		withResponse++
		complete := true
		for _, f := range factors {
			if _, ok := p.Level(f); !ok {
				complete = false
				break
			}
		}
		if complete {
			usable = append(usable, p)
		}
	}
	if withResponse < interactionMinPoints {
		return nil, errors.InsufficientDataf("interaction on %q: only %d points hold the response", response, withResponse)
	}

	// Sum the participating factors' main effects (SS and df) via one-way ANOVA.
	var mainEffectsSS float64
	var mainEffectsDF int
	observedLevels := make([][]string, len(factors))
	for i, f := range factors {
		levels := ObservedLevels(usable, f)
		observedLevels[i] = levels
		oneWay, err := OneWay(d, usable, f, response, levels)
		if err != nil {
			return nil, errors.Wrapf(err, "interaction on %q: main effect of %q not estimable", response, f)
		}
		mainEffectsSS += oneWay.BetweenSS
		mainEffectsDF += oneWay.DFBetween
	}

	// Group by joint level combination.
	cells := make(map[string][]float64)
	var all []float64
	for _, p := range usable {
		parts := make([]string, len(factors))
		for i, f := range factors {
			parts[i], _ = p.Level(f)
		}
		key := strings.Join(parts, cellKeySep)
		value, _ := p.Response(response)
		cells[key] = append(cells[key], value)
		all = append(all, value)
	}
	if len(cells) < len(factors) {
		return nil, errors.InsufficientDataf("interaction on %q: only %d joint groups for %d factors", response, len(cells), len(factors))
	}

	n := len(all)
	grandMean, _ := stats.Mean(stats.Float64Data(all))

	// Combined-cell model, iterated in deterministic cartesian order.
	combinedDF := 1
	for _, levels := range observedLevels {
		combinedDF *= len(levels)
	}
	combinedDF--

	var combinedSS, residualSS float64
	var cellStats []CellStat
	iter := NewProductIterator(observedLevels)
	for tuple, ok := iter.Next(); ok; tuple, ok = iter.Next() {
		values := cells[strings.Join(tuple, cellKeySep)]
		if len(values) == 0 {
			continue // unobserved cell
		}
		mean, _ := stats.Mean(stats.Float64Data(values))
		diff := mean - grandMean
		combinedSS += float64(len(values)) * diff * diff
		for _, v := range values {
			dev := v - mean
			residualSS += dev * dev
		}
		cellStats = append(cellStats, CellStat{
			Levels: tuple,
			Count:  len(values),
			Mean:   mean,
			Values: values,
		})
	}

	interactionSS := combinedSS - mainEffectsSS
	interactionDF := combinedDF - mainEffectsDF
	residualDF := (n - 1) - combinedDF

	if interactionSS <= 0 || interactionDF <= 0 {
		return nil, errors.InsufficientDataf("interaction on %q: no variance beyond main effects", response)
	}
	if residualDF <= 0 {
		return nil, errors.InsufficientDataf("interaction on %q: no residual degrees of freedom", response)
	}

	msInteraction := interactionSS / float64(interactionDF)
	msResidual := residualSS / float64(residualDF)
	if msResidual == 0 {
		return nil, errors.InsufficientDataf("interaction on %q: zero residual variance", response)
	}

	fValue := msInteraction / msResidual

	return &InteractionResult{
		Factors:           factors,
		Response:          response,
		InteractionSS:     interactionSS,
		InteractionDF:     interactionDF,
		ResidualSS:        residualSS,
		ResidualDF:        residualDF,
		MSInteraction:     msInteraction,
		MSResidual:        msResidual,
		FValue:            fValue,
		PValue:            d.FSurvival(fValue, interactionDF, residualDF),
		PartialEtaSquared: interactionSS / (interactionSS + residualSS),
		GrandMean:         grandMean,
		SampleSize:        n,
		CellStats:         cellStats,
	}, nil
}
