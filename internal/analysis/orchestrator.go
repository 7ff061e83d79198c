// Package analysis orchestrates the ANOVA pipeline: factor/response
// selection, data reshaping, main effects, residuals, interactions, and
// post-hoc enhancement of significant effects.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	statsanova "goanova/adapters/stats/anova"
	"goanova/adapters/stats/dist"
	"goanova/adapters/stats/posthoc"
	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal"
	"goanova/internal/errors"
)

const (
	// DefaultAlpha is the conventional significance threshold.
	DefaultAlpha = 0.05
	// DefaultMaxConcurrency bounds parallel effect computation.
	DefaultMaxConcurrency = 4

	minInteractionOrder = 2
	maxInteractionOrder = 3
)

// Options configures the analysis engine.
type Options struct {
	// Alpha is the significance level applied to every p-value comparison;
	// confidence intervals carry 1-Alpha coverage. Defaults to 0.05.
	Alpha float64
	// MaxConcurrency bounds how many effects are computed in parallel.
	MaxConcurrency int
	Logger         *internal.Logger
}

// Engine runs the full statistical analysis. It is pure computation: no I/O,
// no shared mutable state between invocations, deterministic output ordering.
type Engine struct {
	alpha      float64
	sem        *semaphore.Weighted
	log        *internal.Logger
	dist       *dist.StatisticalDistributions
	comparator *posthoc.Comparator
}

// NewEngine creates an analysis engine.
func NewEngine(opts Options) *Engine {
	alpha := opts.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	concurrency := opts.MaxConcurrency
	if concurrency < 1 {
		concurrency = DefaultMaxConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	d := dist.New()
	return &Engine{
		alpha:      alpha,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		log:        logger,
		dist:       d,
		comparator: posthoc.NewComparator(d, alpha),
	}
}

// Alpha returns the engine's significance level.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

type mainEffectSlot struct {
	effect anova.MainEffectStatAnalysis
	oneWay *statsanova.OneWayResult
	ok     bool
}

type interactionSlot struct {
	effect anova.InteractionStatAnalysis
	result *statsanova.InteractionResult
	ok     bool
}

// Analyze performs the complete statistical analysis of an experiment's
// results. Only a missing config or results container is a hard failure;
// any individual effect that cannot be computed is logged and omitted.
func (e *Engine) Analyze(ctx context.Context, cfg *experiment.Config, results []experiment.Result) (*anova.StatAnalysis, error) {
	if cfg == nil {
		return nil, errors.InvalidInput("experiment config is required")
	}
	if results == nil {
		return nil, errors.InvalidInput("experiment results are required")
	}

	out := &anova.StatAnalysis{
		MainEffects:  []anova.MainEffectStatAnalysis{},
		Interactions: []anova.InteractionStatAnalysis{},
		Residuals:    []anova.Residual{},
	}

	sel := SelectFactorsAndResponses(cfg, results)
	if sel.Empty() {
		e.log.Info("analysis of %q: nothing to analyze (%d valid factors, %d valid responses)",
			cfg.Name, len(sel.ValidFactors), len(sel.ValidResponses))
		return out, nil
	}

	points := Reshape(results, sel)
	if len(points) == 0 {
		e.log.Info("analysis of %q: no usable data points after reshaping", cfg.Name)
		return out, nil
	}
	e.log.Debug("analysis of %q: %d points, factors=%v, responses=%v",
		cfg.Name, len(points), sel.ValidFactors, sel.ValidResponses)

	// Phase 1: significance.
	mains := e.computeMainEffects(ctx, points, sel)
	residuals := e.computeResiduals(points, sel)
	interactions := e.computeInteractions(ctx, points, sel)

	// Phase 2: enhance significant effects with post-hoc detail and narrative.
	for i := range mains {
		if mains[i].effect.IsSignificant {
			e.safely(fmt.Sprintf("enhancement of %s on %s", mains[i].effect.Factor, mains[i].effect.ResponseVariable), func() error {
				e.enhanceMainEffect(&mains[i])
				return nil
			})
		}
	}
	for i := range interactions {
		if interactions[i].effect.IsSignificant {
			e.safely(fmt.Sprintf("enhancement of interaction %v on %s", interactions[i].effect.Factors, interactions[i].effect.ResponseVariable), func() error {
				e.enhanceInteraction(&interactions[i])
				return nil
			})
		}
	}

	for _, slot := range mains {
		out.MainEffects = append(out.MainEffects, slot.effect)
	}
	for _, slot := range interactions {
		out.Interactions = append(out.Interactions, slot.effect)
	}
	out.Residuals = residuals

	return out, nil
}

// safely runs one effect's computation, downgrading insufficient-data errors
// to debug logs and containing panics so a single bad effect never aborts the
// whole analysis.
func (e *Engine) safely(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic in %s: %v", name, r)
		}
	}()
	if err := fn(); err != nil {
		if errors.HasCode(err, errors.CodeInsufficientData) {
			e.log.Debug("%s skipped: %v", name, err)
		} else {
			e.log.Warn("%s failed: %v", name, err)
		}
	}
}

func (e *Engine) computeMainEffects(ctx context.Context, points []experiment.FormattedDataPoint, sel Selection) []mainEffectSlot {
	type task struct {
		factor   core.FactorKey
		response core.ResponseKey
	}
	var tasks []task
	for _, f := range sel.ValidFactors {
		for _, r := range sel.ValidResponses {
			tasks = append(tasks, task{factor: f, response: r})
		}
	}

	// Indexed slots keep output order deterministic under concurrency.
	slots := make([]mainEffectSlot, len(tasks))
	var wg sync.WaitGroup
	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()
			if err := e.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer e.sem.Release(1)

			e.safely(fmt.Sprintf("main effect of %s on %s", tk.factor, tk.response), func() error {
				oneWay, err := statsanova.OneWay(e.dist, points, tk.factor, tk.response, sel.FactorLevels[tk.factor])
				if err != nil {
					return err
				}
				slots[i] = mainEffectSlot{
					effect: anova.MainEffectStatAnalysis{
						Factor:           tk.factor,
						ResponseVariable: tk.response,
						IsSignificant:    oneWay.PValue < e.alpha,
						Significance: anova.SignificanceInfo{
							SumOfSquares:     oneWay.BetweenSS,
							DegreesOfFreedom: oneWay.DFBetween,
							MeanSquare:       oneWay.MSBetween,
							FValue:           oneWay.FValue,
							PValue:           oneWay.PValue,
						},
						Meaningfulness: anova.ClassifyEtaSquared(oneWay.EtaSquared()),
					},
					oneWay: oneWay,
					ok:     true,
				}
				return nil
			})
		}(i, tk)
	}
	wg.Wait()

	var kept []mainEffectSlot
	for _, slot := range slots {
		if slot.ok {
			kept = append(kept, slot)
		}
	}
	return kept
}

func (e *Engine) computeResiduals(points []experiment.FormattedDataPoint, sel Selection) []anova.Residual {
	residuals := []anova.Residual{}
	for _, response := range sel.ValidResponses {
		e.safely(fmt.Sprintf("residual for %s", response), func() error {
			result, err := statsanova.Residual(e.dist, points, sel.ValidFactors, response)
			if err != nil {
				return err
			}
			residuals = append(residuals, anova.Residual{
				ResponseVariable: result.Response,
				DegreesOfFreedom: result.DegreesOfFreedom,
				SumOfSquares:     result.SumOfSquares,
				MeanSquare:       result.MeanSquare,
			})
			return nil
		})
	}
	return residuals
}

func (e *Engine) computeInteractions(ctx context.Context, points []experiment.FormattedDataPoint, sel Selection) []interactionSlot {
	type task struct {
		factors  []core.FactorKey
		response core.ResponseKey
	}
	var tasks []task
	for order := minInteractionOrder; order <= maxInteractionOrder; order++ {
		if order > len(sel.ValidFactors) {
			break
		}
		iter := statsanova.NewSubsetIterator(len(sel.ValidFactors), order)
		for subset, ok := iter.Next(); ok; subset, ok = iter.Next() {
			factors := make([]core.FactorKey, len(subset))
			for i, idx := range subset {
				factors[i] = sel.ValidFactors[idx]
			}
			for _, r := range sel.ValidResponses {
				tasks = append(tasks, task{factors: factors, response: r})
			}
		}
	}

	slots := make([]interactionSlot, len(tasks))
	var wg sync.WaitGroup
	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()
			if err := e.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer e.sem.Release(1)

			e.safely(fmt.Sprintf("interaction %v on %s", tk.factors, tk.response), func() error {
				result, err := statsanova.Interaction(e.dist, points, tk.factors, tk.response)
				if err != nil {
					return err
				}
				slots[i] = interactionSlot{
					effect: anova.InteractionStatAnalysis{
						Factors:          tk.factors,
						ResponseVariable: tk.response,
						IsSignificant:    result.PValue < e.alpha,
						Significance: anova.SignificanceInfo{
							SumOfSquares:     result.InteractionSS,
							DegreesOfFreedom: result.InteractionDF,
							MeanSquare:       result.MSInteraction,
							FValue:           result.FValue,
							PValue:           result.PValue,
						},
						Meaningfulness: anova.ClassifyEtaSquared(result.PartialEtaSquared),
					},
					result: result,
					ok:     true,
				}
				return nil
			})
		}(i, tk)
	}
	wg.Wait()

	var kept []interactionSlot
	for _, slot := range slots {
		if slot.ok {
			kept = append(kept, slot)
		}
	}
	return kept
}

func (e *Engine) enhanceMainEffect(slot *mainEffectSlot) {
	means := e.comparator.LevelMeans(slot.oneWay.LevelStats)
	sort.SliceStable(means, func(i, j int) bool { return means[i].Mean > means[j].Mean })

	comparisons := e.comparator.MainEffectComparisons(slot.oneWay)
	description := describeMainEffect(
		slot.effect.Factor, slot.effect.ResponseVariable,
		slot.effect.Significance, slot.oneWay.DFWithin,
		slot.effect.Meaningfulness, means, comparisons,
	)

	slot.effect.Enhanced = &anova.EnhancedInfo{
		LevelMeans:          means,
		PairwiseComparisons: comparisons,
		Description:         description,
	}
}

func (e *Engine) enhanceInteraction(slot *interactionSlot) {
	means := e.comparator.CellMeans(slot.result.CellStats)
	sort.SliceStable(means, func(i, j int) bool { return means[i].Mean > means[j].Mean })

	comparisons := e.comparator.InteractionComparisons(slot.result)
	description := describeInteraction(
		slot.effect.Factors, slot.effect.ResponseVariable,
		slot.effect.Significance, slot.result.ResidualDF,
		slot.effect.Meaningfulness, means, comparisons,
	)

	slot.effect.Enhanced = &anova.EnhancedInfo{
		LevelMeans:          means,
		PairwiseComparisons: comparisons,
		Description:         description,
	}
}
