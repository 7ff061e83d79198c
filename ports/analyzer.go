package ports

import (
	"context"

	"goanova/domain/anova"
	"goanova/domain/experiment"
)

// StatAnalyzer performs the full statistical analysis of an experiment's
// results. Implementations must be pure: identical input yields identical
// output, and one failing effect never aborts the run.
type StatAnalyzer interface {
	Analyze(ctx context.Context, cfg *experiment.Config, results []experiment.Result) (*anova.StatAnalysis, error)
}
