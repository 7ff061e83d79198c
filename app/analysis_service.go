package app

import (
	"context"
	"time"

	"goanova/domain/anova"
	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal"
	"goanova/internal/errors"
	"goanova/ports"
)

// AnalysisService is the application-layer façade around the statistics
// engine: it stamps each run with an ID and runtime and optionally persists
// the outcome.
type AnalysisService struct {
	analyzer ports.StatAnalyzer
	repo     ports.AnalysisRepository // nil disables persistence
	log      *internal.Logger
}

// NewAnalysisService creates an analysis service. repo may be nil.
func NewAnalysisService(analyzer ports.StatAnalyzer, repo ports.AnalysisRepository, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{analyzer: analyzer, repo: repo, log: logger}
}

// Run executes one complete analysis and returns its record.
func (s *AnalysisService) Run(ctx context.Context, cfg *experiment.Config, results []experiment.Result) (*anova.AnalysisRecord, error) {
	start := time.Now()

	result, err := s.analyzer.Analyze(ctx, cfg, results)
	if err != nil {
		return nil, errors.Wrap(err, "analysis failed")
	}

	record := &anova.AnalysisRecord{
		ID:             core.AnalysisID(core.NewID()),
		ExperimentName: cfg.Name,
		RuntimeMs:      time.Since(start).Milliseconds(),
		CreatedAt:      core.Now(),
		Result:         result,
	}

	s.log.Info("analysis %s of %q: %d main effects, %d interactions, %d residuals in %dms",
		record.ID, cfg.Name, len(result.MainEffects), len(result.Interactions), len(result.Residuals), record.RuntimeMs)

	if s.repo != nil {
		if err := s.repo.Save(ctx, record); err != nil {
			return nil, errors.Wrap(err, "failed to persist analysis")
		}
	}

	return record, nil
}

// Get retrieves a previously persisted analysis.
func (s *AnalysisService) Get(ctx context.Context, id core.AnalysisID) (*anova.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, errors.NotFound("analysis repository")
	}
	return s.repo.Get(ctx, id)
}

// List returns the most recent persisted analyses.
func (s *AnalysisService) List(ctx context.Context, limit int) ([]anova.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, errors.NotFound("analysis repository")
	}
	return s.repo.List(ctx, limit)
}
