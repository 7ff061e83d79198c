package anova

import (
	"goanova/domain/core"
)

// AnalysisRecord wraps one analysis run with its identity and provenance,
// as persisted and served to report collaborators.
type AnalysisRecord struct {
	ID             core.AnalysisID `json:"id"`
	ExperimentName string          `json:"experiment_name"`
	RuntimeMs      int64           `json:"runtime_ms"`
	CreatedAt      core.Timestamp  `json:"created_at"`
	Result         *StatAnalysis   `json:"result"`
}
