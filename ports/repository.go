package ports

import (
	"context"

	"goanova/domain/anova"
	"goanova/domain/core"
)

// AnalysisRepository persists completed analyses for later retrieval by
// report/chart collaborators.
type AnalysisRepository interface {
	Save(ctx context.Context, record *anova.AnalysisRecord) error
	Get(ctx context.Context, id core.AnalysisID) (*anova.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]anova.AnalysisRecord, error)
}
