package ports

import (
	"goanova/domain/experiment"
)

// ResultsReader loads raw experiment results from an external source
// (spreadsheet, file, collaborator API) for a given experiment config.
type ResultsReader interface {
	Read(cfg *experiment.Config) ([]experiment.Result, error)
}
