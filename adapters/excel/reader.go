// Package excel reads experiment results from spreadsheet files. Columns are
// matched by header against the experiment config: one column per factor, one
// per response variable, plus an optional "model" column.
package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"goanova/domain/core"
	"goanova/domain/experiment"
	"goanova/internal/errors"
)

// modelColumn is the header under which model/unit identity is read.
const modelColumn = "model"

// ResultsReader handles reading Excel and CSV result files
type ResultsReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewResultsReader creates a reader that handles both Excel and CSV files
func NewResultsReader(filePath string) *ResultsReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &ResultsReader{filePath: filePath, fileType: fileType}
}

// Read loads all result rows for the given experiment config.
func (r *ResultsReader) Read(cfg *experiment.Config) ([]experiment.Result, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput("results file not found: " + r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("results file has no data rows")
	}

	return buildResults(cfg, rows)
}

func (r *ResultsReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows tolerated
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV file")
	}
	return rows, nil
}

func (r *ResultsReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read Excel rows")
	}
	return rows, nil
}

// buildResults maps header-addressed cells onto experiment results. Factor
// and response columns are matched case-insensitively against the config;
// unknown columns are ignored.
func buildResults(cfg *experiment.Config, rows [][]string) ([]experiment.Result, error) {
	header := rows[0]

	factorCols := make(map[int]core.FactorKey)
	responseCols := make(map[int]core.ResponseKey)
	modelCol := -1

	for i, name := range header {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, modelColumn) {
			modelCol = i
			continue
		}
		for _, f := range cfg.Factors {
			if strings.EqualFold(name, f.Name.String()) {
				factorCols[i] = f.Name
			}
		}
		for _, resp := range cfg.Responses {
			if strings.EqualFold(name, resp.Name.String()) {
				responseCols[i] = resp.Name
			}
		}
	}

	if len(factorCols) == 0 && len(responseCols) == 0 {
		return nil, errors.InvalidInput("no header column matches the experiment config")
	}

	results := make([]experiment.Result, 0, len(rows)-1)
	for _, row := range rows[1:] {
		result := experiment.Result{
			FactorLevels:   make(map[core.FactorKey]string),
			ResponseValues: make(map[core.ResponseKey]interface{}),
		}
		for col, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if col == modelCol {
				result.Model = core.ModelID(cell)
				continue
			}
			if factor, ok := factorCols[col]; ok {
				result.FactorLevels[factor] = cell
				continue
			}
			if response, ok := responseCols[col]; ok {
				// Kept as string; the reshaper coerces numerics.
				result.ResponseValues[response] = cell
			}
		}
		if len(result.FactorLevels) == 0 && len(result.ResponseValues) == 0 {
			continue
		}
		results = append(results, result)
	}

	return results, nil
}
