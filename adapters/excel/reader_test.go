package excel

import (
	"os"
	"path/filepath"
	"testing"

	"goanova/domain/experiment"
)

func sampleConfig() *experiment.Config {
	return &experiment.Config{
		Name: "csv-roundtrip",
		Factors: []experiment.FactorSpec{
			{Name: "prompt_style", Levels: []string{"concise", "detailed"}},
		},
		Responses: []experiment.ResponseSpec{
			{Name: "accuracy", Numeric: true},
		},
	}
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestRead_CSV(t *testing.T) {
	path := writeTempCSV(t,
		"Prompt_Style,Accuracy,model,ignored\n"+
			"concise,0.82,alpha,junk\n"+
			"detailed,0.91,beta,junk\n"+
			"detailed,,beta,junk\n")

	results, err := NewResultsReader(path).Read(sampleConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(results))
	}

	first := results[0]
	if first.FactorLevels["prompt_style"] != "concise" {
		t.Errorf("factor = %q, header matching should be case-insensitive", first.FactorLevels["prompt_style"])
	}
	if first.ResponseValues["accuracy"] != "0.82" {
		t.Errorf("response = %v, cells stay strings for downstream coercion", first.ResponseValues["accuracy"])
	}
	if first.Model.String() != "alpha" {
		t.Errorf("model = %q, expected alpha", first.Model)
	}

	// Empty cells are simply absent.
	if _, ok := results[2].ResponseValues["accuracy"]; ok {
		t.Error("an empty response cell should not produce a value")
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewResultsReader("/nonexistent/results.csv").Read(sampleConfig())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRead_NoMatchingColumns(t *testing.T) {
	path := writeTempCSV(t, "foo,bar\n1,2\n")
	if _, err := NewResultsReader(path).Read(sampleConfig()); err == nil {
		t.Fatal("expected an error when no header matches the config")
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "prompt_style,accuracy\n")
	if _, err := NewResultsReader(path).Read(sampleConfig()); err == nil {
		t.Fatal("expected an error for a file without data rows")
	}
}

func TestNewResultsReader_TypeDetection(t *testing.T) {
	if r := NewResultsReader("data.CSV"); r.fileType != "csv" {
		t.Errorf("fileType = %q for .CSV", r.fileType)
	}
	if r := NewResultsReader("data.xlsx"); r.fileType != "xlsx" {
		t.Errorf("fileType = %q for .xlsx", r.fileType)
	}
}
