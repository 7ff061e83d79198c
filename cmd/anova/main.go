package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goanova/adapters/api"
	"goanova/adapters/excel"
	"goanova/adapters/postgres"
	"goanova/app"
	"goanova/domain/experiment"
	"goanova/internal"
	"goanova/internal/analysis"
	"goanova/internal/config"
	"goanova/internal/testkit"
	"goanova/ports"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "anova",
		Short: "ANOVA-based statistical analysis of full-factorial experiments",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var configPath string
	var resultsPath string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze experiment results from JSON or spreadsheet files",
		Long: `Analyze full-factorial experiment results.

The experiment config is always JSON. Results may be a JSON array, an .xlsx
workbook, or a .csv file with one column per factor/response and an optional
"model" column.

Example: anova analyze --config experiment.json --results trials.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadExperimentConfig(configPath)
			if err != nil {
				return err
			}

			results, err := loadResults(cfg, resultsPath)
			if err != nil {
				return err
			}

			engine := analysis.NewEngine(analysis.Options{Alpha: alpha})
			service := app.NewAnalysisService(engine, nil, internal.DefaultLogger)

			record, err := service.Run(context.Background(), cfg, results)
			if err != nil {
				return err
			}
			return printJSON(record)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to experiment config JSON (required)")
	cmd.Flags().StringVar(&resultsPath, "results", "", "path to results file: .json, .xlsx or .csv (required)")
	cmd.Flags().Float64Var(&alpha, "alpha", analysis.DefaultAlpha, "significance level")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := internal.DefaultLogger
			engine := analysis.NewEngine(analysis.Options{
				Alpha:          cfg.Analysis.SignificanceLevel,
				MaxConcurrency: cfg.Analysis.MaxConcurrency,
				Logger:         logger,
			})

			var repo ports.AnalysisRepository
			if cfg.Database.URL != "" {
				db, err := postgres.Connect(cfg.Database.URL)
				if err != nil {
					return err
				}
				if err := postgres.EnsureSchema(cmd.Context(), db); err != nil {
					return err
				}
				repo = postgres.NewAnalysisRepository(db)
				logger.Info("analysis persistence enabled")
			} else {
				logger.Info("DATABASE_URL not set; analyses are not persisted")
			}

			service := app.NewAnalysisService(engine, repo, logger)
			return api.NewServer(service, logger).ListenAndServe(cfg.Server.Port)
		},
	}
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var replicates int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyze a synthetic experiment with known injected effects",
		RunE: func(cmd *cobra.Command, args []string) error {
			genCfg := testkit.DefaultGeneratorConfig()
			genCfg.Seed = seed
			if replicates > 0 {
				genCfg.ReplicatesPerCell = replicates
			}

			gen := testkit.NewFactorialGenerator(genCfg)
			engine := analysis.NewEngine(analysis.Options{})
			service := app.NewAnalysisService(engine, nil, internal.DefaultLogger)

			record, err := service.Run(context.Background(), gen.Experiment(), gen.GenerateResults())
			if err != nil {
				return err
			}
			return printJSON(record)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	cmd.Flags().IntVar(&replicates, "replicates", 0, "replicates per cell (default 5)")

	return cmd
}

func loadExperimentConfig(path string) (*experiment.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg experiment.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func loadResults(cfg *experiment.Config, path string) ([]experiment.Result, error) {
	switch {
	case strings.EqualFold(filepath.Ext(path), ".json"):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read results: %w", err)
		}
		var results []experiment.Result
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse results: %w", err)
		}
		return results, nil
	default:
		return excel.NewResultsReader(path).Read(cfg)
	}
}

func printJSON(payload interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
