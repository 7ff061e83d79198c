// Package testkit generates deterministic synthetic full-factorial experiment
// data with known injected effects, for tests and the demo command.
package testkit

import (
	"math/rand"

	"goanova/domain/core"
	"goanova/domain/experiment"
)

// GeneratorConfig configures the factorial data generator.
type GeneratorConfig struct {
	ReplicatesPerCell int     `json:"replicates_per_cell"`
	Noise             float64 `json:"noise"` // stddev of gaussian noise on responses
	Seed              int64   `json:"seed"`
}

// DefaultGeneratorConfig returns sensible defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ReplicatesPerCell: 5,
		Noise:             2.0,
		Seed:              42,
	}
}

// FactorialGenerator produces a synthetic LLM prompt experiment:
// prompt_style x verbosity, run on two models, measuring accuracy and
// latency. Accuracy carries a strong prompt_style main effect and a
// prompt_style x model interaction; latency carries a verbosity effect.
type FactorialGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewFactorialGenerator creates a generator seeded from config.
func NewFactorialGenerator(config GeneratorConfig) *FactorialGenerator {
	return &FactorialGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	promptStyles = []string{"concise", "detailed", "chain_of_thought"}
	verbosities  = []string{"low", "high"}
	models       = []core.ModelID{"alpha-large", "beta-medium"}
)

// Experiment returns the experiment configuration matching the generated data.
func (g *FactorialGenerator) Experiment() *experiment.Config {
	return &experiment.Config{
		Name: "synthetic prompt experiment",
		Factors: []experiment.FactorSpec{
			{Name: "prompt_style", Levels: promptStyles},
			{Name: "verbosity", Levels: verbosities},
		},
		Responses: []experiment.ResponseSpec{
			{Name: "accuracy", Numeric: true},
			{Name: "latency_ms", Numeric: true},
			{Name: "notes", Numeric: false},
		},
		Models: models,
	}
}

// GenerateResults produces the full factorial crossing with the configured
// replicates per cell. Deterministic for a given seed.
func (g *FactorialGenerator) GenerateResults() []experiment.Result {
	var results []experiment.Result
	for _, style := range promptStyles {
		for _, verbosity := range verbosities {
			for _, model := range models {
				for rep := 0; rep < g.config.ReplicatesPerCell; rep++ {
					results = append(results, experiment.Result{
						Model: model,
						FactorLevels: map[core.FactorKey]string{
							"prompt_style": style,
							"verbosity":    verbosity,
						},
						ResponseValues: map[core.ResponseKey]interface{}{
							"accuracy":   g.accuracy(style, verbosity, model),
							"latency_ms": g.latency(style, verbosity),
							"notes":      "synthetic trial",
						},
					})
				}
			}
		}
	}
	return results
}

func (g *FactorialGenerator) accuracy(style, verbosity string, model core.ModelID) float64 {
	base := 60.0

	// Strong prompt_style main effect.
	switch style {
	case "detailed":
		base += 8
	case "chain_of_thought":
		base += 15
	}

	// Weak verbosity effect.
	if verbosity == "high" {
		base += 1.5
	}

	// prompt_style x model interaction: beta-medium gains little from CoT.
	if style == "chain_of_thought" && model == "beta-medium" {
		base -= 10
	}

	return base + g.rng.NormFloat64()*g.config.Noise
}

func (g *FactorialGenerator) latency(style, verbosity string) float64 {
	base := 400.0
	if style == "chain_of_thought" {
		base += 250
	}
	if verbosity == "high" {
		base += 120
	}
	return base + g.rng.NormFloat64()*g.config.Noise*10
}
