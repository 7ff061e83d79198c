package analysis

import (
	"goanova/domain/core"
	"goanova/domain/experiment"
)

// ModelFactorName is the factor name under which model/unit identity is
// analyzed when more than one distinct model produced results. A
// user-declared factor of the same name takes precedence.
const ModelFactorName core.FactorKey = "model"

// Selection is the outcome of factor/response validation: which factors and
// response variables the analysis will actually use, plus the observed levels
// per factor. Ordering follows the experiment config's declaration order.
type Selection struct {
	ValidFactors   []core.FactorKey
	FactorLevels   map[core.FactorKey][]string
	ValidResponses []core.ResponseKey
	// ModelAsFactor is true when model identity was added as a factor.
	ModelAsFactor bool
}

// SelectFactorsAndResponses determines which factors have at least two
// observed levels and which response variables hold at least one numeric
// value. Configured levels with zero observed trials do not count.
func SelectFactorsAndResponses(cfg *experiment.Config, results []experiment.Result) Selection {
	sel := Selection{FactorLevels: make(map[core.FactorKey][]string)}

	for _, factor := range cfg.Factors {
		levels := observedFactorLevels(results, factor.Name)
		if len(levels) >= 2 {
			sel.ValidFactors = append(sel.ValidFactors, factor.Name)
			sel.FactorLevels[factor.Name] = levels
		}
	}

	// Model identity becomes a factor when more than one distinct model ran
	// trials, unless the config already declares a factor with that name.
	if !cfg.HasFactor(ModelFactorName) {
		models := observedModels(results)
		if len(models) >= 2 {
			sel.ValidFactors = append(sel.ValidFactors, ModelFactorName)
			sel.FactorLevels[ModelFactorName] = models
			sel.ModelAsFactor = true
		}
	}

	for _, response := range cfg.Responses {
		if !response.Numeric {
			continue
		}
		if hasNumericValue(results, response.Name) {
			sel.ValidResponses = append(sel.ValidResponses, response.Name)
		}
	}

	return sel
}

// Empty reports whether the selection leaves nothing to analyze.
func (s Selection) Empty() bool {
	return len(s.ValidFactors) == 0 || len(s.ValidResponses) == 0
}

func observedFactorLevels(results []experiment.Result, factor core.FactorKey) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, r := range results {
		level, ok := r.FactorLevels[factor]
		if !ok || level == "" {
			continue
		}
		if !seen[level] {
			seen[level] = true
			levels = append(levels, level)
		}
	}
	return levels
}

func observedModels(results []experiment.Result) []string {
	seen := make(map[string]bool)
	var models []string
	for _, r := range results {
		if r.Model == "" {
			continue
		}
		id := r.Model.String()
		if !seen[id] {
			seen[id] = true
			models = append(models, id)
		}
	}
	return models
}

func hasNumericValue(results []experiment.Result, response core.ResponseKey) bool {
	for _, r := range results {
		if raw, ok := r.ResponseValues[response]; ok {
			if _, numeric := coerceNumeric(raw); numeric {
				return true
			}
		}
	}
	return false
}
