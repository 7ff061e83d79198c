package experiment

import (
	"goanova/domain/core"
)

// FactorSpec declares one categorical factor and its configured levels.
// Levels listed here may or may not be observed; the selector only trusts
// levels that actually appear in results.
type FactorSpec struct {
	Name   core.FactorKey `json:"name"`
	Levels []string       `json:"levels"`
}

// ResponseSpec declares one response variable.
type ResponseSpec struct {
	Name    core.ResponseKey `json:"name"`
	Numeric bool             `json:"numeric"`
}

// Config describes the full-factorial experiment as designed: factors with
// levels, response variables, and the models/units that participated.
// Declaration order here fixes the iteration order of the whole analysis.
type Config struct {
	Name      string         `json:"name"`
	Factors   []FactorSpec   `json:"factors"`
	Responses []ResponseSpec `json:"responses"`
	Models    []core.ModelID `json:"models"`
}

// FactorNames returns factor keys in declaration order.
func (c *Config) FactorNames() []core.FactorKey {
	names := make([]core.FactorKey, len(c.Factors))
	for i, f := range c.Factors {
		names[i] = f.Name
	}
	return names
}

// HasFactor reports whether the config declares a factor with the given name.
func (c *Config) HasFactor(name core.FactorKey) bool {
	for _, f := range c.Factors {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Result is one trial of the experiment: the model that produced it, the
// realized level of every factor, and the raw response values. Response
// values are loosely typed; non-numeric entries are ignored downstream.
// Results are immutable once produced by the experiment-execution collaborator.
type Result struct {
	Model          core.ModelID                     `json:"model"`
	FactorLevels   map[core.FactorKey]string        `json:"factor_levels"`
	ResponseValues map[core.ResponseKey]interface{} `json:"response_values"`
}

// FormattedDataPoint is the engine's internal representation of one trial:
// only valid factors and numeric response values survive reshaping.
// Created fresh per analysis run and discarded after.
type FormattedDataPoint struct {
	Factors           map[core.FactorKey]string    `json:"factors"`
	ResponseVariables map[core.ResponseKey]float64 `json:"response_variables"`
}

// Level returns the point's level for a factor, with presence flag.
func (p FormattedDataPoint) Level(factor core.FactorKey) (string, bool) {
	level, ok := p.Factors[factor]
	return level, ok
}

// Response returns the point's value for a response variable, with presence flag.
func (p FormattedDataPoint) Response(response core.ResponseKey) (float64, bool) {
	value, ok := p.ResponseVariables[response]
	return value, ok
}
