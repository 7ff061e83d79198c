package analysis

import (
	"encoding/json"
	"math"
	"strconv"

	"goanova/domain/core"
	"goanova/domain/experiment"
)

// Reshape converts raw results into the flat data points all downstream
// computation consumes, keeping only valid factors and numeric response
// values. A point is dropped when it lacks a level for every valid factor or
// holds no numeric response at all. Pure and order-preserving.
func Reshape(results []experiment.Result, sel Selection) []experiment.FormattedDataPoint {
	points := make([]experiment.FormattedDataPoint, 0, len(results))

	for _, r := range results {
		point := experiment.FormattedDataPoint{
			Factors:           make(map[core.FactorKey]string),
			ResponseVariables: make(map[core.ResponseKey]float64),
		}

		for _, factor := range sel.ValidFactors {
			if sel.ModelAsFactor && factor == ModelFactorName {
				if r.Model != "" {
					point.Factors[factor] = r.Model.String()
				}
				continue
			}
			if level, ok := r.FactorLevels[factor]; ok && level != "" {
				point.Factors[factor] = level
			}
		}

		for _, response := range sel.ValidResponses {
			raw, ok := r.ResponseValues[response]
			if !ok {
				continue
			}
			if value, numeric := coerceNumeric(raw); numeric {
				point.ResponseVariables[response] = value
			}
		}

		if len(point.Factors) == 0 || len(point.ResponseVariables) == 0 {
			continue
		}
		points = append(points, point)
	}

	return points
}

// coerceNumeric extracts a usable float64 from a loosely-typed response
// value. NaN and infinities are rejected.
func coerceNumeric(raw interface{}) (float64, bool) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint:
		value = float64(v)
	case uint64:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
