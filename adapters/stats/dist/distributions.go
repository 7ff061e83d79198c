package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatisticalDistributions provides unified access to the distributions the
// ANOVA engine needs. The primary path is gonum's distuv; every method has a
// documented conservative fallback so a distribution failure never propagates
// as an error — fallback p-values are less precise and lean toward 1.0.
type StatisticalDistributions struct{}

// New creates a new distributions utility
func New() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// FSurvival computes the right-tail probability P(F >= f) for an
// F-distribution with df1 and df2 degrees of freedom.
func (sd *StatisticalDistributions) FSurvival(f float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(f) {
		return 1.0
	}
	if f <= 0 {
		return 1.0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	p := 1 - fDist.CDF(f)
	if !math.IsNaN(p) && p >= 0 && p <= 1 {
		return p
	}

	return sd.fSurvivalFallback(f, df1, df2)
}

// fSurvivalFallback approximates the F right tail when the primary path
// produces an unusable value. First choice is the Wilson-Hilferty normal
// approximation; if that degenerates, a crude monotone heuristic keeps the
// p-value ordering intact. Both overestimate small tails, so callers get a
// conservative estimate rather than an exact value.
func (sd *StatisticalDistributions) fSurvivalFallback(f float64, df1, df2 int) float64 {
	d1, d2 := float64(df1), float64(df2)

	// Wilson-Hilferty: the cube root of a scaled F is approximately normal.
	x := math.Cbrt(f)
	num := x*(1-2/(9*d2)) - (1 - 2/(9*d1))
	den := math.Sqrt(2/(9*d1) + x*x*2/(9*d2))
	if den > 0 {
		z := num / den
		p := 1 - sd.NormalCDF(z)
		if !math.IsNaN(p) {
			return clampProbability(p)
		}
	}

	// Monotone heuristic of last resort: decreasing in f, always in (0, 1].
	return clampProbability(1 / (1 + f))
}

// TCDF computes the Student's t cumulative distribution function.
func (sd *StatisticalDistributions) TCDF(t float64, df int) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 0.5
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	p := tDist.CDF(t)
	if !math.IsNaN(p) && p >= 0 && p <= 1 {
		return p
	}

	// Normal fallback; tolerable above ~30 df, conservative below.
	return sd.NormalCDF(t)
}

// TTestPValue computes the two-tailed p-value for a t-statistic.
func (sd *StatisticalDistributions) TTestPValue(tStatistic float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	return clampProbability(2 * (1 - sd.TCDF(math.Abs(tStatistic), df)))
}

// TQuantile computes the Student's t inverse CDF (critical value) at p.
func (sd *StatisticalDistributions) TQuantile(p float64, df int) float64 {
	if p <= 0 || p >= 1 {
		return math.NaN()
	}
	if df <= 0 {
		return sd.NormalQuantile(p)
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	q := tDist.Quantile(p)
	if !math.IsNaN(q) && !math.IsInf(q, 0) {
		return q
	}

	// Normal fallback yields narrower critical values at low df; callers
	// treat the resulting intervals as approximate.
	return sd.NormalQuantile(p)
}

// NormalCDF computes the standard normal cumulative distribution function.
func (sd *StatisticalDistributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal inverse CDF.
func (sd *StatisticalDistributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) || p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
