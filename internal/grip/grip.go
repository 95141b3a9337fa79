package grip

import (
	"math"

	"ontokern/internal/model"
)

const negligible = 1e-10

// DefaultThreshold gates ad hoc sufficiency checks.
const DefaultThreshold = 0.8

// VerificationThreshold gates kernel verification.
const VerificationThreshold = 0.6

// Measure scores a coefficient vector against the domain's expected
// pattern. Degenerate inputs (empty or all-zero vectors) score 0 on the
// affected components instead of failing; callers must not assume the
// metrics are always well-conditioned.
func Measure(coeffs []float64, spec model.DomainSpec) model.GripMetric {
	out := model.GripMetric{
		Contact:    contact(coeffs, spec),
		Coverage:   coverage(coeffs),
		Efficiency: efficiency(coeffs),
		Stability:  stability(coeffs),
	}
	out.Overall = out.OverallScore()
	return out
}

// IsSufficient reports whether the overall grip clears the threshold.
func IsSufficient(g model.GripMetric, threshold float64) bool {
	return g.Overall >= threshold
}

// contact is the absolute cosine similarity between the coefficients and
// the domain's index-wise weight vector.
func contact(coeffs []float64, spec model.DomainSpec) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	dot := 0.0
	coeffNorm := 0.0
	weightNorm := 0.0
	for i, c := range coeffs {
		w := domainWeight(spec, i)
		dot += c * w
		coeffNorm += c * c
		weightNorm += w * w
	}
	if coeffNorm <= 0 || weightNorm <= 0 {
		return 0
	}
	return math.Abs(dot / (math.Sqrt(coeffNorm) * math.Sqrt(weightNorm)))
}

// domainWeight is the expected coefficient pattern for index i.
func domainWeight(spec model.DomainSpec, i int) float64 {
	switch spec.Type {
	case model.DomainPhysics:
		if i%2 == 0 {
			return 1 / float64(i+1)
		}
		return -1 / float64(i+1)
	case model.DomainChemistry:
		return math.Exp(-float64(i) / 2)
	case model.DomainBiology:
		return 1 / (1 + float64(i*i))
	case model.DomainComputing:
		return math.Pow(2, -float64(i))
	case model.DomainConsciousness:
		order := spec.Order
		if order < 1 {
			order = 1
		}
		return math.Sin(float64(i) * math.Pi / float64(order))
	default:
		return 1 / float64(i+1)
	}
}

func coverage(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	active := 0
	for _, c := range coeffs {
		if math.Abs(c) > negligible {
			active++
		}
	}
	return float64(active) / float64(len(coeffs))
}

func efficiency(coeffs []float64) float64 {
	sparsity := 1 - coverage(coeffs)
	norm := 0.0
	for _, c := range coeffs {
		norm += c * c
	}
	return 0.5*sparsity + 0.5/(1+math.Sqrt(norm))
}

func stability(coeffs []float64) float64 {
	maxAbs := 0.0
	mean := 0.0
	for _, c := range coeffs {
		if a := math.Abs(c); a > maxAbs {
			maxAbs = a
		}
		mean += c
	}
	variance := 0.0
	if len(coeffs) > 0 {
		mean /= float64(len(coeffs))
		for _, c := range coeffs {
			variance += (c - mean) * (c - mean)
		}
		variance /= float64(len(coeffs))
	}
	return (1/(1+maxAbs) + 1/(1+variance)) / 2
}
