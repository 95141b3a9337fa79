package bseries

import (
	"math"

	"ontokern/internal/model"
	"ontokern/internal/tree"
)

const orderConditionTolerance = 1e-10

// GenerateExpansion builds the B-series expansion for the domain: trees of
// every order up to the domain's order, each carrying the simplified
// single-formula coefficient derived from the tableau.
func GenerateExpansion(spec model.DomainSpec, grip model.GripMetric) (model.Expansion, error) {
	tableau, err := TableauFor(spec.Order)
	if err != nil {
		return model.Expansion{}, err
	}

	var terms []model.ExpansionTerm
	for order := 1; order <= spec.Order; order++ {
		forest, err := tree.GenerateDomainSpecific(spec, order)
		if err != nil {
			return model.Expansion{}, err
		}
		for _, t := range forest {
			terms = append(terms, model.ExpansionTerm{
				Tree:        t,
				Coefficient: treeCoefficient(tableau, t),
				Weight:      termWeight(grip, t),
			})
		}
	}

	return model.Expansion{
		Domain:           spec,
		ConvergenceOrder: spec.Order,
		Terms:            terms,
		Grip:             grip,
	}, nil
}

// treeCoefficient is the simplified per-tree coefficient
// (Σ b_i c_i^(order-1)) / (symmetryFactor · order). It is deliberately not
// the exact per-node elementary weight of B-series theory.
func treeCoefficient(tableau model.ButcherTableau, t model.Tree) float64 {
	order := t.Order()
	weight := 0.0
	for i, b := range tableau.B {
		weight += b * math.Pow(tableau.C[i], float64(order-1))
	}
	return weight / (float64(tree.SymmetryFactor(t)) * float64(order))
}

// termWeight scores one tree against the grip profile using depth and
// balance ratios.
func termWeight(grip model.GripMetric, t model.Tree) float64 {
	order := float64(t.Order())
	depthRatio := float64(tree.Depth(t)) / order
	balance := 1.0
	if depths := tree.ChildDepths(t); len(depths) > 0 {
		minDepth, maxDepth := depths[0], depths[0]
		for _, d := range depths[1:] {
			if d < minDepth {
				minDepth = d
			}
			if d > maxDepth {
				maxDepth = d
			}
		}
		balance = float64(minDepth) / float64(maxDepth)
	}
	return (grip.Contact*depthRatio + grip.Coverage*balance + grip.Efficiency/order + grip.Stability*0.8) / 4
}

// ChainCompose composes two expansions with the chain rule: term
// coefficients are matched by label and multiplied.
func ChainCompose(f, g model.Expansion) (model.Expansion, error) {
	grip := chainGrip(f.Grip, g.Grip)
	return compose(f, g, grip, func(cf, cg float64) float64 { return cf * cg })
}

// ProductCompose composes two expansions with the product rule: term
// coefficients are matched by label and added.
func ProductCompose(f, g model.Expansion) (model.Expansion, error) {
	grip := productGrip(f.Grip, g.Grip)
	return compose(f, g, grip, func(cf, cg float64) float64 { return cf + cg })
}

func compose(f, g model.Expansion, grip model.GripMetric, combine func(cf, cg float64) float64) (model.Expansion, error) {
	order := f.ConvergenceOrder
	if g.ConvergenceOrder > order {
		order = g.ConvergenceOrder
	}
	spec := f.Domain
	spec.Order = order

	fCoeffs := coefficientsByLabel(f)
	gCoeffs := coefficientsByLabel(g)

	var terms []model.ExpansionTerm
	for p := 1; p <= order; p++ {
		forest, err := tree.GenerateDomainSpecific(spec, p)
		if err != nil {
			return model.Expansion{}, err
		}
		for _, t := range forest {
			label := t.Label()
			terms = append(terms, model.ExpansionTerm{
				Tree:        t,
				Coefficient: combine(fCoeffs[label], gCoeffs[label]),
				Weight:      termWeight(grip, t),
			})
		}
	}

	return model.Expansion{
		Domain:           spec,
		ConvergenceOrder: order,
		Terms:            terms,
		Grip:             grip,
	}, nil
}

func coefficientsByLabel(e model.Expansion) map[string]float64 {
	out := make(map[string]float64, len(e.Terms))
	for _, term := range e.Terms {
		out[term.Tree.Label()] = term.Coefficient
	}
	return out
}

// chainGrip averages contact, coverage, and efficiency and takes the
// minimum stability.
func chainGrip(a, b model.GripMetric) model.GripMetric {
	out := model.GripMetric{
		Contact:    (a.Contact + b.Contact) / 2,
		Coverage:   (a.Coverage + b.Coverage) / 2,
		Efficiency: (a.Efficiency + b.Efficiency) / 2,
		Stability:  math.Min(a.Stability, b.Stability),
	}
	out.Overall = out.OverallScore()
	return out
}

// productGrip takes the stronger contact, averages coverage and efficiency,
// and keeps the weaker stability.
func productGrip(a, b model.GripMetric) model.GripMetric {
	out := model.GripMetric{
		Contact:    math.Max(a.Contact, b.Contact),
		Coverage:   (a.Coverage + b.Coverage) / 2,
		Efficiency: (a.Efficiency + b.Efficiency) / 2,
		Stability:  math.Min(a.Stability, b.Stability),
	}
	out.Overall = out.OverallScore()
	return out
}

// OrderConditionSum adds up the coefficients of all terms of the given
// order.
func OrderConditionSum(e model.Expansion, order int) float64 {
	sum := 0.0
	for _, term := range e.Terms {
		if term.Tree.Order() == order {
			sum += term.Coefficient
		}
	}
	return sum
}

// VerifyOrderConditions checks that for every order p up to the convergence
// order the coefficient sum equals 1/p! within 1e-10.
func VerifyOrderConditions(e model.Expansion) bool {
	factorial := 1.0
	for p := 1; p <= e.ConvergenceOrder; p++ {
		factorial *= float64(p)
		if math.Abs(OrderConditionSum(e, p)-1/factorial) > orderConditionTolerance {
			return false
		}
	}
	return true
}

// RungeKuttaGrip is the fixed grip profile of the Runge-Kutta preset.
func RungeKuttaGrip() model.GripMetric {
	return model.GripMetric{
		Contact:    1.0,
		Coverage:   1.0,
		Efficiency: 0.9,
		Stability:  1.0,
		Overall:    0.975,
	}
}

// GenerateRungeKutta builds the computing-domain Runge-Kutta expansion of
// the given order with the fixed grip profile.
func GenerateRungeKutta(order int) (model.Expansion, error) {
	spec := model.DomainSpec{
		Type:     model.DomainComputing,
		Order:    order,
		TreeType: "recursion",
		Symmetry: "time-reversible",
	}
	return GenerateExpansion(spec, RungeKuttaGrip())
}
