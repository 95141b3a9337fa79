package kernel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"ontokern/internal/bseries"
	"ontokern/internal/domain"
	"ontokern/internal/grip"
	"ontokern/internal/model"
	"ontokern/internal/tree"
)

const (
	EngineVersion = "1.0.0"

	SchemaVersion = 1
	CodecVersion  = 1
)

var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrUnknownGoal     = errors.New("unknown optimization goal")
)

// Operator names a kernel composition operator.
type Operator string

const (
	OpChain    Operator = "chain"
	OpProduct  Operator = "product"
	OpQuotient Operator = "quotient"
)

// Generator assembles kernels from domain declarations. The clock is
// injectable so generated metadata is reproducible under test.
type Generator struct {
	Now       func() time.Time
	Optimizer grip.Options
}

func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

// GripProfile returns the initial grip profile for an optimization goal.
// An empty goal selects balanced.
func GripProfile(goal domain.Goal) (model.GripMetric, error) {
	var profile model.GripMetric
	switch goal {
	case domain.GoalSpeed:
		profile = model.GripMetric{Contact: 0.70, Coverage: 0.60, Efficiency: 1.00, Stability: 0.70}
	case domain.GoalAccuracy:
		profile = model.GripMetric{Contact: 1.00, Coverage: 0.95, Efficiency: 0.70, Stability: 0.85}
	case domain.GoalStability:
		profile = model.GripMetric{Contact: 0.80, Coverage: 0.80, Efficiency: 0.70, Stability: 1.00}
	case domain.GoalBalanced, "":
		profile = model.GripMetric{Contact: 0.85, Coverage: 0.85, Efficiency: 0.85, Stability: 0.85}
	default:
		return model.GripMetric{}, fmt.Errorf("%w: %s", ErrUnknownGoal, goal)
	}
	profile.Overall = profile.OverallScore()
	return profile, nil
}

// Generate validates the declaration, derives the initial expansion,
// refines its coefficients, and assembles an immutable kernel. An invalid
// declaration aborts before any partial kernel is built.
func (g *Generator) Generate(spec model.DomainSpec, goal domain.Goal) (model.Kernel, error) {
	if err := domain.Validate(spec); err != nil {
		return model.Kernel{}, err
	}
	profile, err := GripProfile(goal)
	if err != nil {
		return model.Kernel{}, err
	}

	expansion, err := bseries.GenerateExpansion(spec, profile)
	if err != nil {
		return model.Kernel{}, err
	}

	result := grip.Optimize(coefficientsOf(expansion), spec, g.Optimizer)
	for i := range expansion.Terms {
		expansion.Terms[i].Coefficient = result.Coefficients[i]
	}
	expansion.Grip = result.Grip

	return g.assemble(expansion, result.Iterations), nil
}

// GenerateFromPreset generates a kernel from the fixed preset catalog.
func (g *Generator) GenerateFromPreset(domainType model.DomainType) (model.Kernel, error) {
	preset, err := domain.PresetFor(domainType)
	if err != nil {
		return model.Kernel{}, err
	}
	return g.Generate(preset.Spec, preset.Goal)
}

// ApplyOperator composes two kernels. Chain and product delegate to the
// B-series engine's label-matched composition. Quotient combines
// coefficients positionally as (l-r)/(1+|r|) over a re-enumerated forest
// with its own grip rule; the asymmetry with chain/product is preserved
// as-is, not reconciled.
func (g *Generator) ApplyOperator(op Operator, left, right model.Kernel) (model.Kernel, error) {
	switch op {
	case OpChain:
		expansion, err := bseries.ChainCompose(left.Expansion, right.Expansion)
		if err != nil {
			return model.Kernel{}, err
		}
		return g.assemble(expansion, 0), nil
	case OpProduct:
		expansion, err := bseries.ProductCompose(left.Expansion, right.Expansion)
		if err != nil {
			return model.Kernel{}, err
		}
		return g.assemble(expansion, 0), nil
	case OpQuotient:
		expansion, err := quotientCompose(left, right)
		if err != nil {
			return model.Kernel{}, err
		}
		return g.assemble(expansion, 0), nil
	default:
		return model.Kernel{}, fmt.Errorf("%w: %s", ErrUnknownOperator, op)
	}
}

func quotientCompose(left, right model.Kernel) (model.Expansion, error) {
	order := left.Order
	if right.Order > order {
		order = right.Order
	}
	spec := left.Domain
	spec.Order = order

	quotient := quotientGrip(left.Grip, right.Grip)
	var terms []model.ExpansionTerm
	position := 0
	for p := 1; p <= order; p++ {
		forest, err := tree.GenerateDomainSpecific(spec, p)
		if err != nil {
			return model.Expansion{}, err
		}
		for _, t := range forest {
			l := coefficientAt(left.Coefficients, position)
			r := coefficientAt(right.Coefficients, position)
			terms = append(terms, model.ExpansionTerm{
				Tree:        t,
				Coefficient: (l - r) / (1 + math.Abs(r)),
			})
			position++
		}
	}

	return model.Expansion{
		Domain:           spec,
		ConvergenceOrder: order,
		Terms:            terms,
		Grip:             quotient,
	}, nil
}

func coefficientAt(coeffs []float64, i int) float64 {
	if i < 0 || i >= len(coeffs) {
		return 0
	}
	return coeffs[i]
}

// quotientGrip averages contact and efficiency and keeps the weaker
// coverage and stability. Deliberately distinct from the chain and product
// rules.
func quotientGrip(a, b model.GripMetric) model.GripMetric {
	out := model.GripMetric{
		Contact:    (a.Contact + b.Contact) / 2,
		Coverage:   math.Min(a.Coverage, b.Coverage),
		Efficiency: (a.Efficiency + b.Efficiency) / 2,
		Stability:  math.Min(a.Stability, b.Stability),
	}
	out.Overall = out.OverallScore()
	return out
}

// Verify reports whether a kernel is valid: order conditions hold, grip
// clears the verification threshold, and the domain declaration is valid.
func Verify(k model.Kernel) bool {
	if !bseries.VerifyOrderConditions(k.Expansion) {
		return false
	}
	if !grip.IsSufficient(k.Grip, grip.VerificationThreshold) {
		return false
	}
	return domain.IsValid(k.Domain)
}

func (g *Generator) assemble(expansion model.Expansion, optimizerIterations int) model.Kernel {
	trees := make([]model.Tree, len(expansion.Terms))
	coeffs := make([]float64, len(expansion.Terms))
	for i, term := range expansion.Terms {
		trees[i] = term.Tree
		coeffs[i] = term.Coefficient
	}
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	return model.Kernel{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: SchemaVersion,
			CodecVersion:  CodecVersion,
		},
		ID:                  uuid.New().String(),
		Domain:              expansion.Domain,
		Order:               expansion.ConvergenceOrder,
		Trees:               trees,
		Coefficients:        coeffs,
		Grip:                expansion.Grip,
		Expansion:           expansion,
		GeneratedAt:         now,
		EngineVersion:       EngineVersion,
		OptimizerIterations: optimizerIterations,
	}
}

func coefficientsOf(e model.Expansion) []float64 {
	out := make([]float64, len(e.Terms))
	for i, term := range e.Terms {
		out[i] = term.Coefficient
	}
	return out
}
