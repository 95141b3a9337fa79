package onto

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"ontokern/internal/grip"
	"ontokern/internal/kernel"
	"ontokern/internal/model"
)

var (
	ErrRandRequired      = errors.New("random source is required")
	ErrGeneratorRequired = errors.New("kernel generator is required")
	ErrUnknownMethod     = errors.New("unknown reproduction method")
	ErrNoCoefficients    = errors.New("kernel has no coefficients")
)

// Method names a reproduction strategy.
type Method string

const (
	MethodCrossover Method = "crossover"
	MethodMutation  Method = "mutation"
	MethodCloning   Method = "cloning"
)

// Engine drives the developmental lifecycle of kernels: self-generation,
// self-optimization, and reproduction. All randomness flows through the
// injected source so runs replay under test. The session, when set, records
// every operation and ancestry edge; a nil session disables recording.
type Engine struct {
	Rand      *rand.Rand
	Generator *kernel.Generator
	Session   *EvolutionSession
}

func NewEngine(rng *rand.Rand, gen *kernel.Generator) *Engine {
	return &Engine{Rand: rng, Generator: gen}
}

func (e *Engine) check() error {
	if e == nil || e.Rand == nil {
		return ErrRandRequired
	}
	if e.Generator == nil {
		return ErrGeneratorRequired
	}
	return nil
}

// Initialize wraps a kernel as a generation-zero individual and records it.
func (e *Engine) Initialize(k model.Kernel) model.Individual {
	ind := NewIndividual(k, 0, nil)
	e.record("initialize", ind.Genome)
	return ind
}

// SelfGenerate composes a parent kernel with itself. The operator follows
// the parent's maturity: chain below 0.5, product below 0.8, quotient once
// mature. The offspring is freshly initialized one generation down with the
// parent as sole ancestor.
func (e *Engine) SelfGenerate(parent model.Individual) (model.Individual, error) {
	if err := e.check(); err != nil {
		return model.Individual{}, err
	}

	op := kernel.OpQuotient
	switch {
	case parent.State.Maturity < 0.5:
		op = kernel.OpChain
	case parent.State.Maturity < 0.8:
		op = kernel.OpProduct
	}

	composed, err := e.Generator.ApplyOperator(op, parent.Kernel, parent.Kernel)
	if err != nil {
		return model.Individual{}, fmt.Errorf("self-generate: %w", err)
	}

	child := NewIndividual(composed, parent.Genome.Generation+1, []string{parent.Genome.ID})
	child.State.DevelopmentHistory = append(child.State.DevelopmentHistory, model.DevelopmentEvent{
		Kind:       "generation",
		Detail:     string(op),
		Generation: child.Genome.Generation,
	})
	e.record("self-generate", child.Genome)
	return child, nil
}

// SelfOptimize refines an individual's coefficients in place over a number
// of optimizer passes. Each pass raises maturity by 0.1 (clamped to 1) and
// logs the grip delta of that single pass; the delta can be negative when a
// pass converges to a worse local slope than the last.
func (e *Engine) SelfOptimize(ind *model.Individual, iterations int) error {
	if err := e.check(); err != nil {
		return err
	}
	if ind == nil || len(ind.Kernel.Coefficients) == 0 {
		return ErrNoCoefficients
	}

	for i := 0; i < iterations; i++ {
		before := ind.Kernel.Grip.Overall
		result := grip.Optimize(ind.Kernel.Coefficients, ind.Kernel.Domain, e.Generator.Optimizer)

		ind.Kernel.Coefficients = result.Coefficients
		ind.Kernel.Grip = result.Grip
		syncExpansion(&ind.Kernel)
		syncCoefficientGenes(&ind.Genome, result.Coefficients)

		ind.State.Maturity += 0.1
		if ind.State.Maturity > 1 {
			ind.State.Maturity = 1
		}
		ind.State.DevelopmentHistory = append(ind.State.DevelopmentHistory, model.DevelopmentEvent{
			Kind:       "optimization",
			GripDelta:  result.Grip.Overall - before,
			Generation: ind.Genome.Generation,
		})
	}

	advanceStage(ind)
	e.record("self-optimize", ind.Genome)
	return nil
}

// SelfReproduce produces offspring from two parents. Crossover yields the
// two complementary single-point splices, mutation yields one perturbed
// offspring per parent, cloning yields one copy of the first parent.
// Empty coefficient arrays never raise here beyond the explicit guard; the
// caller decides what an infertile pairing means.
func (e *Engine) SelfReproduce(p1, p2 model.Individual, method Method) ([]model.Individual, error) {
	if err := e.check(); err != nil {
		return nil, err
	}

	switch method {
	case MethodCrossover:
		return e.crossover(p1, p2)
	case MethodMutation:
		a, err := e.mutate(p1)
		if err != nil {
			return nil, err
		}
		b, err := e.mutate(p2)
		if err != nil {
			return nil, err
		}
		return []model.Individual{a, b}, nil
	case MethodCloning:
		return []model.Individual{e.clone(p1)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// crossover splices the parents' coefficient arrays at one uniformly random
// cut and returns both complementary offspring. Gene expressions merge as
// the per-gene average of the two parents.
func (e *Engine) crossover(p1, p2 model.Individual) ([]model.Individual, error) {
	n := len(p1.Kernel.Coefficients)
	if len(p2.Kernel.Coefficients) < n {
		n = len(p2.Kernel.Coefficients)
	}
	if n == 0 {
		return nil, ErrNoCoefficients
	}
	cut := e.Rand.Intn(n)

	first := spliceCoefficients(p1.Kernel.Coefficients, p2.Kernel.Coefficients, cut)
	second := spliceCoefficients(p2.Kernel.Coefficients, p1.Kernel.Coefficients, cut)

	generation := p1.Genome.Generation
	if p2.Genome.Generation > generation {
		generation = p2.Genome.Generation
	}
	lineage := []string{p1.Genome.ID, p2.Genome.ID}

	a := NewIndividual(e.rebuildKernel(p1.Kernel, first), generation+1, lineage)
	b := NewIndividual(e.rebuildKernel(p2.Kernel, second), generation+1, lineage)
	mergeExpressions(&a.Genome, p1.Genome, p2.Genome)
	mergeExpressions(&b.Genome, p1.Genome, p2.Genome)

	e.record("crossover", a.Genome)
	e.record("crossover", b.Genome)
	return []model.Individual{a, b}, nil
}

// mutate perturbs one random coefficient of the parent by up to ±10% and
// logs the change on the offspring, one generation after the parent.
func (e *Engine) mutate(parent model.Individual) (model.Individual, error) {
	return e.mutateInto(parent, parent.Genome.Generation+1, []string{parent.Genome.ID})
}

// mutateReplacement rewrites an already-bred offspring in place of itself:
// the perturbed individual keeps the offspring's generation and lineage
// instead of descending from it.
func (e *Engine) mutateReplacement(offspring model.Individual) (model.Individual, error) {
	lineage := make([]string, len(offspring.Genome.Lineage))
	copy(lineage, offspring.Genome.Lineage)
	return e.mutateInto(offspring, offspring.Genome.Generation, lineage)
}

func (e *Engine) mutateInto(source model.Individual, generation int, lineage []string) (model.Individual, error) {
	coeffs := source.Kernel.Coefficients
	if len(coeffs) == 0 {
		return model.Individual{}, ErrNoCoefficients
	}

	idx := e.Rand.Intn(len(coeffs))
	mutated := make([]float64, len(coeffs))
	copy(mutated, coeffs)
	mutated[idx] = coeffs[idx] * (1 + (e.Rand.Float64()*0.2 - 0.1))

	child := NewIndividual(e.rebuildKernel(source.Kernel, mutated), generation, lineage)
	child.State.Mutations = append(child.State.Mutations, model.MutationRecord{
		Index:    idx,
		OldValue: coeffs[idx],
		NewValue: mutated[idx],
	})
	e.record("mutation", child.Genome)
	return child, nil
}

// clone copies an individual's kernel under a new id with reset
// developmental state.
func (e *Engine) clone(parent model.Individual) model.Individual {
	coeffs := make([]float64, len(parent.Kernel.Coefficients))
	copy(coeffs, parent.Kernel.Coefficients)
	child := NewIndividual(e.rebuildKernel(parent.Kernel, coeffs), parent.Genome.Generation+1, []string{parent.Genome.ID})
	e.record("cloning", child.Genome)
	return child
}

// rebuildKernel copies a kernel under a fresh id with new coefficients,
// keeping its expansion terms in sync and re-measuring grip.
func (e *Engine) rebuildKernel(base model.Kernel, coeffs []float64) model.Kernel {
	out := base
	out.ID = uuid.New().String()
	out.Coefficients = coeffs
	out.Grip = grip.Measure(coeffs, out.Domain)
	syncExpansion(&out)
	if e.Generator != nil && e.Generator.Now != nil {
		out.GeneratedAt = e.Generator.Now()
	}
	return out
}

func (e *Engine) record(operation string, g model.Genome) {
	if e == nil || e.Session == nil {
		return
	}
	e.Session.Record(operation, g)
}

func spliceCoefficients(head, tail []float64, cut int) []float64 {
	n := len(head)
	if len(tail) < n {
		n = len(tail)
	}
	out := make([]float64, n)
	copy(out[:cut], head[:cut])
	copy(out[cut:], tail[cut:n])
	return out
}

func syncExpansion(k *model.Kernel) {
	if len(k.Expansion.Terms) != len(k.Coefficients) {
		return
	}
	terms := make([]model.ExpansionTerm, len(k.Expansion.Terms))
	copy(terms, k.Expansion.Terms)
	for i := range terms {
		terms[i].Coefficient = k.Coefficients[i]
	}
	k.Expansion.Terms = terms
	k.Expansion.Grip = k.Grip
}

func syncCoefficientGenes(g *model.Genome, coeffs []float64) {
	genes := cloneGenes(g.Genes)
	i := 0
	for j := range genes {
		if genes[j].Type != model.GeneCoefficient {
			continue
		}
		if i < len(coeffs) {
			genes[j].Value = coeffs[i]
		}
		i++
	}
	g.Genes = genes
}

func mergeExpressions(child *model.Genome, p1, p2 model.Genome) {
	genes := cloneGenes(child.Genes)
	for i := range genes {
		e1, ok1 := expressionOf(p1, genes[i].Name)
		e2, ok2 := expressionOf(p2, genes[i].Name)
		switch {
		case ok1 && ok2:
			genes[i].Expression = (e1 + e2) / 2
		case ok1:
			genes[i].Expression = e1
		case ok2:
			genes[i].Expression = e2
		}
	}
	child.Genes = genes
}

func expressionOf(g model.Genome, name string) (float64, bool) {
	for _, gene := range g.Genes {
		if gene.Name == name {
			return gene.Expression, true
		}
	}
	return 0, false
}
