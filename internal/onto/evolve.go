package onto

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"ontokern/internal/model"
)

var ErrEmptyPopulation = errors.New("population is empty")

// Params controls one evolution step. Zero rates pick the defaults; a
// negative rate disables that mechanism entirely (no elites, no crossover,
// or no mutation).
type Params struct {
	PopulationSize int
	ElitismRate    float64
	CrossoverRate  float64
	MutationRate   float64
	TournamentSize int
}

func (p Params) withDefaults() Params {
	if p.PopulationSize <= 0 {
		p.PopulationSize = 10
	}
	p.ElitismRate = rateOrDefault(p.ElitismRate, 0.1)
	p.CrossoverRate = rateOrDefault(p.CrossoverRate, 0.7)
	p.MutationRate = rateOrDefault(p.MutationRate, 0.1)
	if p.TournamentSize <= 0 {
		p.TournamentSize = 3
	}
	return p
}

func rateOrDefault(rate, fallback float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate == 0 {
		return fallback
	}
	return rate
}

// Evolve advances a population one generation: score and rank everyone,
// carry the top slice as elites, breed the rest by tournament selection
// with crossover or cloning plus optional mutation, then age all survivors
// and refresh statistics. The returned population always holds exactly
// PopulationSize individuals.
func (e *Engine) Evolve(pop model.Population, params Params) (model.Population, error) {
	if err := e.check(); err != nil {
		return model.Population{}, err
	}
	if len(pop.Individuals) == 0 {
		return model.Population{}, ErrEmptyPopulation
	}
	params = params.withDefaults()

	ranked := e.rank(pop.Individuals)

	eliteCount := int(math.Floor(float64(params.PopulationSize) * params.ElitismRate))
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}
	next := make([]model.Individual, eliteCount, params.PopulationSize)
	copy(next, ranked[:eliteCount])

	selector := TournamentSelector{TournamentSize: params.TournamentSize}
	for len(next) < params.PopulationSize {
		p1, err := selector.PickParent(e.Rand, ranked)
		if err != nil {
			return model.Population{}, err
		}
		p2, err := selector.PickParent(e.Rand, ranked)
		if err != nil {
			return model.Population{}, err
		}

		if e.Rand.Float64() < params.CrossoverRate {
			offspring, err := e.SelfReproduce(p1, p2, MethodCrossover)
			if err != nil {
				return model.Population{}, fmt.Errorf("evolve crossover: %w", err)
			}
			next = append(next, offspring...)
		} else {
			next = append(next, e.clone(p1))
		}

		if e.Rand.Float64() < params.MutationRate {
			mutated, err := e.mutateReplacement(next[len(next)-1])
			if err != nil {
				return model.Population{}, fmt.Errorf("evolve mutation: %w", err)
			}
			next[len(next)-1] = mutated
		}
	}
	next = next[:params.PopulationSize]

	for i := range next {
		next[i].Genome.Age++
		advanceStage(&next[i])
	}

	out := e.summarize(next, pop.Generation+1, params.PopulationSize)
	return out, nil
}

// rank scores every individual against the rest of the population and
// returns a copy sorted by descending fitness.
func (e *Engine) rank(individuals []model.Individual) []model.Individual {
	ranked := make([]model.Individual, len(individuals))
	copy(ranked, individuals)
	for i := range ranked {
		ranked[i].Genome.Fitness = EvaluateFitness(ranked[i], ranked)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Genome.Fitness > ranked[j].Genome.Fitness
	})
	return ranked
}

func (e *Engine) summarize(individuals []model.Individual, generation, size int) model.Population {
	var total, best float64
	for i := range individuals {
		individuals[i].Genome.Fitness = EvaluateFitness(individuals[i], individuals)
		f := individuals[i].Genome.Fitness
		total += f
		if i == 0 || f > best {
			best = f
		}
	}
	average := 0.0
	if len(individuals) > 0 {
		average = total / float64(len(individuals))
	}

	return model.Population{
		VersionedRecord: recordVersions(individuals),
		ID:              uuid.New().String(),
		Generation:      generation,
		Individuals:     individuals,
		PopulationSize:  size,
		AverageFitness:  average,
		BestFitness:     best,
		Diversity:       Diversity(individuals),
	}
}

func recordVersions(individuals []model.Individual) model.VersionedRecord {
	if len(individuals) == 0 {
		return model.VersionedRecord{SchemaVersion: 1, CodecVersion: 1}
	}
	return individuals[0].Genome.VersionedRecord
}

// Config drives a full ontogenesis run.
type Config struct {
	SeedKernels      []model.Kernel
	MaxGenerations   int
	FitnessThreshold float64
	Params           Params
}

func (c Config) withDefaults() Config {
	if c.MaxGenerations <= 0 {
		c.MaxGenerations = 10
	}
	c.Params = c.Params.withDefaults()
	return c
}

// RunOntogenesis seeds a population from the configured kernels, filling
// empty slots by mutating a random existing individual or, with no seeds at
// all, by generating default consciousness-domain kernels. It then evolves
// up to MaxGenerations times, stopping early the first generation whose best
// fitness clears the threshold (a zero threshold never stops early). The
// result lists every generation in order, generation zero included.
func (e *Engine) RunOntogenesis(cfg Config) ([]model.Population, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	individuals := make([]model.Individual, 0, cfg.Params.PopulationSize)
	for _, k := range cfg.SeedKernels {
		individuals = append(individuals, e.Initialize(k))
	}
	for len(individuals) < cfg.Params.PopulationSize {
		if len(individuals) > 0 {
			parent := individuals[e.Rand.Intn(len(individuals))]
			child, err := e.mutate(parent)
			if err != nil {
				return nil, fmt.Errorf("seed population: %w", err)
			}
			individuals = append(individuals, child)
			continue
		}
		k, err := e.Generator.GenerateFromPreset(model.DomainConsciousness)
		if err != nil {
			return nil, fmt.Errorf("seed population: %w", err)
		}
		individuals = append(individuals, e.Initialize(k))
	}
	if len(individuals) > cfg.Params.PopulationSize {
		individuals = individuals[:cfg.Params.PopulationSize]
	}

	current := e.summarize(individuals, 0, cfg.Params.PopulationSize)
	generations := []model.Population{current}

	for g := 0; g < cfg.MaxGenerations; g++ {
		next, err := e.Evolve(current, cfg.Params)
		if err != nil {
			return nil, err
		}
		generations = append(generations, next)
		current = next
		if cfg.FitnessThreshold > 0 && current.BestFitness >= cfg.FitnessThreshold {
			break
		}
	}
	return generations, nil
}
