package onto

import "ontokern/internal/model"

// EvaluateFitness scores one individual against its cohort:
// 0.4 grip overall, 0.2 stability, 0.2 efficiency, 0.1 novelty,
// 0.1 symmetry gene expression. Novelty is the mean genetic distance to the
// rest of the cohort and defaults to 1 for an individual with no peers.
func EvaluateFitness(ind model.Individual, cohort []model.Individual) float64 {
	g := ind.Kernel.Grip
	return 0.4*g.Overall +
		0.2*g.Stability +
		0.2*g.Efficiency +
		0.1*novelty(ind, cohort) +
		0.1*symmetryExpression(ind.Genome)
}

func novelty(ind model.Individual, cohort []model.Individual) float64 {
	var sum float64
	var peers int
	for _, other := range cohort {
		if other.Genome.ID == ind.Genome.ID {
			continue
		}
		sum += GeneticDistance(ind.Genome, other.Genome)
		peers++
	}
	if peers == 0 {
		return 1
	}
	return sum / float64(peers)
}

// Diversity is the mean pairwise genetic distance across a population.
// Populations of fewer than two individuals have zero diversity.
func Diversity(individuals []model.Individual) float64 {
	if len(individuals) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(individuals); i++ {
		for j := i + 1; j < len(individuals); j++ {
			sum += GeneticDistance(individuals[i].Genome, individuals[j].Genome)
			pairs++
		}
	}
	return sum / float64(pairs)
}
