package onto

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"ontokern/internal/kernel"
	"ontokern/internal/model"
)

const initialExpression = 0.5

// InitializeGenome derives a genome from a kernel: one mutable coefficient
// gene per coefficient, one immutable symmetry gene carrying the domain's
// symmetry label, and one immutable preservation gene per preserved
// quantity.
func InitializeGenome(k model.Kernel, generation int, lineage []string) model.Genome {
	genes := make([]model.Gene, 0, len(k.Coefficients)+1+len(k.Domain.Preserves))
	for i, c := range k.Coefficients {
		genes = append(genes, model.Gene{
			Name:       fmt.Sprintf("c%d", i),
			Type:       model.GeneCoefficient,
			Value:      c,
			Expression: initialExpression,
			Mutable:    true,
		})
	}
	genes = append(genes, model.Gene{
		Name:       "symmetry",
		Type:       model.GeneSymmetry,
		Label:      k.Domain.Symmetry,
		Expression: initialExpression,
	})
	for _, quantity := range k.Domain.Preserves {
		genes = append(genes, model.Gene{
			Name:       "preserves:" + quantity,
			Type:       model.GenePreservation,
			Label:      quantity,
			Expression: initialExpression,
		})
	}

	return model.Genome{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: kernel.SchemaVersion,
			CodecVersion:  kernel.CodecVersion,
		},
		ID:         uuid.New().String(),
		Generation: generation,
		Lineage:    lineage,
		Genes:      genes,
	}
}

// NewIndividual wraps a kernel with a fresh genome and embryonic state.
func NewIndividual(k model.Kernel, generation int, lineage []string) model.Individual {
	return model.Individual{
		Kernel: k,
		Genome: InitializeGenome(k, generation, lineage),
		State: model.OntogeneticState{
			Stage: model.StageEmbryonic,
		},
	}
}

// GeneticDistance is the mean absolute difference between two genomes'
// coefficient gene values. Genes beyond the shorter genome count as zero on
// the missing side.
func GeneticDistance(a, b model.Genome) float64 {
	av := coefficientValues(a)
	bv := coefficientValues(b)
	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		sum += math.Abs(x - y)
	}
	return sum / float64(n)
}

func coefficientValues(g model.Genome) []float64 {
	var out []float64
	for _, gene := range g.Genes {
		if gene.Type == model.GeneCoefficient {
			out = append(out, gene.Value)
		}
	}
	return out
}

func symmetryExpression(g model.Genome) float64 {
	for _, gene := range g.Genes {
		if gene.Type == model.GeneSymmetry {
			return gene.Expression
		}
	}
	return initialExpression
}

func cloneGenes(genes []model.Gene) []model.Gene {
	out := make([]model.Gene, len(genes))
	copy(out, genes)
	return out
}
