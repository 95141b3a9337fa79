package stats

import (
	"math"

	"ontokern/internal/model"
)

// Summary describes one fitness series.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summarize reduces a fitness series to its summary statistics. An empty
// series yields the zero summary.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}

	out := Summary{Count: len(series), Min: series[0], Max: series[0]}
	var total float64
	for _, v := range series {
		total += v
		if v < out.Min {
			out.Min = v
		}
		if v > out.Max {
			out.Max = v
		}
	}
	out.Mean = total / float64(len(series))

	var variance float64
	for _, v := range series {
		d := v - out.Mean
		variance += d * d
	}
	out.StdDev = math.Sqrt(variance / float64(len(series)))
	return out
}

// BestFitnessSeries extracts the per-generation best fitness of a run.
func BestFitnessSeries(generations []model.Population) []float64 {
	out := make([]float64, len(generations))
	for i, pop := range generations {
		out[i] = pop.BestFitness
	}
	return out
}

// Improvement is the net best-fitness change from the first generation to
// the last.
func Improvement(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	return series[len(series)-1] - series[0]
}

// Diagnostics condenses each generation of a run into one record, deriving
// the minimum fitness from the individuals directly.
func Diagnostics(generations []model.Population) []model.GenerationDiagnostics {
	out := make([]model.GenerationDiagnostics, len(generations))
	for i, pop := range generations {
		min := 0.0
		for j, ind := range pop.Individuals {
			if j == 0 || ind.Genome.Fitness < min {
				min = ind.Genome.Fitness
			}
		}
		out[i] = model.GenerationDiagnostics{
			Generation:     pop.Generation,
			BestFitness:    pop.BestFitness,
			AverageFitness: pop.AverageFitness,
			MinFitness:     min,
			Diversity:      pop.Diversity,
		}
	}
	return out
}
