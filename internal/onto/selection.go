package onto

import (
	"errors"
	"math/rand"

	"ontokern/internal/model"
)

var ErrEmptyPool = errors.New("selection pool is empty")

// Selector chooses a parent from a fitness-ranked population.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []model.Individual) (model.Individual, error)
}

// EliteSelector picks uniformly from the top of the ranking.
type EliteSelector struct {
	EliteCount int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) PickParent(rng *rand.Rand, ranked []model.Individual) (model.Individual, error) {
	if rng == nil {
		return model.Individual{}, ErrRandRequired
	}
	if len(ranked) == 0 {
		return model.Individual{}, ErrEmptyPool
	}
	count := s.EliteCount
	if count <= 0 || count > len(ranked) {
		count = len(ranked)
	}
	return ranked[rng.Intn(count)], nil
}

// TournamentSelector samples candidates with replacement and keeps the
// fittest. A single-member population always wins its own tournament.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []model.Individual) (model.Individual, error) {
	if rng == nil {
		return model.Individual{}, ErrRandRequired
	}
	if len(ranked) == 0 {
		return model.Individual{}, ErrEmptyPool
	}

	size := s.TournamentSize
	if size <= 0 {
		size = 3
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Genome.Fitness > best.Genome.Fitness {
			best = candidate
		}
	}
	return best, nil
}
