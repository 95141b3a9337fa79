package bseries

import (
	"errors"
	"fmt"

	"ontokern/internal/model"
)

var ErrInvalidTableauOrder = errors.New("tableau order must be >= 1")

// The four canonical explicit tableaux. Declared orders above 4 reuse the
// classic RK4 tableau; this is an explicit limitation, not a higher-order
// method.
var tableaux = map[int]model.ButcherTableau{
	1: {
		Order:  1,
		Stages: 1,
		A:      [][]float64{{0}},
		B:      []float64{1},
		C:      []float64{0},
	},
	2: {
		Order:  2,
		Stages: 2,
		A: [][]float64{
			{0, 0},
			{0.5, 0},
		},
		B: []float64{0, 1},
		C: []float64{0, 0.5},
	},
	3: {
		Order:  3,
		Stages: 3,
		A: [][]float64{
			{0, 0, 0},
			{0.5, 0, 0},
			{-1, 2, 0},
		},
		B: []float64{1.0 / 6, 2.0 / 3, 1.0 / 6},
		C: []float64{0, 0.5, 1},
	},
	4: {
		Order:  4,
		Stages: 4,
		A: [][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		},
		B: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		C: []float64{0, 0.5, 0.5, 1},
	},
}

// TableauFor selects the tableau for a declared order, capping at the
// order-4 classic method.
func TableauFor(order int) (model.ButcherTableau, error) {
	if order < 1 {
		return model.ButcherTableau{}, fmt.Errorf("%w: %d", ErrInvalidTableauOrder, order)
	}
	if order > 4 {
		order = 4
	}
	return tableaux[order], nil
}
