package domain

import (
	"errors"
	"fmt"

	"ontokern/internal/model"
)

var (
	ErrInvalidDomain = errors.New("invalid domain specification")
	ErrUnknownDomain = errors.New("unknown domain type")
)

// Goal selects the grip profile used when generating a kernel.
type Goal string

const (
	GoalSpeed     Goal = "speed"
	GoalAccuracy  Goal = "accuracy"
	GoalStability Goal = "stability"
	GoalBalanced  Goal = "balanced"
)

// Preset fixes the default declaration and optimization goal for a domain.
type Preset struct {
	Spec model.DomainSpec
	Goal Goal
}

// treeTypes maps each domain type to the single tree type it accepts.
var treeTypes = map[model.DomainType]string{
	model.DomainPhysics:       "hamiltonian",
	model.DomainChemistry:     "reaction",
	model.DomainBiology:       "metabolic",
	model.DomainComputing:     "recursion",
	model.DomainConsciousness: "echo",
}

var presets = map[model.DomainType]Preset{
	model.DomainPhysics: {
		Spec: model.DomainSpec{
			Type:      model.DomainPhysics,
			Order:     4,
			TreeType:  "hamiltonian",
			Symmetry:  "symplectic",
			Preserves: []string{"energy", "momentum"},
		},
		Goal: GoalStability,
	},
	model.DomainChemistry: {
		Spec: model.DomainSpec{
			Type:      model.DomainChemistry,
			Order:     3,
			TreeType:  "reaction",
			Symmetry:  "detailed-balance",
			Preserves: []string{"mass"},
		},
		Goal: GoalAccuracy,
	},
	model.DomainBiology: {
		Spec: model.DomainSpec{
			Type:      model.DomainBiology,
			Order:     3,
			TreeType:  "metabolic",
			Symmetry:  "homeostatic",
			Preserves: []string{"mass", "energy"},
		},
		Goal: GoalBalanced,
	},
	model.DomainComputing: {
		Spec: model.DomainSpec{
			Type:      model.DomainComputing,
			Order:     4,
			TreeType:  "recursion",
			Symmetry:  "time-reversible",
			Preserves: []string{"information"},
		},
		Goal: GoalSpeed,
	},
	model.DomainConsciousness: {
		Spec: model.DomainSpec{
			Type:      model.DomainConsciousness,
			Order:     4,
			TreeType:  "echo",
			Symmetry:  "self-referential",
			Preserves: []string{"identity", "coherence"},
		},
		Goal: GoalBalanced,
	},
}

// PresetFor returns the fixed preset for a domain type.
func PresetFor(domainType model.DomainType) (Preset, error) {
	preset, ok := presets[domainType]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownDomain, domainType)
	}
	spec := preset.Spec
	spec.Preserves = append([]string(nil), spec.Preserves...)
	return Preset{Spec: spec, Goal: preset.Goal}, nil
}

// Validate checks a domain declaration: known type, order in [1, 10], and
// the tree type the domain accepts.
func Validate(spec model.DomainSpec) error {
	expected, ok := treeTypes[spec.Type]
	if !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDomain, spec.Type)
	}
	if spec.Order < 1 || spec.Order > 10 {
		return fmt.Errorf("%w: order %d outside [1, 10]", ErrInvalidDomain, spec.Order)
	}
	if spec.TreeType != expected {
		return fmt.Errorf("%w: tree type %q does not match %s (want %q)", ErrInvalidDomain, spec.TreeType, spec.Type, expected)
	}
	return nil
}

// IsValid reports whether a declaration passes Validate.
func IsValid(spec model.DomainSpec) bool {
	return Validate(spec) == nil
}
