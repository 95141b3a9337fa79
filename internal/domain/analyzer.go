package domain

import (
	"ontokern/internal/model"
	"ontokern/internal/tree"
)

// Analysis is descriptive topology/symmetry/flow metadata for a domain
// declaration. It feeds feature extraction and validation reports; nothing
// numeric depends on it.
type Analysis struct {
	Domain            model.DomainSpec `json:"domain"`
	Glyph             string           `json:"glyph"`
	TreeCount         int              `json:"tree_count"`
	ExpectedTreeCount int              `json:"expected_tree_count"`
	MaxDepth          int              `json:"max_depth"`
	MeanBranching     float64          `json:"mean_branching"`
	SymmetryClasses   int              `json:"symmetry_classes"`
	PreservedCount    int              `json:"preserved_count"`
	FlowCharacter     string           `json:"flow_character"`
}

// Analyze derives the descriptive profile of a valid domain declaration.
func Analyze(spec model.DomainSpec) (Analysis, error) {
	if err := Validate(spec); err != nil {
		return Analysis{}, err
	}
	forest, err := tree.GenerateDomainSpecific(spec, spec.Order)
	if err != nil {
		return Analysis{}, err
	}

	maxDepth := 0
	internal := 0
	childLinks := 0
	classes := map[int]struct{}{}
	for _, t := range forest {
		if d := tree.Depth(t); d > maxDepth {
			maxDepth = d
		}
		for _, n := range t.Nodes {
			if len(n.Children) > 0 {
				internal++
				childLinks += len(n.Children)
			}
		}
		classes[tree.SymmetryFactor(t)] = struct{}{}
	}
	mean := 0.0
	if internal > 0 {
		mean = float64(childLinks) / float64(internal)
	}

	return Analysis{
		Domain:            spec,
		Glyph:             tree.Glyph(spec.Type),
		TreeCount:         len(forest),
		ExpectedTreeCount: tree.Count(spec.Order),
		MaxDepth:          maxDepth,
		MeanBranching:     mean,
		SymmetryClasses:   len(classes),
		PreservedCount:    len(spec.Preserves),
		FlowCharacter:     flowCharacter(spec.Type),
	}, nil
}

func flowCharacter(domain model.DomainType) string {
	switch domain {
	case model.DomainPhysics:
		return "conservative"
	case model.DomainChemistry:
		return "dissipative"
	case model.DomainBiology:
		return "regulatory"
	case model.DomainComputing:
		return "recursive"
	case model.DomainConsciousness:
		return "reentrant"
	default:
		return "generic"
	}
}
