package onto

import "ontokern/internal/model"

var stageRank = map[model.Stage]int{
	model.StageEmbryonic: 0,
	model.StageJuvenile:  1,
	model.StageMature:    2,
	model.StageSenescent: 3,
}

// stageFor maps age and maturity to a developmental stage. Senescence is
// driven by age alone.
func stageFor(age int, maturity float64) model.Stage {
	switch {
	case age >= 20:
		return model.StageSenescent
	case maturity >= 0.8 && age >= 5:
		return model.StageMature
	case maturity >= 0.5 && age >= 3:
		return model.StageJuvenile
	default:
		return model.StageEmbryonic
	}
}

// advanceStage recomputes the developmental stage of an individual.
// Transitions are forward-only: a drop in the computed stage never regresses
// the recorded one. Each transition appends a development event.
func advanceStage(ind *model.Individual) {
	next := stageFor(ind.Genome.Age, ind.State.Maturity)
	if stageRank[next] <= stageRank[ind.State.Stage] {
		return
	}
	ind.State.Stage = next
	ind.State.DevelopmentHistory = append(ind.State.DevelopmentHistory, model.DevelopmentEvent{
		Kind:       "transition",
		Detail:     string(next),
		Generation: ind.Genome.Generation,
	})

	switch next {
	case model.StageJuvenile, model.StageMature:
		ind.State.ReproductiveCapability = ind.State.Maturity
	case model.StageSenescent:
		ind.State.ReproductiveCapability = ind.State.Maturity / 2
	}
}
