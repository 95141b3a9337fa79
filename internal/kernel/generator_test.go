package kernel

import (
	"errors"
	"testing"
	"time"

	"ontokern/internal/bseries"
	"ontokern/internal/domain"
	"ontokern/internal/grip"
	"ontokern/internal/model"
)

func fixedGenerator() *Generator {
	return &Generator{
		Now: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestGenerateProducesParallelArrays(t *testing.T) {
	g := fixedGenerator()
	for _, domainType := range []model.DomainType{
		model.DomainPhysics,
		model.DomainChemistry,
		model.DomainBiology,
		model.DomainComputing,
		model.DomainConsciousness,
	} {
		k, err := g.GenerateFromPreset(domainType)
		if err != nil {
			t.Fatalf("GenerateFromPreset(%s): %v", domainType, err)
		}
		if len(k.Trees) != len(k.Coefficients) {
			t.Fatalf("%s kernel arrays not parallel: %d trees, %d coefficients", domainType, len(k.Trees), len(k.Coefficients))
		}
		if len(k.Trees) == 0 {
			t.Fatalf("%s kernel has no trees", domainType)
		}
		if k.ID == "" {
			t.Fatalf("%s kernel has no id", domainType)
		}
		if k.EngineVersion != EngineVersion {
			t.Fatalf("engine version = %q", k.EngineVersion)
		}
	}
}

func TestGenerateRejectsInvalidDomain(t *testing.T) {
	g := fixedGenerator()
	spec := model.DomainSpec{Type: model.DomainPhysics, Order: 3, TreeType: "reaction"}
	if _, err := g.Generate(spec, domain.GoalBalanced); !errors.Is(err, domain.ErrInvalidDomain) {
		t.Fatalf("expected ErrInvalidDomain, got %v", err)
	}
}

func TestGenerateRejectsUnknownGoal(t *testing.T) {
	g := fixedGenerator()
	spec := model.DomainSpec{Type: model.DomainComputing, Order: 2, TreeType: "recursion"}
	if _, err := g.Generate(spec, "fastest"); !errors.Is(err, ErrUnknownGoal) {
		t.Fatalf("expected ErrUnknownGoal, got %v", err)
	}
}

func TestGripProfilesPerGoal(t *testing.T) {
	speed, err := GripProfile(domain.GoalSpeed)
	if err != nil {
		t.Fatalf("GripProfile: %v", err)
	}
	if speed.Efficiency != 1.0 {
		t.Fatalf("speed profile efficiency = %v, want 1.0", speed.Efficiency)
	}
	stability, err := GripProfile(domain.GoalStability)
	if err != nil {
		t.Fatalf("GripProfile: %v", err)
	}
	if stability.Stability != 1.0 {
		t.Fatalf("stability profile stability = %v, want 1.0", stability.Stability)
	}
	balanced, err := GripProfile("")
	if err != nil {
		t.Fatalf("GripProfile(\"\") should default to balanced: %v", err)
	}
	if balanced.Contact != 0.85 {
		t.Fatalf("default profile contact = %v, want 0.85", balanced.Contact)
	}
}

func TestApplyOperatorChainAndProduct(t *testing.T) {
	g := fixedGenerator()
	left, err := g.GenerateFromPreset(model.DomainComputing)
	if err != nil {
		t.Fatalf("generate left: %v", err)
	}
	right, err := g.GenerateFromPreset(model.DomainComputing)
	if err != nil {
		t.Fatalf("generate right: %v", err)
	}

	for _, op := range []Operator{OpChain, OpProduct} {
		composed, err := g.ApplyOperator(op, left, right)
		if err != nil {
			t.Fatalf("ApplyOperator(%s): %v", op, err)
		}
		if composed.Order != left.Order {
			t.Fatalf("%s composed order = %d, want %d", op, composed.Order, left.Order)
		}
		if len(composed.Trees) != len(composed.Coefficients) {
			t.Fatalf("%s composed arrays not parallel", op)
		}
		if composed.ID == left.ID || composed.ID == right.ID {
			t.Fatalf("%s composed kernel reused a parent id", op)
		}
	}
}

func TestApplyOperatorQuotientIsPositional(t *testing.T) {
	g := fixedGenerator()
	left, err := g.GenerateFromPreset(model.DomainComputing)
	if err != nil {
		t.Fatalf("generate left: %v", err)
	}
	right, err := g.GenerateFromPreset(model.DomainComputing)
	if err != nil {
		t.Fatalf("generate right: %v", err)
	}

	quotient, err := g.ApplyOperator(OpQuotient, left, right)
	if err != nil {
		t.Fatalf("ApplyOperator(quotient): %v", err)
	}
	for i := range quotient.Coefficients {
		l := coefficientAt(left.Coefficients, i)
		r := coefficientAt(right.Coefficients, i)
		want := (l - r) / (1 + abs(r))
		if diff := quotient.Coefficients[i] - want; diff > 1e-12 || diff < -1e-12 {
			t.Fatalf("quotient coefficient %d = %v, want %v", i, quotient.Coefficients[i], want)
		}
	}
	// Quotient grip rule keeps the weaker coverage, unlike chain.
	wantCoverage := left.Grip.Coverage
	if right.Grip.Coverage < wantCoverage {
		wantCoverage = right.Grip.Coverage
	}
	if quotient.Grip.Coverage != wantCoverage {
		t.Fatalf("quotient coverage = %v, want min %v", quotient.Grip.Coverage, wantCoverage)
	}
}

func TestApplyOperatorUnknown(t *testing.T) {
	g := fixedGenerator()
	k, err := g.GenerateFromPreset(model.DomainComputing)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := g.ApplyOperator("integral", k, k); !errors.Is(err, ErrUnknownOperator) {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	expansion, err := bseries.GenerateRungeKutta(1)
	if err != nil {
		t.Fatalf("GenerateRungeKutta(1): %v", err)
	}
	valid := fixedGenerator().assemble(expansion, 0)
	if !Verify(valid) {
		t.Fatalf("expected order-1 Runge-Kutta kernel to verify: grip=%+v", valid.Grip)
	}

	weak := valid
	weak.Grip = model.GripMetric{Contact: 0.2, Coverage: 0.2, Efficiency: 0.2, Stability: 0.2, Overall: 0.2}
	if Verify(weak) {
		t.Fatal("kernel below grip threshold should not verify")
	}
	if grip.IsSufficient(weak.Grip, grip.VerificationThreshold) {
		t.Fatal("weak grip should not clear the verification threshold")
	}

	broken := valid
	broken.Expansion.Terms = append([]model.ExpansionTerm(nil), valid.Expansion.Terms...)
	broken.Expansion.Terms[0].Coefficient = 0.5
	if Verify(broken) {
		t.Fatal("kernel violating order conditions should not verify")
	}

	invalidDomain := valid
	invalidDomain.Domain.TreeType = "reaction"
	if Verify(invalidDomain) {
		t.Fatal("kernel with invalid domain should not verify")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
