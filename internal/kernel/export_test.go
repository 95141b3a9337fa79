package kernel

import (
	"encoding/json"
	"errors"
	"testing"

	"ontokern/internal/model"
)

func exportFixture() model.Kernel {
	return model.Kernel{
		ID: "fixture",
		Domain: model.DomainSpec{
			Type:     model.DomainComputing,
			Order:    2,
			TreeType: "recursion",
			Symmetry: "time-reversible",
		},
		Order:        2,
		Trees:        make([]model.Tree, 2),
		Coefficients: []float64{1, 0.5},
		Grip:         model.GripMetric{Overall: 0.975},
	}
}

func TestExportGGMLTemplate(t *testing.T) {
	out, err := Export(exportFixture(), "ggml")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "GGML Kernel computing\n" +
		"Order: 2\n" +
		"Coefficients: [1, 0.5]\n" +
		"Grip: 0.9750\n" +
		"Trees: 2\n"
	if out != want {
		t.Fatalf("ggml export:\n%s\nwant:\n%s", out, want)
	}
}

func TestExportSchemeTemplate(t *testing.T) {
	out, err := Export(exportFixture(), "scheme")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "(define computing-kernel\n" +
		"  '((order . 2)\n" +
		"    (trees . 2)\n" +
		"    (coefficients . (1 0.5))\n" +
		"    (grip . 0.9750)\n" +
		"    (symmetry . \"time-reversible\")))\n"
	if out != want {
		t.Fatalf("scheme export:\n%s\nwant:\n%s", out, want)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export(exportFixture(), "protobuf"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	g := fixedGenerator()
	original, err := g.GenerateFromPreset(model.DomainConsciousness)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	payload, err := Export(original, "json")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var decoded model.Kernel
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("unmarshal exported kernel: %v", err)
	}

	if decoded.Order != original.Order {
		t.Fatalf("round-trip order = %d, want %d", decoded.Order, original.Order)
	}
	if decoded.Domain.Type != original.Domain.Type {
		t.Fatalf("round-trip domain = %s, want %s", decoded.Domain.Type, original.Domain.Type)
	}
	if len(decoded.Coefficients) != len(original.Coefficients) {
		t.Fatalf("round-trip coefficient count = %d, want %d", len(decoded.Coefficients), len(original.Coefficients))
	}
	for i := range original.Coefficients {
		if diff := decoded.Coefficients[i] - original.Coefficients[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("coefficient %d drifted: %v vs %v", i, decoded.Coefficients[i], original.Coefficients[i])
		}
	}
}

// Sanity check for the companion cognitive framework's layer sizes: its
// five tensor groups sum to 776 floats, which factors as 2^3 * 97.
func TestTensorBudgetIdentity(t *testing.T) {
	total := 343 + 110 + 117 + 125 + 81
	if total != 776 {
		t.Fatalf("tensor budget = %d, want 776", total)
	}
	if 776 != 8*97 {
		t.Fatal("776 should factor as 2^3 * 97")
	}
}
