package ontokern

import (
	"context"
	"strings"
	"testing"

	"ontokern/internal/kernel"
	"ontokern/internal/model"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory", Seed: 42})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return client
}

func TestClientGenerateAndExport(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Generate(ctx, GenerateRequest{Domain: model.DomainPhysics})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Domain != model.DomainPhysics {
		t.Fatalf("summary domain = %s", summary.Domain)
	}
	if summary.TreeCount == 0 {
		t.Fatal("summary has no trees")
	}

	out, err := client.Export(ctx, summary.ID, "scheme")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(out, "(define physics-kernel") {
		t.Fatalf("scheme export starts with %q", out[:min(len(out), 40)])
	}

	if _, err := client.Export(ctx, "missing", "scheme"); err == nil {
		t.Fatal("expected error for unknown kernel id")
	}
}

func TestClientCompose(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	left, err := client.Generate(ctx, GenerateRequest{Domain: model.DomainComputing})
	if err != nil {
		t.Fatalf("Generate left: %v", err)
	}
	right, err := client.Generate(ctx, GenerateRequest{Domain: model.DomainComputing})
	if err != nil {
		t.Fatalf("Generate right: %v", err)
	}

	composed, err := client.Compose(ctx, kernel.OpChain, left.ID, right.ID)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if composed.ID == left.ID || composed.ID == right.ID {
		t.Fatal("composed kernel reused a parent id")
	}

	// Composed kernels persist and can be exported directly.
	if _, err := client.Export(ctx, composed.ID, "ggml"); err != nil {
		t.Fatalf("Export composed: %v", err)
	}
}

func TestClientRunPersistsEverything(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	seed, err := client.Generate(ctx, GenerateRequest{Domain: model.DomainConsciousness})
	if err != nil {
		t.Fatalf("Generate seed: %v", err)
	}

	summary, err := client.Run(ctx, RunRequest{
		SeedKernelIDs:  []string{seed.ID},
		PopulationSize: 3,
		MaxGenerations: 2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Generations != 3 {
		t.Fatalf("run generations = %d, want 3 (zero included)", summary.Generations)
	}
	if len(summary.BestByGeneration) != summary.Generations {
		t.Fatalf("series length = %d", len(summary.BestByGeneration))
	}

	history, histStats, err := client.FitnessHistory(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("FitnessHistory: %v", err)
	}
	if len(history) != summary.Generations || histStats.Count != summary.Generations {
		t.Fatalf("history = %v, stats = %+v", history, histStats)
	}

	diagnostics, err := client.Diagnostics(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diagnostics) != summary.Generations {
		t.Fatalf("diagnostics length = %d", len(diagnostics))
	}

	lineage, err := client.Lineage(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("Lineage: %v", err)
	}
	if len(lineage) == 0 {
		t.Fatal("run recorded no lineage")
	}

	if _, err := client.Lineage(ctx, "missing-run"); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestClientRunsDoNotShareLineage(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	seed, err := client.Generate(ctx, GenerateRequest{Domain: model.DomainConsciousness})
	if err != nil {
		t.Fatalf("Generate seed: %v", err)
	}
	request := RunRequest{
		SeedKernelIDs:  []string{seed.ID},
		PopulationSize: 3,
		MaxGenerations: 1,
	}

	first, err := client.Run(ctx, request)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := client.Run(ctx, request)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	firstLineage, err := client.Lineage(ctx, first.RunID)
	if err != nil {
		t.Fatalf("Lineage(first): %v", err)
	}
	secondLineage, err := client.Lineage(ctx, second.RunID)
	if err != nil {
		t.Fatalf("Lineage(second): %v", err)
	}
	if len(firstLineage) == 0 || len(secondLineage) == 0 {
		t.Fatal("both runs should record lineage")
	}

	firstGenomes := make(map[string]bool, len(firstLineage))
	for _, record := range firstLineage {
		firstGenomes[record.GenomeID] = true
	}
	for _, record := range secondLineage {
		if firstGenomes[record.GenomeID] {
			t.Fatalf("run %s lineage contains genome %s from run %s", second.RunID, record.GenomeID, first.RunID)
		}
	}
}
