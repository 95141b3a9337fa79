package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"teleport"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected usage error for missing command")
	}
}

func TestGenerateCommand(t *testing.T) {
	err := run(context.Background(), []string{
		"generate", "-store", "memory", "-domain", "computing", "-seed", "7",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
}

func TestTreesCommand(t *testing.T) {
	if err := run(context.Background(), []string{"trees", "-order", "3"}); err != nil {
		t.Fatalf("trees: %v", err)
	}
	if err := run(context.Background(), []string{"trees", "-order", "3", "-domain", "physics"}); err != nil {
		t.Fatalf("trees with domain: %v", err)
	}
	if err := run(context.Background(), []string{"trees", "-order", "-1"}); err == nil {
		t.Fatal("expected error for negative order")
	}
}

func TestComposeRequiresIDs(t *testing.T) {
	err := run(context.Background(), []string{"compose", "-store", "memory"})
	if err == nil || !strings.Contains(err.Error(), "-left") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestEvolveCommand(t *testing.T) {
	err := run(context.Background(), []string{
		"evolve", "-store", "memory", "-seed", "11", "-population", "2", "-generations", "1",
	})
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
}
