package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"ontokern/internal/domain"
	"ontokern/internal/kernel"
	"ontokern/internal/model"
	"ontokern/internal/tree"
	ontoapi "ontokern/pkg/ontokern"
)

var logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.Kitchen,
}))

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "trees":
		return runTrees(args[1:])
	case "compose":
		return runCompose(ctx, args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(message string) error {
	return fmt.Errorf("%s\nusage: ontokernctl <init|generate|trees|compose|evolve|lineage|fitness|diagnostics|export> [flags]", message)
}

func storeFlags(fs *flag.FlagSet) (*string, *string, *int64) {
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "ontokern.db", "sqlite database path")
	seed := fs.Int64("seed", 0, "random seed (0 uses wall clock)")
	return storeKind, dbPath, seed
}

func openClient(ctx context.Context, storeKind, dbPath string, seed int64) (*ontoapi.Client, error) {
	client, err := ontoapi.New(ontoapi.Options{StoreKind: storeKind, DBPath: dbPath, Seed: seed})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	domainName := fs.String("domain", "physics", "target domain: physics|chemistry|biology|computing|consciousness")
	order := fs.Int("order", 0, "expansion order (0 uses the domain preset)")
	goal := fs.String("goal", "", "optimization goal: speed|accuracy|stability|balanced")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	started := time.Now()
	summary, err := client.Generate(ctx, ontoapi.GenerateRequest{
		Domain: model.DomainType(*domainName),
		Order:  *order,
		Goal:   domain.Goal(*goal),
	})
	if err != nil {
		return err
	}
	logger.Info("kernel generated",
		"domain", summary.Domain,
		"order", summary.Order,
		"trees", summary.TreeCount,
		"grip", summary.Grip.Overall,
		"elapsed", time.Since(started))

	fmt.Printf("kernel=%s domain=%s order=%d trees=%d grip=%.4f verified=%v\n",
		summary.ID, summary.Domain, summary.Order, summary.TreeCount, summary.Grip.Overall, summary.Verified)
	return nil
}

func runTrees(args []string) error {
	fs := flag.NewFlagSet("trees", flag.ContinueOnError)
	order := fs.Int("order", 4, "tree order to enumerate")
	domainName := fs.String("domain", "", "relabel trees with a domain glyph")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		forest []model.Tree
		err    error
	)
	if *domainName != "" {
		spec := model.DomainSpec{Type: model.DomainType(*domainName)}
		forest, err = tree.GenerateDomainSpecific(spec, *order)
	} else {
		forest, err = tree.Generate(*order)
	}
	if err != nil {
		return err
	}

	fmt.Printf("order=%d enumerated=%d counted=%d\n", *order, len(forest), tree.Count(*order))
	for i, t := range forest {
		fmt.Printf("  %2d  symmetry=%-3d %s\n", i, tree.SymmetryFactor(t), t.Label())
	}
	return nil
}

func runCompose(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	op := fs.String("op", "chain", "composition operator: chain|product|quotient")
	left := fs.String("left", "", "left kernel id")
	right := fs.String("right", "", "right kernel id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *left == "" || *right == "" {
		return usageError("compose requires -left and -right kernel ids")
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Compose(ctx, kernel.Operator(*op), *left, *right)
	if err != nil {
		return err
	}
	fmt.Printf("kernel=%s op=%s order=%d grip=%.4f\n", summary.ID, *op, summary.Order, summary.Grip.Overall)
	return nil
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	seedIDs := fs.String("seeds", "", "comma-separated seed kernel ids")
	populationSize := fs.Int("population", 10, "population size")
	generations := fs.Int("generations", 10, "maximum generations")
	threshold := fs.Float64("threshold", 0, "early-stop fitness threshold (0 disables)")
	elitism := fs.Float64("elitism", 0.1, "elitism rate")
	crossover := fs.Float64("crossover", 0.7, "crossover rate")
	mutation := fs.Float64("mutation", 0.1, "mutation rate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var ids []string
	if *seedIDs != "" {
		ids = strings.Split(*seedIDs, ",")
	}

	started := time.Now()
	summary, err := client.Run(ctx, ontoapi.RunRequest{
		SeedKernelIDs:    ids,
		PopulationSize:   *populationSize,
		MaxGenerations:   *generations,
		FitnessThreshold: *threshold,
		ElitismRate:      *elitism,
		CrossoverRate:    *crossover,
		MutationRate:     *mutation,
	})
	if err != nil {
		return err
	}
	logger.Info("ontogenesis run complete",
		"run", summary.RunID,
		"generations", summary.Generations,
		"best", summary.FinalBestFitness,
		"improvement", summary.Improvement,
		"elapsed", time.Since(started))

	fmt.Printf("run=%s generations=%d best=%.4f improvement=%+.4f\n",
		summary.RunID, summary.Generations, summary.FinalBestFitness, summary.Improvement)
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("lineage requires -run")
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	lineage, err := client.Lineage(ctx, *runID)
	if err != nil {
		return err
	}
	for _, record := range lineage {
		fmt.Printf("gen=%-3d op=%-13s genome=%s parents=%v\n",
			record.Generation, record.Operation, record.GenomeID, record.ParentIDs)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("fitness requires -run")
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, summary, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	for generation, best := range history {
		fmt.Printf("gen=%-3d best=%.4f\n", generation, best)
	}
	fmt.Printf("min=%.4f max=%.4f mean=%.4f stddev=%.4f\n", summary.Min, summary.Max, summary.Mean, summary.StdDev)
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	asJSON := fs.Bool("json", false, "emit diagnostics as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires -run")
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	if *asJSON {
		payload, err := json.MarshalIndent(diagnostics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	}
	for _, d := range diagnostics {
		fmt.Printf("gen=%-3d best=%.4f avg=%.4f min=%.4f diversity=%.4f\n",
			d.Generation, d.BestFitness, d.AverageFitness, d.MinFitness, d.Diversity)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath, seed := storeFlags(fs)
	kernelID := fs.String("kernel", "", "kernel id")
	format := fs.String("format", "json", "export format: json|ggml|scheme")
	outPath := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *kernelID == "" {
		return usageError("export requires -kernel")
	}

	client, err := openClient(ctx, *storeKind, *dbPath, *seed)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	out, err := client.Export(ctx, *kernelID, *format)
	if err != nil {
		return err
	}
	if *outPath == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(*outPath, []byte(out), 0o644); err != nil {
		return err
	}
	logger.Info("kernel exported", "kernel", *kernelID, "format", *format, "path", *outPath)
	return nil
}
