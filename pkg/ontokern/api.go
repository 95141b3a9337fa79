// Package ontokern is the public entry point: a thin client over the
// kernel generator, the ontogenesis engine, and the persistence layer.
package ontokern

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"ontokern/internal/domain"
	"ontokern/internal/kernel"
	"ontokern/internal/model"
	"ontokern/internal/onto"
	"ontokern/internal/stats"
	"ontokern/internal/storage"
)

const defaultDBPath = "ontokern.db"

type Options struct {
	StoreKind string
	DBPath    string
	Seed      int64
}

type Client struct {
	store     storage.Store
	generator *kernel.Generator
	engine    *onto.Engine
	session   *onto.EvolutionSession
}

// GenerateRequest asks for one kernel. An empty goal picks the domain
// preset's goal; a zero order picks the preset order.
type GenerateRequest struct {
	Domain model.DomainType
	Order  int
	Goal   domain.Goal
}

// KernelSummary is the client-facing digest of a generated kernel.
type KernelSummary struct {
	ID        string
	Domain    model.DomainType
	Order     int
	TreeCount int
	Grip      model.GripMetric
	Verified  bool
}

// RunRequest configures one ontogenesis run.
type RunRequest struct {
	SeedKernelIDs    []string
	PopulationSize   int
	MaxGenerations   int
	FitnessThreshold float64
	ElitismRate      float64
	CrossoverRate    float64
	MutationRate     float64
}

// RunSummary reports the outcome of one ontogenesis run.
type RunSummary struct {
	RunID            string
	Generations      int
	BestByGeneration []float64
	FinalBestFitness float64
	Improvement      float64
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	generator := kernel.NewGenerator()
	session := onto.NewSession()
	engine := onto.NewEngine(rand.New(rand.NewSource(seed)), generator)
	engine.Session = session

	return &Client{
		store:     store,
		generator: generator,
		engine:    engine,
		session:   session,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Generate produces and persists one kernel for a domain.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (KernelSummary, error) {
	preset, err := domain.PresetFor(req.Domain)
	if err != nil {
		return KernelSummary{}, err
	}
	spec := preset.Spec
	if req.Order > 0 {
		spec.Order = req.Order
	}
	goal := preset.Goal
	if req.Goal != "" {
		goal = req.Goal
	}

	k, err := c.generator.Generate(spec, goal)
	if err != nil {
		return KernelSummary{}, err
	}
	if err := c.store.SaveKernel(ctx, k); err != nil {
		return KernelSummary{}, err
	}
	return summarize(k), nil
}

// Compose applies a composition operator to two stored kernels and persists
// the result.
func (c *Client) Compose(ctx context.Context, op kernel.Operator, leftID, rightID string) (KernelSummary, error) {
	left, err := c.loadKernel(ctx, leftID)
	if err != nil {
		return KernelSummary{}, err
	}
	right, err := c.loadKernel(ctx, rightID)
	if err != nil {
		return KernelSummary{}, err
	}

	composed, err := c.generator.ApplyOperator(op, left, right)
	if err != nil {
		return KernelSummary{}, err
	}
	if err := c.store.SaveKernel(ctx, composed); err != nil {
		return KernelSummary{}, err
	}
	return summarize(composed), nil
}

// Export renders a stored kernel in one of the supported formats.
func (c *Client) Export(ctx context.Context, kernelID, format string) (string, error) {
	k, err := c.loadKernel(ctx, kernelID)
	if err != nil {
		return "", err
	}
	return kernel.Export(k, format)
}

// Run executes an ontogenesis run, persisting every generation plus the
// run's fitness history, diagnostics, and lineage. The session is reset
// first so the persisted lineage covers exactly this run; earlier runs keep
// their ancestry under their own run ids.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	c.session.Reset()

	seeds := make([]model.Kernel, 0, len(req.SeedKernelIDs))
	for _, id := range req.SeedKernelIDs {
		k, err := c.loadKernel(ctx, id)
		if err != nil {
			return RunSummary{}, err
		}
		seeds = append(seeds, k)
	}

	generations, err := c.engine.RunOntogenesis(onto.Config{
		SeedKernels:      seeds,
		MaxGenerations:   req.MaxGenerations,
		FitnessThreshold: req.FitnessThreshold,
		Params: onto.Params{
			PopulationSize: req.PopulationSize,
			ElitismRate:    req.ElitismRate,
			CrossoverRate:  req.CrossoverRate,
			MutationRate:   req.MutationRate,
		},
	})
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.New().String()
	for _, pop := range generations {
		if err := c.store.SavePopulation(ctx, pop); err != nil {
			return RunSummary{}, err
		}
	}
	series := stats.BestFitnessSeries(generations)
	if err := c.store.SaveFitnessHistory(ctx, runID, series); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, runID, stats.Diagnostics(generations)); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveLineage(ctx, runID, sessionLineage(c.session)); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		Generations:      len(generations),
		BestByGeneration: series,
		FinalBestFitness: series[len(series)-1],
		Improvement:      stats.Improvement(series),
	}, nil
}

// Lineage returns the persisted ancestry records of a run.
func (c *Client) Lineage(ctx context.Context, runID string) ([]model.LineageRecord, error) {
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return lineage, nil
}

// FitnessHistory returns the per-generation best fitness of a run with its
// summary statistics.
func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, stats.Summary, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, stats.Summary{}, err
	}
	if !ok {
		return nil, stats.Summary{}, fmt.Errorf("run not found: %s", runID)
	}
	return history, stats.Summarize(history), nil
}

// Diagnostics returns the persisted per-generation diagnostics of a run.
func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return diagnostics, nil
}

// Verify reports whether a stored kernel passes verification.
func (c *Client) Verify(ctx context.Context, kernelID string) (bool, error) {
	k, err := c.loadKernel(ctx, kernelID)
	if err != nil {
		return false, err
	}
	return kernel.Verify(k), nil
}

func (c *Client) loadKernel(ctx context.Context, id string) (model.Kernel, error) {
	k, ok, err := c.store.GetKernel(ctx, id)
	if err != nil {
		return model.Kernel{}, err
	}
	if !ok {
		return model.Kernel{}, fmt.Errorf("kernel not found: %s", id)
	}
	return k, nil
}

func summarize(k model.Kernel) KernelSummary {
	return KernelSummary{
		ID:        k.ID,
		Domain:    k.Domain.Type,
		Order:     k.Order,
		TreeCount: len(k.Trees),
		Grip:      k.Grip,
		Verified:  kernel.Verify(k),
	}
}

func sessionLineage(s *onto.EvolutionSession) []model.LineageRecord {
	if s == nil {
		return nil
	}
	out := make([]model.LineageRecord, 0, len(s.Lineage))
	for _, record := range s.Lineage {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Generation != out[j].Generation {
			return out[i].Generation < out[j].Generation
		}
		return out[i].GenomeID < out[j].GenomeID
	})
	return out
}
