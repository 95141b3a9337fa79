package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// DomainType enumerates the problem domains kernels can be tuned for.
type DomainType string

const (
	DomainPhysics       DomainType = "physics"
	DomainChemistry     DomainType = "chemistry"
	DomainBiology       DomainType = "biology"
	DomainComputing     DomainType = "computing"
	DomainConsciousness DomainType = "consciousness"
)

// DomainSpec declares the target domain of a kernel.
type DomainSpec struct {
	Type      DomainType `json:"type"`
	Order     int        `json:"order"`
	TreeType  string     `json:"tree_type"`
	Symmetry  string     `json:"symmetry"`
	Preserves []string   `json:"preserves,omitempty"`
}

// TreeNode is one node in a rooted-tree arena. Children index into the
// owning Tree's node slice.
type TreeNode struct {
	Order    int    `json:"order"`
	Label    string `json:"label"`
	Children []int  `json:"children,omitempty"`
}

// Tree is a rooted tree stored as an arena of nodes addressed by index.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
	Root  int        `json:"root"`
}

// Order reports the order of the whole tree (the root node's order).
func (t Tree) Order() int {
	if t.Root < 0 || t.Root >= len(t.Nodes) {
		return 0
	}
	return t.Nodes[t.Root].Order
}

// Label reports the root node's structural label.
func (t Tree) Label() string {
	if t.Root < 0 || t.Root >= len(t.Nodes) {
		return ""
	}
	return t.Nodes[t.Root].Label
}

// ButcherTableau holds the a/b/c coefficients of a Runge-Kutta method.
// The a matrix is strictly lower triangular.
type ButcherTableau struct {
	Order  int         `json:"order"`
	Stages int         `json:"stages"`
	A      [][]float64 `json:"a"`
	B      []float64   `json:"b"`
	C      []float64   `json:"c"`
}

// GripMetric scores a coefficient vector against a domain's expectations.
// All components lie in [0, 1].
type GripMetric struct {
	Contact    float64 `json:"contact"`
	Coverage   float64 `json:"coverage"`
	Efficiency float64 `json:"efficiency"`
	Stability  float64 `json:"stability"`
	Overall    float64 `json:"overall"`
}

// OverallScore combines the four components with the fixed
// 0.3/0.3/0.2/0.2 weighting.
func (g GripMetric) OverallScore() float64 {
	return 0.3*g.Contact + 0.3*g.Coverage + 0.2*g.Efficiency + 0.2*g.Stability
}

// ExpansionTerm pairs a rooted tree with its coefficient and grip weight.
type ExpansionTerm struct {
	Tree        Tree    `json:"tree"`
	Coefficient float64 `json:"coefficient"`
	Weight      float64 `json:"weight"`
}

// Expansion is a B-series expansion: a weighted sum over rooted trees.
type Expansion struct {
	Domain           DomainSpec      `json:"domain"`
	ConvergenceOrder int             `json:"convergence_order"`
	Terms            []ExpansionTerm `json:"terms"`
	Grip             GripMetric      `json:"grip"`
}

// Kernel is a fully assembled numerical kernel. Trees and Coefficients are
// parallel arrays and stay parallel for the kernel's lifetime.
type Kernel struct {
	VersionedRecord
	ID                  string     `json:"id"`
	Domain              DomainSpec `json:"domain"`
	Order               int        `json:"order"`
	Trees               []Tree     `json:"trees"`
	Coefficients        []float64  `json:"coefficients"`
	Grip                GripMetric `json:"grip"`
	Expansion           Expansion  `json:"expansion"`
	GeneratedAt         time.Time  `json:"generated_at"`
	EngineVersion       string     `json:"engine_version"`
	OptimizerIterations int        `json:"optimizer_iterations"`
}

// GeneType classifies genes in a kernel genome.
type GeneType string

const (
	GeneCoefficient  GeneType = "coefficient"
	GeneSymmetry     GeneType = "symmetry"
	GenePreservation GeneType = "preservation"
)

// Gene is one unit of heredity in a kernel genome. Coefficient genes carry
// a numeric value; symmetry and preservation genes carry a label and are
// immutable.
type Gene struct {
	Name       string   `json:"name"`
	Type       GeneType `json:"type"`
	Value      float64  `json:"value,omitempty"`
	Label      string   `json:"label,omitempty"`
	Expression float64  `json:"expression"`
	Mutable    bool     `json:"mutable"`
}

// Genome encodes a kernel's heritable attributes. Lineage is append-only.
type Genome struct {
	VersionedRecord
	ID         string   `json:"id"`
	Generation int      `json:"generation"`
	Lineage    []string `json:"lineage,omitempty"`
	Genes      []Gene   `json:"genes"`
	Fitness    float64  `json:"fitness"`
	Age        int      `json:"age"`
}

// Stage is a developmental stage. Transitions are forward-only.
type Stage string

const (
	StageEmbryonic Stage = "embryonic"
	StageJuvenile  Stage = "juvenile"
	StageMature    Stage = "mature"
	StageSenescent Stage = "senescent"
)

// MutationRecord logs one coefficient perturbation.
type MutationRecord struct {
	Index    int     `json:"index"`
	OldValue float64 `json:"old_value"`
	NewValue float64 `json:"new_value"`
}

// DevelopmentEvent is one entry in an individual's development history.
type DevelopmentEvent struct {
	Kind       string  `json:"kind"`
	Detail     string  `json:"detail,omitempty"`
	GripDelta  float64 `json:"grip_delta,omitempty"`
	Generation int     `json:"generation"`
}

// OntogeneticState tracks the developmental condition of one individual.
type OntogeneticState struct {
	Stage                  Stage              `json:"stage"`
	Maturity               float64            `json:"maturity"`
	ReproductiveCapability float64            `json:"reproductive_capability"`
	Mutations              []MutationRecord   `json:"mutations,omitempty"`
	DevelopmentHistory     []DevelopmentEvent `json:"development_history,omitempty"`
}

// Individual is an ontogenetic kernel: a kernel wrapped with its genome and
// developmental state.
type Individual struct {
	Kernel Kernel           `json:"kernel"`
	Genome Genome           `json:"genome"`
	State  OntogeneticState `json:"state"`
}

// Population is one generation of individuals. Size stays constant across
// generations.
type Population struct {
	VersionedRecord
	ID             string       `json:"id"`
	Generation     int          `json:"generation"`
	Individuals    []Individual `json:"individuals"`
	PopulationSize int          `json:"population_size"`
	AverageFitness float64      `json:"average_fitness"`
	BestFitness    float64      `json:"best_fitness"`
	Diversity      float64      `json:"diversity"`
}

// LineageRecord is one edge set in the ancestry graph of a run.
type LineageRecord struct {
	GenomeID   string   `json:"genome_id"`
	ParentIDs  []string `json:"parent_ids,omitempty"`
	Generation int      `json:"generation"`
	Operation  string   `json:"operation"`
}

// GenerationDiagnostics summarizes one generation of a run.
type GenerationDiagnostics struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	AverageFitness float64 `json:"average_fitness"`
	MinFitness     float64 `json:"min_fitness"`
	Diversity      float64 `json:"diversity"`
}
