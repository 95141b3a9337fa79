package tree

import (
	"testing"

	"ontokern/internal/model"
)

func TestCountMatchesRootedTreeTable(t *testing.T) {
	cases := map[int]int{
		0:  1,
		1:  1,
		2:  1,
		3:  2,
		4:  4,
		5:  9,
		6:  20,
		14: 32973,
	}
	for n, want := range cases {
		if got := Count(n); got != want {
			t.Fatalf("Count(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestCountAsymptoticBeyondTable(t *testing.T) {
	if got := Count(15); got <= Count(14) {
		t.Fatalf("Count(15) = %d, expected growth past the exact table", got)
	}
}

func TestGenerateCatalogSizes(t *testing.T) {
	sizes := map[int]int{1: 1, 2: 1, 3: 2, 4: 5}
	for order, want := range sizes {
		forest, err := Generate(order)
		if err != nil {
			t.Fatalf("Generate(%d): %v", order, err)
		}
		if len(forest) != want {
			t.Fatalf("Generate(%d) returned %d trees, want %d", order, len(forest), want)
		}
		for _, tr := range forest {
			if tr.Order() != order {
				t.Fatalf("Generate(%d) produced tree of order %d", order, tr.Order())
			}
		}
	}
}

func TestGenerateOrderFourDisagreesWithCount(t *testing.T) {
	forest, err := Generate(4)
	if err != nil {
		t.Fatalf("Generate(4): %v", err)
	}
	if len(forest) == Count(4) {
		t.Fatalf("catalog erratum lost: Generate(4)=%d now equals Count(4)", len(forest))
	}
}

func TestGenerateHigherOrderUsesPartitions(t *testing.T) {
	forest, err := Generate(6)
	if err != nil {
		t.Fatalf("Generate(6): %v", err)
	}
	// One tree per partition of 5.
	if len(forest) != 7 {
		t.Fatalf("Generate(6) returned %d trees, want 7", len(forest))
	}
	for _, tr := range forest {
		if tr.Order() != 6 {
			t.Fatalf("unexpected order %d", tr.Order())
		}
	}
}

func TestGenerateRejectsInvalidOrder(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Fatal("expected error for order 0")
	}
}

func TestDomainSpecificRelabeling(t *testing.T) {
	spec := model.DomainSpec{Type: model.DomainPhysics, Order: 3}
	forest, err := GenerateDomainSpecific(spec, 3)
	if err != nil {
		t.Fatalf("GenerateDomainSpecific: %v", err)
	}
	if got := forest[1].Label(); got != "H[H[H]]" {
		t.Fatalf("relabeled tall order-3 tree = %q, want H[H[H]]", got)
	}
	for _, tr := range forest {
		for _, n := range tr.Nodes {
			if n.Label == "" || n.Label[0] != 'H' {
				t.Fatalf("node label %q not relabeled", n.Label)
			}
		}
	}
}

func TestSymmetryFactor(t *testing.T) {
	if got := SymmetryFactor(Leaf()); got != 1 {
		t.Fatalf("leaf symmetry factor = %d, want 1", got)
	}
	// Root with two equal leaf children: 2!.
	if got := SymmetryFactor(Node(Leaf(), Leaf())); got != 2 {
		t.Fatalf("bushy order-3 symmetry factor = %d, want 2", got)
	}
	// Root with three equal leaf children: 3!.
	if got := SymmetryFactor(Node(Leaf(), Leaf(), Leaf())); got != 6 {
		t.Fatalf("bushy order-4 symmetry factor = %d, want 6", got)
	}
	// Distinct children contribute no multiplicity factorial.
	if got := SymmetryFactor(Node(Node(Leaf()), Leaf())); got != 1 {
		t.Fatalf("mixed order-4 symmetry factor = %d, want 1", got)
	}
	// Two equal non-leaf children: 2! times inner factors of 1.
	if got := SymmetryFactor(Node(Node(Leaf()), Node(Leaf()))); got != 2 {
		t.Fatalf("double-chain symmetry factor = %d, want 2", got)
	}
}

func TestDepthAndChildDepths(t *testing.T) {
	tall := Node(Node(Node(Leaf())))
	if got := Depth(tall); got != 4 {
		t.Fatalf("Depth = %d, want 4", got)
	}
	mixed := Node(Node(Leaf()), Leaf())
	depths := ChildDepths(mixed)
	if len(depths) != 2 || depths[0] != 2 || depths[1] != 1 {
		t.Fatalf("ChildDepths = %v, want [2 1]", depths)
	}
	if got := ChildDepths(Leaf()); len(got) != 0 {
		t.Fatalf("leaf ChildDepths = %v, want empty", got)
	}
}

func TestSubtreeExtraction(t *testing.T) {
	parent := Node(Node(Leaf()), Leaf())
	childRoot := parent.Nodes[parent.Root].Children[0]
	sub := Subtree(parent, childRoot)
	if sub.Order() != 2 || sub.Label() != "f[f]" {
		t.Fatalf("subtree = order %d label %q", sub.Order(), sub.Label())
	}
}
