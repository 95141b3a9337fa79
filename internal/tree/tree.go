package tree

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"ontokern/internal/model"
)

var ErrInvalidOrder = errors.New("tree order must be >= 1")

// countTable is A000081 for n = 0..14: the number of rooted trees with n
// nodes.
var countTable = []int{1, 1, 1, 2, 4, 9, 20, 48, 115, 286, 719, 1842, 4766, 12486, 32973}

// otterConstant drives the asymptotic approximation used past the exact
// table.
const otterConstant = 2.9557652856

// Count reports the number of rooted trees of order n. Exact for n <= 14,
// an asymptotic approximation beyond. Note that Generate(4) intentionally
// returns one tree more than Count(4); the catalog carries a documented
// erratum and the two are not reconciled.
func Count(n int) int {
	if n < 0 {
		return 0
	}
	if n < len(countTable) {
		return countTable[n]
	}
	return int(math.Floor(math.Pow(otterConstant, float64(n)) / math.Sqrt(float64(n))))
}

// Generate returns the canonical forest for the given order. Orders 1-4 come
// from a fixed catalog; higher orders are built recursively, one tree per
// integer partition of order-1, using the structurally-first tree of each
// part as a child.
func Generate(order int) ([]model.Tree, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	switch order {
	case 1:
		return []model.Tree{Leaf()}, nil
	case 2:
		return []model.Tree{Node(Leaf())}, nil
	case 3:
		return []model.Tree{
			Node(Leaf(), Leaf()),
			Node(Node(Leaf())),
		}, nil
	case 4:
		// Catalog erratum: five entries, while Count(4) reports four. The
		// bushy order-3 subtree appears in both child positions.
		return []model.Tree{
			Node(Leaf(), Leaf(), Leaf()),
			Node(Node(Leaf()), Leaf()),
			Node(Leaf(), Node(Leaf())),
			Node(Node(Leaf(), Leaf())),
			Node(Node(Node(Leaf()))),
		}, nil
	}

	parts := partitions(order - 1)
	forest := make([]model.Tree, 0, len(parts))
	for _, part := range parts {
		children := make([]model.Tree, 0, len(part))
		for _, sub := range part {
			subForest, err := Generate(sub)
			if err != nil {
				return nil, err
			}
			children = append(children, subForest[0])
		}
		forest = append(forest, Node(children...))
	}
	return forest, nil
}

// GenerateDomainSpecific enumerates trees for the order and substitutes the
// generic function symbol with the domain's glyph throughout every label.
func GenerateDomainSpecific(domain model.DomainSpec, order int) ([]model.Tree, error) {
	forest, err := Generate(order)
	if err != nil {
		return nil, err
	}
	glyph := Glyph(domain.Type)
	if glyph == "f" {
		return forest, nil
	}
	relabeled := make([]model.Tree, len(forest))
	for i, t := range forest {
		relabeled[i] = Relabel(t, glyph)
	}
	return relabeled, nil
}

// Glyph maps a domain type to its function symbol.
func Glyph(domain model.DomainType) string {
	switch domain {
	case model.DomainPhysics:
		return "H"
	case model.DomainChemistry:
		return "R"
	case model.DomainBiology:
		return "M"
	case model.DomainComputing:
		return "λ"
	case model.DomainConsciousness:
		return "Ψ"
	default:
		return "f"
	}
}

// Relabel substitutes the generic symbol with glyph in every node label of
// the tree, subtree labels included.
func Relabel(t model.Tree, glyph string) model.Tree {
	nodes := make([]model.TreeNode, len(t.Nodes))
	for i, n := range t.Nodes {
		nodes[i] = model.TreeNode{
			Order:    n.Order,
			Label:    strings.ReplaceAll(n.Label, "f", glyph),
			Children: append([]int(nil), n.Children...),
		}
	}
	return model.Tree{Nodes: nodes, Root: t.Root}
}

// Leaf builds the order-1 tree: a bare root labeled f.
func Leaf() model.Tree {
	return model.Tree{
		Nodes: []model.TreeNode{{Order: 1, Label: "f"}},
		Root:  0,
	}
}

// Node builds a tree whose root has the given subtrees as ordered children.
// Subtree arenas are merged into a fresh arena; inputs stay untouched.
func Node(children ...model.Tree) model.Tree {
	nodes := make([]model.TreeNode, 0, 1)
	childRoots := make([]int, 0, len(children))
	order := 1
	labels := make([]string, 0, len(children))
	for _, child := range children {
		offset := len(nodes)
		for _, n := range child.Nodes {
			shifted := make([]int, len(n.Children))
			for j, c := range n.Children {
				shifted[j] = c + offset
			}
			nodes = append(nodes, model.TreeNode{Order: n.Order, Label: n.Label, Children: shifted})
		}
		childRoots = append(childRoots, child.Root+offset)
		order += child.Order()
		labels = append(labels, child.Label())
	}
	label := "f"
	if len(children) > 0 {
		label = "f[" + strings.Join(labels, ",") + "]"
	}
	nodes = append(nodes, model.TreeNode{Order: order, Label: label, Children: childRoots})
	return model.Tree{Nodes: nodes, Root: len(nodes) - 1}
}

// Subtree extracts the subtree rooted at the given node index as a
// standalone tree.
func Subtree(t model.Tree, root int) model.Tree {
	index := map[int]int{}
	var nodes []model.TreeNode
	var visit func(i int) int
	visit = func(i int) int {
		if mapped, ok := index[i]; ok {
			return mapped
		}
		n := t.Nodes[i]
		children := make([]int, len(n.Children))
		for j, c := range n.Children {
			children[j] = visit(c)
		}
		nodes = append(nodes, model.TreeNode{Order: n.Order, Label: n.Label, Children: children})
		index[i] = len(nodes) - 1
		return index[i]
	}
	newRoot := visit(root)
	return model.Tree{Nodes: nodes, Root: newRoot}
}

// SymmetryFactor computes the symmetry factor of a tree: the product over
// groups of structurally equal immediate children of the factorial of each
// group's multiplicity, times every child's own symmetry factor.
func SymmetryFactor(t model.Tree) int {
	memo := make(map[int]uint64, len(t.Nodes))
	return symmetryFactorAt(t, t.Root, memo)
}

func symmetryFactorAt(t model.Tree, root int, memo map[int]uint64) int {
	children := t.Nodes[root].Children
	if len(children) == 0 {
		return 1
	}
	factor := 1
	multiplicity := map[uint64]int{}
	for _, c := range children {
		multiplicity[structuralHash(t, c, memo)]++
		factor *= symmetryFactorAt(t, c, memo)
	}
	hashes := make([]uint64, 0, len(multiplicity))
	for h := range multiplicity {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	for _, h := range hashes {
		factor *= factorial(multiplicity[h])
	}
	return factor
}

// structuralHash returns a memoized hash of the subtree rooted at i. Two
// subtrees with equal hashes are treated as structurally equal, which
// replaces recursive deep comparison during child grouping.
func structuralHash(t model.Tree, i int, memo map[int]uint64) uint64 {
	if h, ok := memo[i]; ok {
		return h
	}
	hasher := fnv.New64a()
	n := t.Nodes[i]
	fmt.Fprintf(hasher, "%d:%s:", n.Order, n.Label)
	for _, c := range n.Children {
		fmt.Fprintf(hasher, "%x,", structuralHash(t, c, memo))
	}
	h := hasher.Sum64()
	memo[i] = h
	return h
}

// Depth reports the height of the tree; a leaf has depth 1.
func Depth(t model.Tree) int {
	return depthAt(t, t.Root)
}

func depthAt(t model.Tree, root int) int {
	max := 0
	for _, c := range t.Nodes[root].Children {
		if d := depthAt(t, c); d > max {
			max = d
		}
	}
	return max + 1
}

// ChildDepths reports the depths of the root's immediate subtrees.
func ChildDepths(t model.Tree) []int {
	children := t.Nodes[t.Root].Children
	depths := make([]int, len(children))
	for i, c := range children {
		depths[i] = depthAt(t, c)
	}
	return depths
}

// partitions enumerates the integer partitions of n with parts in
// non-increasing order.
func partitions(n int) [][]int {
	var out [][]int
	var build func(remaining, max int, prefix []int)
	build = func(remaining, max int, prefix []int) {
		if remaining == 0 {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for part := min(remaining, max); part >= 1; part-- {
			build(remaining-part, part, append(prefix, part))
		}
	}
	build(n, n, nil)
	return out
}

func factorial(n int) int {
	out := 1
	for i := 2; i <= n; i++ {
		out *= i
	}
	return out
}
