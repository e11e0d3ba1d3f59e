package topology

import "fmt"

// DefaultExclusionOrder excludes 1-2, 1-3 and 1-4 neighbors from non-bonded
// interaction: only atoms four or more bonds away remain eligible.
const DefaultExclusionOrder = 3

// Traversal selects how the exclusion tree explores the bond graph.
type Traversal int

const (
	// BreadthFirst assigns every atom its shortest bond-path distance.
	BreadthFirst Traversal = iota
	// DepthFirst assigns traversal depth, visiting neighbors in enumerator
	// order and marking atoms on entry. On graphs with rings an atom can be
	// reached through a longer path first and receive a larger depth.
	DepthFirst
)

func (t Traversal) String() string {
	switch t {
	case BreadthFirst:
		return "bfs"
	case DepthFirst:
		return "dfs"
	default:
		return fmt.Sprintf("traversal(%d)", int(t))
	}
}

// ParseTraversal maps "bfs" or "dfs" to a Traversal.
func ParseTraversal(s string) (Traversal, error) {
	switch s {
	case "bfs", "breadth-first", "":
		return BreadthFirst, nil
	case "dfs", "depth-first":
		return DepthFirst, nil
	default:
		return BreadthFirst, fmt.Errorf("unknown traversal: %s", s)
	}
}

// Node is one atom of an exclusion tree.
type Node struct {
	Atom   int
	Depth  int
	Parent int // -1 for the root
}

// Tree is the set of atoms reachable from a root through the bond graph,
// each visited once, annotated with its depth.
type Tree struct {
	root  int
	nodes []Node
	depth []int // -1 when unreached
}

// BuildTree explores the bond graph from root.
func BuildTree(e Enumerator, root int, t Traversal) (*Tree, error) {
	if g, ok := e.(*Graph); e == nil || (ok && g == nil) {
		return nil, &ConfigurationError{Op: "build exclusion tree", Wrapped: ErrNoBondData}
	}
	n := e.Len()
	if root < 0 || root >= n {
		return nil, fmt.Errorf("%w: %d (atoms: %d)", ErrAtomIndex, root, n)
	}

	tree := &Tree{
		root:  root,
		nodes: make([]Node, 0, n),
		depth: make([]int, n),
	}
	for i := range tree.depth {
		tree.depth[i] = -1
	}

	switch t {
	case DepthFirst:
		tree.depthFirst(e)
	default:
		tree.breadthFirst(e)
	}

	return tree, nil
}

func (tr *Tree) visit(atom, depth, parent int) {
	tr.depth[atom] = depth
	tr.nodes = append(tr.nodes, Node{Atom: atom, Depth: depth, Parent: parent})
}

func (tr *Tree) breadthFirst(e Enumerator) {
	tr.visit(tr.root, 0, -1)

	for head := 0; head < len(tr.nodes); head++ {
		cur := tr.nodes[head]
		for _, nb := range e.Neighbors(cur.Atom) {
			if nb < 0 || nb >= len(tr.depth) || tr.depth[nb] >= 0 {
				continue
			}
			tr.visit(nb, cur.Depth+1, cur.Atom)
		}
	}
}

// depthFirst reproduces recursive pre-order traversal with an explicit
// stack of (atom, next neighbor index) frames.
func (tr *Tree) depthFirst(e Enumerator) {
	type frame struct {
		atom, next int
	}

	tr.visit(tr.root, 0, -1)
	stack := []frame{{atom: tr.root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := e.Neighbors(top.atom)

		if top.next >= len(neighbors) {
			stack = stack[:len(stack)-1]
			continue
		}

		nb := neighbors[top.next]
		top.next++
		if nb < 0 || nb >= len(tr.depth) || tr.depth[nb] >= 0 {
			continue
		}

		tr.visit(nb, tr.depth[top.atom]+1, top.atom)
		stack = append(stack, frame{atom: nb})
	}
}

func (tr *Tree) Root() int { return tr.root }

// Nodes returns the visited atoms in visiting order; the root comes first.
func (tr *Tree) Nodes() []Node {
	c := make([]Node, len(tr.nodes))
	copy(c, tr.nodes)
	return c
}

// Len returns the number of atoms in the tree.
func (tr *Tree) Len() int { return len(tr.nodes) }

// Depth returns the depth of atom and whether it was reached.
func (tr *Tree) Depth(atom int) (int, bool) {
	if atom < 0 || atom >= len(tr.depth) || tr.depth[atom] < 0 {
		return 0, false
	}
	return tr.depth[atom], true
}

// Beyond returns the atoms separated from the root by more than order
// bonds, in visiting order.
func (tr *Tree) Beyond(order int) []int {
	var out []int
	for _, nd := range tr.nodes {
		if nd.Depth >= order+1 {
			out = append(out, nd.Atom)
		}
	}
	return out
}

// Eligible returns the atoms that take part in non-bonded interaction with
// root.
func Eligible(e Enumerator, root, order int, t Traversal) ([]int, error) {
	tree, err := BuildTree(e, root, t)
	if err != nil {
		return nil, err
	}
	return tree.Beyond(order), nil
}
