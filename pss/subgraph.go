package pss

// PointerSubgraph owns every PSNode created for one analysis instance.
// It is single-threaded and non-reentrant: no mutation is permitted while
// Run (see solve.go) is iterating over it, except Run's own growth of
// points-to sets and functionPointerCall's edge insertion.
type PointerSubgraph struct {
	arena []*PSNode
	root  *PSNode

	// Sentinels. The original dg engine exposes these as two
	// process-wide globals (extern PSNode *NULLPTR / *UNKNOWN_MEMORY);
	// here they are per-subgraph fields instead, so that two
	// PointerSubgraphs built concurrently in the same process don't
	// share mutable node identity (see DESIGN.md, Open Question).
	Nullptr       *PSNode
	UnknownMemory *PSNode
}

// NewPointerSubgraph creates an empty subgraph with its two sentinels
// already allocated (but not yet wired as each other's root/successors --
// the front end is responsible for placing them in the graph it builds).
func NewPointerSubgraph() *PointerSubgraph {
	ps := &PointerSubgraph{}
	ps.Nullptr = ps.NewNode(NullPtr)
	ps.Nullptr.PointsTo.add(Pointer{Target: ps.Nullptr, Offset: 0})
	ps.UnknownMemory = ps.NewNode(UnknownMem)
	ps.UnknownMemory.PointsTo.add(Pointer{Target: ps.UnknownMemory, Offset: UnknownOffset})
	return ps
}

// NewNode allocates a fresh node of the given kind, owned by ps.
func (ps *PointerSubgraph) NewNode(kind Kind) *PSNode {
	n := &PSNode{Kind: kind, Offset: UnknownOffset}
	ps.arena = append(ps.arena, n)
	return n
}

// SetRoot designates the subgraph's entry node.
func (ps *PointerSubgraph) SetRoot(n *PSNode) { ps.root = n }

// Root returns the subgraph's designated entry node.
func (ps *PointerSubgraph) Root() *PSNode { return ps.root }

// AllNodes returns every node ever allocated in this subgraph's arena,
// regardless of reachability. Used by report, graphdump and tests.
func (ps *PointerSubgraph) AllNodes() []*PSNode {
	out := make([]*PSNode, len(ps.arena))
	copy(out, ps.arena)
	return out
}

// Nodes returns every node reachable from start (or from the subgraph's
// root, if start is nil) via successor edges, in stable BFS order. The
// traversal reads *current* successor edges, so nodes added by
// functionPointerCall between calls are discovered.
func (ps *PointerSubgraph) Nodes(start *PSNode) []*PSNode {
	root := start
	if root == nil {
		root = ps.root
	}
	if root == nil {
		return nil
	}
	return bfs([]*PSNode{root}, len(ps.arena))
}

// NodesFrom returns every node reachable from any node in seeds,
// deduplicated, in BFS order consistent with Nodes. expectedHint presizes
// the result's backing array; it does not bound correctness. The
// returned slice always has length >= len(seeds) once seeds are
// deduplicated, since every seed is trivially reachable from itself.
func (ps *PointerSubgraph) NodesFrom(seeds []*PSNode, expectedHint int) []*PSNode {
	return bfs(seeds, expectedHint)
}

func bfs(seeds []*PSNode, hint int) []*PSNode {
	if hint < len(seeds) {
		hint = len(seeds)
	}
	visited := make(map[*PSNode]bool, hint)
	order := make([]*PSNode, 0, hint)
	queue := make([]*PSNode, 0, len(seeds))

	for _, s := range seeds {
		if s == nil || visited[s] {
			continue
		}
		visited[s] = true
		order = append(order, s)
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range cur.succs {
			if visited[s] {
				continue
			}
			visited[s] = true
			order = append(order, s)
			queue = append(queue, s)
		}
	}

	return order
}
