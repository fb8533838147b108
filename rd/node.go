package rd

import "github.com/o2lab/reach/pss"

// RDNode is one node of the reaching-definitions graph: a program point
// that may define part of a memory object, together with its successor
// edges (§4.6, §4.9). Unlike pss.PSNode, an RDNode's def-site table is
// populated directly by the builder rather than by a solver — the RD
// layer only builds the graph here; propagating definitions across it
// belongs to whatever client walks the result (out of scope per §1).
type RDNode struct {
	Name string

	// DefSites reuses pss.DefSite's shape, with Def holding the *RDNode*
	// that performs the write (never a pss.Pointer — the two packages
	// share the struct shape, not its meaning; see DESIGN.md).
	DefSites []pss.DefSite

	succs []*RDNode
}

// AddSuccessor adds a directed control-flow edge n -> s.
func (n *RDNode) AddSuccessor(s *RDNode) {
	if s == nil || s == n {
		return
	}
	for _, existing := range n.succs {
		if existing == s {
			return
		}
	}
	n.succs = append(n.succs, s)
}

// Successors returns n's successor nodes.
func (n *RDNode) Successors() []*RDNode {
	return n.succs
}

// AddDef records that this node may write [lo, lo+size) of the memory
// object rooted at target.
func (n *RDNode) AddDef(target *RDNode, lo, size pss.Offset, strong bool) {
	n.DefSites = append(n.DefSites, pss.DefSite{Def: target, Lo: lo, Size: size, Strong: strong})
}

// Subgraph is one function's reaching-definitions subgraph: a single
// entry node and a single (unified) exit node, exactly as
// buildFunction's root/ret pair in the original (§4.7).
type Subgraph struct {
	Root *RDNode
	Ret  *RDNode
}
