// Package graphdump adapts a solved PointerSubgraph or a reaching-
// definitions Graph into a github.com/twmb/algoimpl/go/graph generic
// directed graph, for ad-hoc traversal or dot-style printing during
// debugging (§2 item 9 of the expanded spec). It is a thin adapter, not
// a core-engine dependency: nothing in pss or rd imports this package.
package graphdump

import (
	"fmt"

	"github.com/twmb/algoimpl/go/graph"

	"github.com/o2lab/reach/pss"
	"github.com/o2lab/reach/rd"
)

// PSS materializes every node in ps's arena and every successor edge
// between them as a generic directed graph. Each graph.Node's Value
// holds the originating *pss.PSNode, so a caller can recover it after
// any traversal algorithm algoimpl/go/graph offers.
func PSS(ps *pss.PointerSubgraph) (*graph.Graph, error) {
	g := graph.New(graph.Directed)

	nodes := make(map[*pss.PSNode]graph.Node, len(ps.AllNodes()))
	for _, n := range ps.AllNodes() {
		gn := g.MakeNode()
		*gn.Value = n
		nodes[n] = gn
	}

	for _, n := range ps.AllNodes() {
		for _, s := range n.Successors() {
			if err := g.MakeEdge(nodes[n], nodes[s]); err != nil {
				return nil, fmt.Errorf("graphdump: adding PSS edge %s -> %s: %w", label(n), label(s), err)
			}
		}
	}

	return g, nil
}

// RD materializes graph's reachable RDNodes and their successor edges.
func RD(rg *rd.Graph) (*graph.Graph, error) {
	g := graph.New(graph.Directed)

	nodes := make(map[*rd.RDNode]graph.Node)
	rg.Walk(func(n *rd.RDNode) {
		gn := g.MakeNode()
		*gn.Value = n
		nodes[n] = gn
	})

	var buildErr error
	rg.Walk(func(n *rd.RDNode) {
		if buildErr != nil {
			return
		}
		for _, s := range n.Successors() {
			if err := g.MakeEdge(nodes[n], nodes[s]); err != nil {
				buildErr = fmt.Errorf("graphdump: adding RD edge: %w", err)
				return
			}
		}
	})
	if buildErr != nil {
		return nil, buildErr
	}

	return g, nil
}

func label(n *pss.PSNode) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("%s@%p", n.Kind, n)
}
