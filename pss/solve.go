package pss

import "fmt"

// This file implements the Andersen-style fixpoint solver described in
// §4.4. The overall shape — snapshot the worklist size, clear the
// changed set, iterate, then re-seed the worklist from exactly the
// changed nodes via a fresh reachability walk — is adapted from the
// teacher's solve()/solveDefault() in gopta/go/pointer/solve.go, with
// the unit of work widened from a single constraint/nodeid to a whole
// PSNode dispatched on its Kind, per §4.4's closed dispatch table.

// Run executes the fixpoint solver to completion and returns a Result
// the client can query. It never mutates ps after returning, and it
// never suspends or performs I/O mid-loop (§5).
//
// A missing root is the one structural error class (§7) this layer can
// hit before any work starts; Run reports it as an error rather than
// aborting the process, leaving the fatal/log.Fatal decision to the CLI
// boundary, not the library.
func Run(ps *PointerSubgraph, analysis Analysis, config Config) (*Result, error) {
	if ps.Root() == nil {
		return nil, fmt.Errorf("pss: PointerSubgraph has no root")
	}

	if config.PreprocessGEPs {
		preprocessGEPs(ps)
	}

	toProcess := ps.Nodes(nil)

	for len(toProcess) > 0 {
		lastProcessedNum := len(toProcess)
		var changed []*PSNode

		for _, cur := range toProcess {
			before := analysis.BeforeProcessed(cur)
			processed := processNode(cur, ps, analysis, config)
			after := analysis.AfterProcessed(cur)

			if before || processed || after {
				changed = append(changed, cur)
			}
		}

		toProcess = nil
		if len(changed) > 0 {
			toProcess = ps.NodesFrom(changed, lastProcessedNum)
			if len(toProcess) < len(changed) {
				panic("pss: reachability walk dropped changed nodes")
			}
		}
	}

	return &Result{ps: ps}, nil
}

// preprocessGEPs forces every GEP node inside a non-trivial SCC to
// UnknownOffset (§4.3). It never removes pointers from the eventual
// answer — it only saves fixpoint iterations.
func preprocessGEPs(ps *PointerSubgraph) {
	for _, scc := range SCC(ps.Root()) {
		if len(scc) <= 1 {
			continue
		}
		for _, n := range scc {
			if n.Kind == Gep {
				n.Offset = UnknownOffset
			}
		}
	}
}

// processNode dispatches n's transfer function by kind and reports
// whether n's points-to set (or the memory state it writes through)
// grew. Every transfer function here is monotone.
func processNode(n *PSNode, ps *PointerSubgraph, a Analysis, cfg Config) bool {
	switch n.Kind {
	case Alloc:
		return n.PointsTo.add(Pointer{Target: n, Offset: 0})

	case Constant:
		// A constant pointer value denotes itself at its own fixed
		// offset, by analogy with Alloc (§9: the rewrite resolves
		// open questions rather than leaving them unspecified; see
		// DESIGN.md).
		off := n.Offset
		if off == UnknownOffset {
			off = 0
		}
		return n.PointsTo.add(Pointer{Target: n, Offset: off})

	case Cast, Noop:
		return processCopy(n)

	case Gep:
		return processGep(n, cfg)

	case Load:
		return processLoad(n, a)

	case Store:
		return processStore(n, a)

	case Phi:
		return processPhi(n)

	case Call, Return, Function:
		return processCall(n, a)

	case NullPtr, UnknownMem:
		// Fixed points, seeded once at subgraph construction; always
		// stable thereafter.
		return false

	default:
		panic("pss: unknown PSNode kind in processNode")
	}
}

func processCopy(n *PSNode) bool {
	if len(n.Operands) == 0 {
		return false
	}
	return n.PointsTo.addAll(&n.Operands[0].PointsTo)
}

func processGep(n *PSNode, cfg Config) bool {
	if len(n.Operands) == 0 {
		return false
	}
	changed := false
	for _, p := range n.Operands[0].Pointers() {
		np := Pointer{Target: p.Target, Offset: p.Offset.Add(n.Offset, cfg.MaxOffset)}
		if n.PointsTo.add(np) {
			changed = true
		}
	}
	return changed
}

// processLoad implements §4.4's LOAD row. For every (t, off) the address
// operand may hold, it asks the analysis for the memory objects relevant
// at this load, reads back whatever was stored at the matching offset
// (or any overlapping interval when off is unknown), and unions those
// stored pointers into self.
func processLoad(n *PSNode, a Analysis) bool {
	if len(n.Operands) == 0 {
		return false
	}
	addr := n.Operands[0]
	changed := false

	for _, p := range addr.Pointers() {
		for _, obj := range a.GetMemoryObjects(n, p) {
			size := Offset(1)
			if p.Offset == UnknownOffset {
				size = UnknownOffset
			}
			for _, d := range obj.DefsAt(p.Offset, size) {
				if stored, ok := d.Def.(Pointer); ok {
					if n.PointsTo.add(stored) {
						changed = true
					}
				}
			}
		}
	}

	if addr.PointsTo.isEmpty() {
		if a.ErrorEmptyPointsTo(addr, n) {
			changed = true
		}
	}

	return changed
}

// processStore implements §4.4's STORE row (processMemcpy in the
// original): for every (t, off) in the destination operand's points-to,
// obtain memory objects and record every pointer in the source operand's
// points-to as a def entry there. strong updates are only legal when the
// destination's points-to set is a singleton.
func processStore(n *PSNode, a Analysis) bool {
	if len(n.Operands) < 2 {
		return false
	}
	dst, src := n.Operands[0], n.Operands[1]
	strong := dst.PointsTo.len() == 1
	changed := false

	for _, p := range dst.Pointers() {
		for _, obj := range a.GetMemoryObjects(n, p) {
			for _, sp := range src.Pointers() {
				if obj.AddDef(sp, p.Offset, 1, strong) {
					changed = true
				}
			}
		}
	}

	if dst.PointsTo.isEmpty() {
		if a.ErrorEmptyPointsTo(dst, n) {
			changed = true
		}
	}

	return changed
}

func processPhi(n *PSNode) bool {
	changed := false
	for _, op := range n.Operands {
		if n.PointsTo.addAll(&op.PointsTo) {
			changed = true
		}
	}
	return changed
}

// processCall implements §4.4's CALL/RETURN/FUNCTION row: operand
// points-to sets propagate across call edges as ordinary value passing,
// and a Call node whose callee operand may resolve to one or more
// Function nodes offers each to FunctionPointerCall so the analysis can
// wire new edges into the subgraph.
func processCall(n *PSNode, a Analysis) bool {
	changed := false
	for _, op := range n.Operands {
		if n.PointsTo.addAll(&op.PointsTo) {
			changed = true
		}
	}

	if n.Kind == Call && len(n.Operands) > 0 {
		for _, p := range n.Operands[0].Pointers() {
			if p.Target != nil && p.Target.Kind == Function {
				if a.FunctionPointerCall(n, p.Target) {
					changed = true
				}
			}
		}
	}

	return changed
}
