package pss

// Result is returned by Run. It is a thin, read-only view over the
// solved subgraph — modeled on the query surface the pack's pointer
// analyses expose (BarrensZeppelin-pointer's Result.Pointer/MayAlias,
// the teacher's Result.Queries in gopta/go/pointer/api.go), narrowed to
// this engine's PSNode-keyed model since the IR front end is out of
// scope here.
type Result struct {
	ps *PointerSubgraph
}

// PointsTo returns a snapshot of n's solved points-to set.
func (r *Result) PointsTo(n *PSNode) []Pointer {
	return n.Pointers()
}

// MayAlias reports whether a and b's points-to sets share a target
// object at an overlapping offset.
func (r *Result) MayAlias(a, b *PSNode) bool {
	for _, pa := range a.Pointers() {
		for _, pb := range b.Pointers() {
			if pa.Target == pb.Target && pa.Overlaps(pb) {
				return true
			}
		}
	}
	return false
}

// Subgraph returns the PointerSubgraph the result was computed over.
func (r *Result) Subgraph() *PointerSubgraph {
	return r.ps
}
