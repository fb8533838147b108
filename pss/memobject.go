package pss

// DefSite records that Def may define (write) [Lo, Lo+Size) of a memory
// object. Def is an opaque payload: the solver's STORE transfer function
// records the stored Pointer there and LOAD reads it back, while the rd
// package reuses the struct with Def holding the writing *rd.RDNode. pss
// has no dependency on rd (rd depends on pss, never the reverse).
type DefSite struct {
	Def    any
	Lo     Offset
	Size   Offset
	Strong bool
}

// interval is a half-open byte range [Lo, Lo+Size).
type interval struct {
	lo, size Offset
	defs     []DefSite
}

func (iv interval) overlaps(lo, size Offset) bool {
	if lo == UnknownOffset || iv.lo == UnknownOffset {
		return true
	}
	if size == UnknownOffset || iv.size == UnknownOffset {
		return true
	}
	return lo < iv.lo+iv.size && iv.lo < lo+size
}

// MemoryObject is an abstract memory region belonging to exactly one
// Alloc-like PSNode. It tracks, per offset interval, the def-sites that
// may have written there. Intervals may overlap by design
// (§3 invariant); AddDef never merges or splits existing intervals, and
// reads against an interval consult every interval that overlaps it.
//
// There is deliberately no MemoryObject-to-MemoryObject edge operation:
// the original dg engine carries one only as a commented-out stub, and
// this rewrite reproduces that absence rather than inventing semantics
// for it (see DESIGN.md).
type MemoryObject struct {
	Alloc     *PSNode
	intervals []interval
}

// NewMemoryObject creates the memory object rooted at alloc.
func NewMemoryObject(alloc *PSNode) *MemoryObject {
	return &MemoryObject{Alloc: alloc}
}

// AddDef records that def may write [lo, lo+size) (or, if size is
// UnknownOffset, somewhere in the object). strong marks a kill-and-replace
// update, permitted only when the caller knows the address's points-to
// set was a singleton at the time of the write. It reports whether the
// def-site table actually grew (the same (def, lo, size, strong) tuple
// added twice is a no-op), so solver transfer functions can report
// growth faithfully.
func (mo *MemoryObject) AddDef(def any, lo, size Offset, strong bool) bool {
	for i := range mo.intervals {
		if mo.intervals[i].lo == lo && mo.intervals[i].size == size {
			for _, d := range mo.intervals[i].defs {
				if d.Def == def && d.Strong == strong {
					return false
				}
			}
			mo.intervals[i].defs = append(mo.intervals[i].defs, DefSite{def, lo, size, strong})
			return true
		}
	}
	mo.intervals = append(mo.intervals, interval{
		lo: lo, size: size,
		defs: []DefSite{{def, lo, size, strong}},
	})
	return true
}

// DefsAt returns every def-site recorded at an interval overlapping
// [lo, lo+size). When lo is UnknownOffset every interval overlaps.
func (mo *MemoryObject) DefsAt(lo, size Offset) []DefSite {
	var out []DefSite
	for _, iv := range mo.intervals {
		if iv.overlaps(lo, size) {
			out = append(out, iv.defs...)
		}
	}
	return out
}
