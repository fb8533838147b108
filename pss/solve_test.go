package pss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyAnalysis is the smallest Analysis that satisfies GetMemoryObjects:
// one MemoryObject per allocation target, created lazily. Grounded on
// the teacher's habit of a tiny in-package test double rather than a
// mock library (gorace/race_test.go, race_checker/race_test.go).
type toyAnalysis struct {
	Base
	objs map[*PSNode]*MemoryObject
}

func newToyAnalysis() *toyAnalysis {
	return &toyAnalysis{objs: make(map[*PSNode]*MemoryObject)}
}

func (a *toyAnalysis) GetMemoryObjects(_ *PSNode, p Pointer) []*MemoryObject {
	if p.Target == nil {
		return nil
	}
	obj, ok := a.objs[p.Target]
	if !ok {
		obj = NewMemoryObject(p.Target)
		a.objs[p.Target] = obj
	}
	return []*MemoryObject{obj}
}

// buildStoreLoadChain builds: alloc -> store(alloc, srcAlloc) -> load(alloc)
// i.e. *alloc = srcAlloc; x = *alloc, and returns (alloc, srcAlloc, store, load).
func buildStoreLoadChain(ps *PointerSubgraph) (alloc, srcAlloc, store, load *PSNode) {
	alloc = ps.NewNode(Alloc)
	srcAlloc = ps.NewNode(Alloc)
	store = ps.NewNode(Store)
	store.AddOperand(alloc)
	store.AddOperand(srcAlloc)
	load = ps.NewNode(Load)
	load.AddOperand(alloc)

	alloc.AddSuccessor(srcAlloc)
	srcAlloc.AddSuccessor(store)
	store.AddSuccessor(load)
	ps.SetRoot(alloc)
	return
}

func TestRunPropagatesStoreThroughLoad(t *testing.T) {
	ps := NewPointerSubgraph()
	alloc, srcAlloc, _, load := buildStoreLoadChain(ps)

	result, err := Run(ps, newToyAnalysis(), DefaultConfig())
	require.NoError(t, err)

	pts := result.PointsTo(load)
	require.Len(t, pts, 1)
	assert.Equal(t, srcAlloc, pts[0].Target)
	assert.Equal(t, alloc, result.PointsTo(alloc)[0].Target)
}

func TestRunIsQuiescentOnSecondCall(t *testing.T) {
	ps := NewPointerSubgraph()
	buildStoreLoadChain(ps)

	first, err := Run(ps, newToyAnalysis(), DefaultConfig())
	require.NoError(t, err)
	before := len(first.PointsTo(ps.Root()))

	// Run is idempotent once the subgraph has quiesced: processing every
	// node again with no new edges added must not grow anything.
	second, err := Run(ps, newToyAnalysis(), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, before, len(second.PointsTo(ps.Root())))
}

func TestSentinelsAreStableAcrossRun(t *testing.T) {
	ps := NewPointerSubgraph()
	alloc := ps.NewNode(Alloc)
	ps.SetRoot(alloc)
	alloc.AddSuccessor(ps.Nullptr)
	alloc.AddSuccessor(ps.UnknownMemory)

	result, err := Run(ps, newToyAnalysis(), DefaultConfig())
	require.NoError(t, err)

	nullPts := result.PointsTo(ps.Nullptr)
	require.Len(t, nullPts, 1)
	assert.True(t, nullPts[0].IsNull())

	unkPts := result.PointsTo(ps.UnknownMemory)
	require.Len(t, unkPts, 1)
	assert.Equal(t, ps.UnknownMemory, unkPts[0].Target)
	assert.Equal(t, UnknownOffset, unkPts[0].Offset)
}

func TestGepOffsetSaturatesAtMaxOffset(t *testing.T) {
	ps := NewPointerSubgraph()
	alloc := ps.NewNode(Alloc)
	gep := ps.NewNode(Gep)
	gep.Offset = 100
	gep.AddOperand(alloc)
	alloc.AddSuccessor(gep)
	ps.SetRoot(alloc)

	cfg := DefaultConfig()
	cfg.MaxOffset = 8

	result, err := Run(ps, newToyAnalysis(), cfg)
	require.NoError(t, err)
	pts := result.PointsTo(gep)
	require.Len(t, pts, 1)
	assert.Equal(t, UnknownOffset, pts[0].Offset)
}

func TestGepInLoopWidensToUnknownOffset(t *testing.T) {
	ps := NewPointerSubgraph()
	alloc := ps.NewNode(Alloc)
	phi := ps.NewNode(Phi)
	gep := ps.NewNode(Gep)
	gep.Offset = 4
	gep.AddOperand(phi)
	phi.AddOperand(alloc)
	phi.AddOperand(gep)

	alloc.AddSuccessor(phi)
	phi.AddSuccessor(gep)
	gep.AddSuccessor(phi) // back-edge: phi/gep form a non-trivial SCC
	ps.SetRoot(alloc)

	result, err := Run(ps, newToyAnalysis(), DefaultConfig())
	require.NoError(t, err)

	pts := result.PointsTo(gep)
	require.NotEmpty(t, pts)
	for _, p := range pts {
		assert.Equal(t, UnknownOffset, p.Offset, "GEP inside a cycle must be widened to UnknownOffset")
	}
}

func TestStrongUpdateOnlyWhenDestinationIsSingleton(t *testing.T) {
	ps := NewPointerSubgraph()
	target := ps.NewNode(Alloc)
	phi := ps.NewNode(Phi) // destination address: points to two targets
	other := ps.NewNode(Alloc)
	phi.AddOperand(target)
	phi.AddOperand(other)

	src := ps.NewNode(Alloc)
	store := ps.NewNode(Store)
	store.AddOperand(phi)
	store.AddOperand(src)

	target.AddSuccessor(phi)
	other.AddSuccessor(phi)
	phi.AddSuccessor(store)

	// Wire a single root that reaches every node above.
	root := ps.NewNode(Noop)
	root.AddSuccessor(target)
	root.AddSuccessor(other)
	root.AddSuccessor(phi)
	root.AddSuccessor(src)
	root.AddSuccessor(store)
	ps.SetRoot(root)

	analysis := newToyAnalysis()
	_, err := Run(ps, analysis, DefaultConfig())
	require.NoError(t, err)

	obj := analysis.objs[target]
	require.NotNil(t, obj)
	defs := obj.DefsAt(UnknownOffset, UnknownOffset)
	require.Len(t, defs, 1)
	assert.False(t, defs[0].Strong, "a two-target destination must never record a strong update")
}

func TestEmptyPointsToReportsErrorHook(t *testing.T) {
	ps := NewPointerSubgraph()
	addr := ps.NewNode(Alloc) // never seeded with anything but itself; use a dangling Load instead
	load := ps.NewNode(Load)
	dangling := ps.NewNode(Phi) // empty points-to: no operands
	load.AddOperand(dangling)
	addr.AddSuccessor(dangling)
	dangling.AddSuccessor(load)
	ps.SetRoot(addr)

	var calls int
	a := newToyAnalysis()
	hooked := &hookedAnalysis{toyAnalysis: a, onEmpty: func() { calls++ }}

	_, err := Run(ps, hooked, DefaultConfig())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}

type hookedAnalysis struct {
	*toyAnalysis
	onEmpty func()
}

func (h *hookedAnalysis) ErrorEmptyPointsTo(from, to *PSNode) bool {
	h.onEmpty()
	return false
}
