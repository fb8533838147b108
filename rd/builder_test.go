package rd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o2lab/reach/internal/toyir"
	"github.com/o2lab/reach/pss"
	"github.com/o2lab/reach/rd"
)

// noopAnalysis is the minimal pss.Analysis used just to let Run seed an
// Alloc node's self-pointer; these tests never exercise Load/Store at
// the pss layer, so GetMemoryObjects is never actually called.
type noopAnalysis struct{ pss.Base }

func (noopAnalysis) GetMemoryObjects(*pss.PSNode, pss.Pointer) []*pss.MemoryObject { return nil }

// seedAlloc returns a solved pss.PSNode whose points-to set is {self, 0},
// with UserData pointing back to owner, ready to hand to a toyir.Oracle.
func seedAlloc(owner rd.Value) *pss.PSNode {
	ps := pss.NewPointerSubgraph()
	n := ps.NewNode(pss.Alloc)
	n.UserData = owner
	ps.SetRoot(n)
	if _, err := pss.Run(ps, noopAnalysis{}, pss.DefaultConfig()); err != nil {
		panic(err)
	}
	return n
}

func collectByName(g *rd.Graph, name string) []*rd.RDNode {
	var out []*rd.RDNode
	g.Walk(func(n *rd.RDNode) {
		if n.Name == name {
			out = append(out, n)
		}
	})
	return out
}

func TestBuildResolvesStoreToAllocationDefSite(t *testing.T) {
	xAlloca := toyir.NewAlloca("x")
	store := toyir.NewStore(xAlloca, toyir.Type{Size: 8})
	ret := toyir.NewReturn()

	fn := toyir.NewFunction("main")
	blk := fn.NewBlock()
	blk.AddInst(xAlloca)
	blk.AddInst(store)
	blk.AddInst(ret)

	prog := toyir.NewProgram()
	prog.SetMain(fn)

	xPS := seedAlloc(xAlloca)
	oracle := toyir.NewOracle()
	oracle.Set(xAlloca, xPS)

	b := rd.NewBuilder(toyir.DataLayout{}, oracle)
	g, err := b.Build(prog)
	require.NoError(t, err)

	allocNodes := collectByName(g, "alloc")
	require.Len(t, allocNodes, 1)
	storeNodes := collectByName(g, "store")
	require.Len(t, storeNodes, 1)

	defs := storeNodes[0].DefSites
	require.Len(t, defs, 1)
	assert.Equal(t, allocNodes[0], defs[0].Def)
	assert.True(t, defs[0].Strong)
	assert.Equal(t, pss.Offset(0), defs[0].Lo)
	assert.Equal(t, pss.Offset(8), defs[0].Size)
}

func TestBuildSharesCalleeSubgraphAcrossCallSites(t *testing.T) {
	helper := toyir.NewFunction("helper")
	hb := helper.NewBlock()
	hb.AddInst(toyir.NewReturn())

	mainFn := toyir.NewFunction("main")
	mb := mainFn.NewBlock()
	mb.AddInst(toyir.NewDirectCall(helper))
	mb.AddInst(toyir.NewDirectCall(helper))
	mb.AddInst(toyir.NewReturn())

	prog := toyir.NewProgram()
	prog.SetMain(mainFn)

	b := rd.NewBuilder(toyir.DataLayout{}, toyir.NewOracle())
	g, err := b.Build(prog)
	require.NoError(t, err)

	callNodes := collectByName(g, "call:helper")
	require.Len(t, callNodes, 2)
	// Both call sites must route into the very same helper entry node.
	assert.Same(t, callNodes[0].Successors()[0], callNodes[1].Successors()[0])
}

func TestBuildRecursiveCallDoesNotLoopForever(t *testing.T) {
	recur := toyir.NewFunction("recur")
	rb := recur.NewBlock()
	call := toyir.NewDirectCall(recur)
	rb.AddInst(call)
	rb.AddInst(toyir.NewReturn())

	mainFn := toyir.NewFunction("main")
	mb := mainFn.NewBlock()
	mb.AddInst(toyir.NewDirectCall(recur))
	mb.AddInst(toyir.NewReturn())

	prog := toyir.NewProgram()
	prog.SetMain(mainFn)

	b := rd.NewBuilder(toyir.DataLayout{}, toyir.NewOracle())
	g, err := b.Build(prog)
	require.NoError(t, err)
	assert.NotNil(t, g.Root())
}

func TestBuildGlobalsPrecedeMain(t *testing.T) {
	mainFn := toyir.NewFunction("main")
	mb := mainFn.NewBlock()
	mb.AddInst(toyir.NewReturn())

	prog := toyir.NewProgram()
	prog.SetMain(mainFn)
	prog.AddGlobal(&toyir.Var{Name: "g"})

	b := rd.NewBuilder(toyir.DataLayout{}, toyir.NewOracle())
	g, err := b.Build(prog)
	require.NoError(t, err)

	globNodes := collectByName(g, "glob")
	require.Len(t, globNodes, 1)
	assert.Same(t, globNodes[0], g.Root())
}

func TestBuildMissingMainIsAnError(t *testing.T) {
	prog := toyir.NewProgram()
	b := rd.NewBuilder(toyir.DataLayout{}, toyir.NewOracle())
	_, err := b.Build(prog)
	assert.Error(t, err)
}

func TestBuildIndirectCallFansOutToEachTarget(t *testing.T) {
	fnA := toyir.NewFunction("a")
	ab := fnA.NewBlock()
	ab.AddInst(toyir.NewReturn())

	fnB := toyir.NewFunction("b")
	bb := fnB.NewBlock()
	bb.AddInst(toyir.NewReturn())

	fnPtrVar := &toyir.Var{Name: "fp"}
	mainFn := toyir.NewFunction("main")
	mb := mainFn.NewBlock()
	mb.AddInst(toyir.NewIndirectCall(fnPtrVar))
	mb.AddInst(toyir.NewReturn())

	prog := toyir.NewProgram()
	prog.SetMain(mainFn)

	ps := pss.NewPointerSubgraph()
	// fa/fb are Constant nodes standing for "address of function a/b":
	// like Alloc, a Constant self-points (§9 Open Question resolution),
	// giving target (a Phi merging both) a points-to set of {fa, fb}.
	target := ps.NewNode(pss.Phi)
	fa := ps.NewNode(pss.Constant)
	fa.UserData = fnA
	fb := ps.NewNode(pss.Constant)
	fb.UserData = fnB
	target.AddOperand(fa)
	target.AddOperand(fb)

	root := ps.NewNode(pss.Noop)
	root.AddSuccessor(fa)
	root.AddSuccessor(fb)
	fa.AddSuccessor(target)
	fb.AddSuccessor(target)
	ps.SetRoot(root)
	_, err := pss.Run(ps, noopAnalysis{}, pss.DefaultConfig())
	require.NoError(t, err)

	oracle := toyir.NewOracle()
	oracle.Set(fnPtrVar, target)

	b := rd.NewBuilder(toyir.DataLayout{}, oracle)
	g, err := b.Build(prog)
	require.NoError(t, err)

	dispatch := collectByName(g, "indirect-call")
	require.Len(t, dispatch, 1)
	assert.Len(t, dispatch[0].Successors(), 2)
}
