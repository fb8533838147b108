package rd

import (
	"fmt"

	"github.com/o2lab/reach/pss"
	"github.com/sirupsen/logrus"
)

// This file is grounded directly on LLVMReachingDefinitions.cpp's
// buildBlock/createStore/createCall/createCallToFunction/buildFunction/
// blockAddSuccessors/buildGlobals/build, translated instruction-by-
// instruction rather than paraphrased, with the llvm::Value-keyed maps
// replaced by Go maps over the Value/Function interfaces in ir.go.

// allocKind classifies a direct callee by name, mirroring
// getMemAllocationFunc's malloc/calloc/alloca/realloc special-casing.
type allocKind int

const (
	allocNone allocKind = iota
	allocMalloc
	allocCalloc
	allocAlloca
	allocRealloc
)

func classifyAllocator(fn Function) allocKind {
	switch fn.Name() {
	case "malloc":
		return allocMalloc
	case "calloc":
		return allocCalloc
	case "alloca":
		return allocAlloca
	case "realloc":
		return allocRealloc
	default:
		return allocNone
	}
}

// buildError is panicked by the fatal helper and recovered at Build's
// boundary, turning a deeply recursive abort into a returned error (the
// same bailout-via-panic shape go/types' Checker uses internally).
type buildError struct{ err error }

func fatal(format string, args ...any) {
	panic(buildError{err: fmt.Errorf(format, args...)})
}

// Builder constructs one whole-program Graph from a Module and a
// already-solved PointsToOracle (§4.6-§4.9).
type Builder struct {
	DL  DataLayout
	PTA PointsToOracle

	Log *logrus.Logger

	nodesMap     map[Value]*RDNode
	instMapping  map[Instruction]*RDNode
	subgraphsMap map[Function]Subgraph
}

// NewBuilder creates a Builder ready to call Build.
func NewBuilder(dl DataLayout, pta PointsToOracle) *Builder {
	return &Builder{
		DL:           dl,
		PTA:          pta,
		Log:          logrus.StandardLogger(),
		nodesMap:     make(map[Value]*RDNode),
		instMapping:  make(map[Instruction]*RDNode),
		subgraphsMap: make(map[Function]Subgraph),
	}
}

// Build translates mod into a whole-program Graph. It requires a "main"
// function, exactly as the original build() does.
func (b *Builder) Build(mod Module) (graph *Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			if be, ok := r.(buildError); ok {
				err = be.err
				graph = nil
				return
			}
			panic(r)
		}
	}()

	main, ok := mod.MainFunction()
	if !ok {
		return nil, fmt.Errorf("rd: module has no main function")
	}

	root := b.buildFunction(main)

	globFirst, globLast := b.buildGlobals(mod.Globals())
	if globFirst != nil {
		globLast.AddSuccessor(root)
		root = globFirst
	}

	return &Graph{root: root, mapping: b.instMapping}, nil
}

func (b *Builder) newNode(name string) *RDNode {
	return &RDNode{Name: name}
}

func (b *Builder) addNode(v Value, n *RDNode) {
	b.nodesMap[v] = n
}

// buildGlobals chains every module-level global into a single linear
// prelude, one RDNode per global, in declaration order (§4.9).
func (b *Builder) buildGlobals(globals []Global) (first, last *RDNode) {
	var cur *RDNode
	for _, g := range globals {
		n := b.newNode("glob")
		b.addNode(g, n)
		if cur != nil {
			cur.AddSuccessor(n)
		} else {
			first = n
		}
		cur = n
	}
	return first, cur
}

// buildFunction builds fn's subgraph, inserting a placeholder into
// subgraphsMap before recursing into callees so that a recursive call
// back into fn finds an already-reserved root/ret pair instead of
// recursing forever (§4.7, scenario 4).
func (b *Builder) buildFunction(fn Function) *RDNode {
	root := b.newNode(fn.Name() + ":entry")
	ret := b.newNode(fn.Name() + ":ret")
	b.subgraphsMap[fn] = Subgraph{Root: root, Ret: ret}

	builtBlocks := make(map[BasicBlock]builtBlock)

	var first *RDNode
	for _, blk := range fn.Blocks() {
		f, l := b.buildBlock(blk)
		builtBlocks[blk] = builtBlock{f, l}
		if first == nil {
			first = f
		}
	}

	if first == nil {
		fatal("rd: function %q has no basic blocks", fn.Name())
	}
	root.AddSuccessor(first)

	var rets []*RDNode
	for _, blk := range fn.Blocks() {
		pr := builtBlocks[blk]
		num := b.blockAddSuccessors(builtBlocks, pr.last, blk)
		if num == 0 {
			rets = append(rets, pr.last)
		}
	}

	if len(rets) == 0 {
		fatal("rd: function %q has no return node", fn.Name())
	}
	for _, r := range rets {
		r.AddSuccessor(ret)
	}

	return root
}

// builtBlock records the entry/exit RDNode pair buildBlock produced for
// one basic block.
type builtBlock struct{ first, last *RDNode }

// blockAddSuccessors wires last (blk's final RDNode) to the entry node
// of each of blk's CFG successor blocks, recursing through any successor
// that built no node of its own (§4.8's "empty block" case).
func (b *Builder) blockAddSuccessors(built map[BasicBlock]builtBlock, last *RDNode, blk BasicBlock) int {
	num := 0
	for _, s := range blk.Successors() {
		sb, ok := built[s]
		if !ok {
			num += b.blockAddSuccessors(built, last, s)
			continue
		}
		if sb.first == nil {
			num += b.blockAddSuccessors(built, last, s)
			continue
		}
		last.AddSuccessor(sb.first)
		num++
	}
	return num
}

// buildBlock sequences blk's instructions into a chain of RDNodes,
// always starting with a dummy node standing in for the block's PHI
// region (§4.6), regardless of whether any instruction in blk goes on
// to emit a node of its own.
func (b *Builder) buildBlock(blk BasicBlock) (first, last *RDNode) {
	cur := b.newNode("phi")
	first = cur
	var prevNode *RDNode

	for _, inst := range blk.Instructions() {
		b.instMapping[inst] = cur
		prevNode = cur

		switch inst.Opcode() {
		case OpAlloca, OpReturn:
			cur = b.createAlloc(inst)

		case OpStore:
			cur = b.createStore(inst.(StoreInst))

		case OpCall:
			ci := inst.(CallInst)
			if ci.IsDebugPseudo() {
				break
			}
			callFirst, callLast := b.createCall(ci)
			prevNode.AddSuccessor(callFirst)
			cur = callLast
			prevNode = callLast

		default:
			// carry the current RDNode forward unchanged
		}

		if prevNode != nil && prevNode != cur {
			prevNode.AddSuccessor(cur)
		}
	}

	last = cur
	return first, last
}

// createAlloc creates the fresh, def-site-free RDNode §4.6 gives both an
// ALLOCA (named "alloc") and a RET (named "return").
func (b *Builder) createAlloc(inst Instruction) *RDNode {
	name := "alloc"
	if inst.Opcode() == OpReturn {
		name = "return"
	}
	n := b.newNode(name)
	b.addNode(inst, n)
	return n
}

// createStore resolves the destination address's points-to set against
// the PTA oracle and records a def-site on each target's owning RDNode
// (§4.6, mirroring createStore's nodes_map[ptrVal] lookup).
func (b *Builder) createStore(inst StoreInst) *RDNode {
	n := b.newNode("store")
	b.addNode(inst, n)

	target := b.PTA.GetPointsTo(inst.Addr())
	if target == nil {
		fatal("rd: store has no points-to result for its address operand")
	}

	pts := target.Pointers()
	strong := len(pts) == 1

	size := pss.Offset(b.DL.TypeAllocSize(inst.ValueType()))
	if size == 0 {
		size = pss.UnknownOffset
	}

	for _, p := range pts {
		if p.IsNull() {
			continue
		}
		ptrVal := p.Target.UserData
		allocNode, ok := b.nodesMap[ptrVal]
		if !ok {
			b.Log.Warnf("rd: no RDNode for store target %v, skipping def-site", ptrVal)
			continue
		}
		n.AddDef(allocNode, p.Offset, size, strong)
	}

	return n
}

// createCall dispatches a call instruction to the allocator shortcut,
// an external declaration, a direct callee's subgraph, or (for an
// indirect call) a fan-out dispatch node over every Function the callee
// expression's points-to set may resolve to (§4.7).
func (b *Builder) createCall(ci CallInst) (first, last *RDNode) {
	if dfn, ok := ci.DirectCallee(); ok {
		switch classifyAllocator(dfn) {
		case allocMalloc, allocCalloc, allocAlloca:
			n := b.newNode("call:" + dfn.Name())
			b.addNode(ci, n)
			return n, n
		case allocRealloc:
			fatal("rd: realloc is not implemented")
		}

		if dfn.IsIntrinsic() {
			fatal("rd: intrinsic function %q is not implemented", dfn.Name())
		}

		if dfn.IsDeclaration() {
			n := b.newNode("call:" + dfn.Name())
			b.addNode(ci, n)
			return n, n
		}

		f, l := b.createCallToFunction(dfn)
		b.addNode(ci, f)
		return f, l
	}

	return b.createIndirectCall(ci)
}

func (b *Builder) createIndirectCall(ci CallInst) (first, last *RDNode) {
	calleeNode := b.PTA.GetPointsTo(ci.Callee())
	if calleeNode == nil {
		fatal("rd: indirect call has no points-to result for its callee")
	}
	pts := calleeNode.Pointers()
	if len(pts) == 0 {
		fatal("rd: indirect call callee has an empty points-to set")
	}

	if len(pts) == 1 && !pts[0].IsNull() {
		if fn, ok := pts[0].Target.UserData.(Function); ok {
			f, l := b.createCallToFunction(fn)
			b.addNode(ci, f)
			return f, l
		}
	}

	callNode := b.newNode("indirect-call")
	retNode := b.newNode("indirect-ret")
	b.addNode(ci, callNode)

	for _, p := range pts {
		if p.IsNull() || p.Target.Kind == pss.UnknownMem {
			continue
		}
		fn, ok := p.Target.UserData.(Function)
		if !ok {
			continue
		}
		cf, cl := b.createCallToFunction(fn)
		callNode.AddSuccessor(cf)
		cl.AddSuccessor(retNode)
	}

	return callNode, retNode
}

// createCallToFunction wires a fresh call/return RDNode pair around
// fn's subgraph, building fn first if this is its first call site.
func (b *Builder) createCallToFunction(fn Function) (first, last *RDNode) {
	subg, ok := b.subgraphsMap[fn]
	if !ok {
		b.buildFunction(fn)
		subg = b.subgraphsMap[fn]
	}

	callNode := b.newNode("call:" + fn.Name())
	retNode := b.newNode("ret:" + fn.Name())
	callNode.AddSuccessor(subg.Root)
	subg.Ret.AddSuccessor(retNode)

	return callNode, retNode
}
