// Package toyir is a minimal, explicitly out-of-band IR used only by
// this repo's own tests and demo CLI. It exists because the engine's
// real IR front end is out of scope (§1): toyir builds just enough of a
// program — functions, blocks, instructions, a points-to oracle stub —
// to drive pss.Run and rd.Builder through their real external
// interfaces, without pulling in a compiler.
package toyir

import (
	"github.com/o2lab/reach/pss"
	"github.com/o2lab/reach/rd"
)

// Var is an addressable IR value: a local, a global, a function
// parameter. Each distinct variable should be its own *Var; identity is
// by pointer, which makes it usable as an Oracle/nodes_map key.
type Var struct {
	Name string
}

// Type is a minimal sized type, satisfying rd.Type.
type Type struct {
	Size uint64
}

// DataLayout implements rd.DataLayout for Type.
type DataLayout struct{}

func (DataLayout) TypeAllocSize(t rd.Type) uint64 {
	if ty, ok := t.(Type); ok {
		return ty.Size
	}
	return 0
}

type inst struct{ op rd.Opcode }

func (i inst) Opcode() rd.Opcode { return i.op }

// AllocaInst is a stack/heap allocation site.
type AllocaInst struct {
	inst
	Name string
}

func NewAlloca(name string) *AllocaInst {
	return &AllocaInst{inst: inst{rd.OpAlloca}, Name: name}
}

// ReturnInst marks a function return point.
type ReturnInst struct{ inst }

func NewReturn() *ReturnInst { return &ReturnInst{inst{rd.OpReturn}} }

// StoreInst writes through a pointer.
type StoreInst struct {
	inst
	addr rd.Value
	typ  Type
}

func NewStore(addr rd.Value, typ Type) *StoreInst {
	return &StoreInst{inst: inst{rd.OpStore}, addr: addr, typ: typ}
}
func (s *StoreInst) Addr() rd.Value     { return s.addr }
func (s *StoreInst) ValueType() rd.Type { return s.typ }

// CallInst calls a direct or indirect callee.
type CallInst struct {
	inst
	callee rd.Value
	direct rd.Function
	debug  bool
}

// NewDirectCall builds a call to a statically known callee.
func NewDirectCall(callee rd.Function) *CallInst {
	return &CallInst{inst: inst{rd.OpCall}, direct: callee}
}

// NewIndirectCall builds a call through a function-pointer value.
func NewIndirectCall(callee rd.Value) *CallInst {
	return &CallInst{inst: inst{rd.OpCall}, callee: callee}
}

// NewDebugCall builds a debug-metadata pseudo-call, which rd.Builder
// skips entirely.
func NewDebugCall() *CallInst {
	return &CallInst{inst: inst{rd.OpCall}, debug: true}
}

func (c *CallInst) DirectCallee() (rd.Function, bool) {
	if c.direct != nil {
		return c.direct, true
	}
	return nil, false
}
func (c *CallInst) Callee() rd.Value    { return c.callee }
func (c *CallInst) IsDebugPseudo() bool { return c.debug }

// OtherInst stands in for any instruction the RD builder just carries
// forward (a load, a GEP, a phi, arithmetic).
type OtherInst struct {
	inst
	Name string
}

func NewOther(name string) *OtherInst {
	return &OtherInst{inst: inst{rd.OpOther}, Name: name}
}

// Block is one basic block.
type Block struct {
	insts []rd.Instruction
	succs []*Block
}

func NewBlock() *Block { return &Block{} }

func (b *Block) AddInst(i rd.Instruction)   { b.insts = append(b.insts, i) }
func (b *Block) AddSuccessor(s *Block)      { b.succs = append(b.succs, s) }
func (b *Block) Instructions() []rd.Instruction { return b.insts }
func (b *Block) Successors() []rd.BasicBlock {
	out := make([]rd.BasicBlock, len(b.succs))
	for i, s := range b.succs {
		out[i] = s
	}
	return out
}

// Function is one function definition or external declaration.
type Function struct {
	name        string
	blocks      []*Block
	declaration bool
	intrinsic   bool
}

func NewFunction(name string) *Function { return &Function{name: name} }

func (f *Function) NewBlock() *Block {
	b := NewBlock()
	f.blocks = append(f.blocks, b)
	return b
}

func (f *Function) MarkDeclaration() { f.declaration = true }
func (f *Function) MarkIntrinsic()   { f.intrinsic = true }

func (f *Function) Name() string { return f.name }
func (f *Function) Blocks() []rd.BasicBlock {
	out := make([]rd.BasicBlock, len(f.blocks))
	for i, b := range f.blocks {
		out[i] = b
	}
	return out
}
func (f *Function) IsDeclaration() bool { return f.declaration || len(f.blocks) == 0 }
func (f *Function) IsIntrinsic() bool   { return f.intrinsic }

// Program is a whole toy module.
type Program struct {
	main    *Function
	funcs   []*Function
	globals []rd.Global
}

func NewProgram() *Program { return &Program{} }

func (p *Program) AddFunction(f *Function) { p.funcs = append(p.funcs, f) }
func (p *Program) SetMain(f *Function) {
	p.main = f
	for _, existing := range p.funcs {
		if existing == f {
			return
		}
	}
	p.funcs = append(p.funcs, f)
}
func (p *Program) AddGlobal(g rd.Global) { p.globals = append(p.globals, g) }

func (p *Program) MainFunction() (rd.Function, bool) {
	if p.main == nil {
		return nil, false
	}
	return p.main, true
}
func (p *Program) Globals() []rd.Global { return p.globals }

// Oracle is a trivial rd.PointsToOracle backed by a map, for tests that
// want to hand-wire a Value's points-to result without running pss.Run.
type Oracle struct {
	m map[rd.Value]*pss.PSNode
}

func NewOracle() *Oracle { return &Oracle{m: make(map[rd.Value]*pss.PSNode)} }

func (o *Oracle) Set(v rd.Value, n *pss.PSNode)      { o.m[v] = n }
func (o *Oracle) GetPointsTo(v rd.Value) *pss.PSNode { return o.m[v] }
