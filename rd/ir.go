package rd

import "github.com/o2lab/reach/pss"

// This file defines the boundary the RD graph builder consumes (§6 "RD
// builder inputs"). The IR front end that lowers source instructions
// into values satisfying these interfaces is out of scope (§1); the
// shapes below exist only so the builder has something concrete to call.
// internal/toyir provides a minimal implementation for tests and the
// demo CLI.

// Value is the identity of one IR value: an instruction, a global, a
// function argument, anything that can appear as an operand. It must be
// a comparable concrete type (almost always a pointer) so it can be used
// as a map key and passed to PointsToOracle.GetPointsTo.
type Value = any

// Type is an opaque IR type, passed to DataLayout.TypeAllocSize.
type Type = any

// Opcode is the small set of instruction shapes the builder cares about.
// Everything else is an "other opcode" that is simply carried forward
// (§4.6).
type Opcode int

const (
	OpOther Opcode = iota
	OpAlloca
	OpStore
	OpReturn
	OpCall
)

// Instruction is one IR instruction inside a BasicBlock.
type Instruction interface {
	Opcode() Opcode
}

// StoreInst is the shape of a store instruction: an address operand and
// the type of the value being written (used to size the def-site).
type StoreInst interface {
	Instruction
	Addr() Value
	ValueType() Type
}

// CallInst is the shape of a call instruction.
type CallInst interface {
	Instruction

	// DirectCallee returns the statically known callee and true for a
	// direct call, or (nil, false) for an indirect (function-pointer)
	// call.
	DirectCallee() (Function, bool)

	// Callee returns the callee expression's Value identity; only
	// consulted for indirect calls, to resolve its points-to set.
	Callee() Value

	// IsDebugPseudo reports whether this call is a debug-metadata
	// pseudo-instruction (e.g. a debug-value intrinsic), which the
	// builder skips entirely (§4.6).
	IsDebugPseudo() bool
}

// BasicBlock is a straight-line sequence of instructions with a set of
// CFG successor blocks.
type BasicBlock interface {
	Instructions() []Instruction
	Successors() []BasicBlock
}

// Function is one function definition (or external declaration).
type Function interface {
	Name() string
	Blocks() []BasicBlock

	// IsDeclaration reports whether the function has no body (an empty
	// body is itself treated as allocation-like per §4.7, matching the
	// original's "func->size() == 0" check).
	IsDeclaration() bool

	// IsIntrinsic reports whether this is a compiler intrinsic, which
	// the builder does not support (§4.7, §7: fatal).
	IsIntrinsic() bool
}

// Global is a module-level global variable.
type Global = Value

// Module is the IR module being translated.
type Module interface {
	MainFunction() (Function, bool)
	Globals() []Global
}

// DataLayout answers how many bytes a type occupies. It returns 0 for
// unsized types, exactly as the original LLVMDataLayout wrapper does.
type DataLayout interface {
	TypeAllocSize(t Type) uint64
}

// PointsToOracle is the pre-computed points-to layer (§4 layer 3 / pss
// package) that the RD builder consults to resolve store targets and
// indirect call targets. It must be fully populated (Run already
// returned) before Build is called.
type PointsToOracle interface {
	GetPointsTo(v Value) *pss.PSNode
}
