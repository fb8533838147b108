package pss

import "fmt"

// UnsupportedOperationError is returned (via panic, matching the
// original engine's process-abort-on-misuse policy, but as a typed,
// catchable Go value rather than a hard abort — see §9 "optional
// queries abort on misuse") when a caller invokes an optional Analysis
// query that the concrete analysis never implemented.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("pss: unsupported operation: %s (analysis did not implement it; calling code is buggy)", e.Op)
}

// Analysis is the capability interface a client implements to tell Run
// how to resolve memory objects. GetMemoryObjects is mandatory; the rest
// are optional hooks with default-false/unsupported behaviour, exactly
// as described in §4.5/§9 — this is the Go translation of the original's
// virtual-method-with-abort-default design, modeled as an interface
// rather than an open class hierarchy (§9 "polymorphism over node kind").
type Analysis interface {
	// GetMemoryObjects fills objects relevant for resolving pointer at
	// location where.
	GetMemoryObjects(where *PSNode, pointer Pointer) []*MemoryObject

	// GetMemoryObjectsPointingTo is used only by flow-sensitive
	// analyses. Implementations that don't support it must panic with
	// *UnsupportedOperationError.
	GetMemoryObjectsPointingTo(where *PSNode, pointer Pointer) []*MemoryObject

	// GetLocalMemoryObjects returns stack-local objects at where.
	// Implementations that don't support it must panic with
	// *UnsupportedOperationError.
	GetLocalMemoryObjects(where *PSNode) []*MemoryObject

	// BeforeProcessed/AfterProcessed are extension points run around
	// the transfer function for a node; they may grow that node's
	// points-to set and must report growth via their return value.
	BeforeProcessed(n *PSNode) bool
	AfterProcessed(n *PSNode) bool

	// Error reports a generic analysis error. The default policy
	// (flow-insensitive) treats it as non-fatal and returns false.
	Error(at *PSNode, msg string) bool

	// ErrorEmptyPointsTo is called when a use site's operand has an
	// empty points-to set. Default policy: non-fatal, returns false;
	// flow-sensitive analyses may escalate and/or grow a points-to set,
	// reporting so via the return value.
	ErrorEmptyPointsTo(from, to *PSNode) bool

	// FunctionPointerCall lets the analysis adjust the subgraph (e.g.
	// add call edges) when an indirect call target is discovered. It
	// returns whether it grew any points-to set.
	FunctionPointerCall(where, what *PSNode) bool
}

// Base implements every optional part of Analysis with the original
// engine's defaults (hooks return false; unimplemented optional queries
// panic). Embed Base and override GetMemoryObjects at minimum.
type Base struct{}

func (Base) GetMemoryObjectsPointingTo(*PSNode, Pointer) []*MemoryObject {
	panic(&UnsupportedOperationError{Op: "GetMemoryObjectsPointingTo"})
}

func (Base) GetLocalMemoryObjects(*PSNode) []*MemoryObject {
	panic(&UnsupportedOperationError{Op: "GetLocalMemoryObjects"})
}

func (Base) BeforeProcessed(*PSNode) bool { return false }
func (Base) AfterProcessed(*PSNode) bool  { return false }

func (Base) Error(*PSNode, string) bool { return false }

func (Base) ErrorEmptyPointsTo(*PSNode, *PSNode) bool { return false }

func (Base) FunctionPointerCall(*PSNode, *PSNode) bool { return false }
