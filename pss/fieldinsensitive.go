package pss

// FieldInsensitive is a ready-to-use Analysis: one MemoryObject per
// allocation-like target, created lazily, with every optional hook left
// at Base's flow-insensitive defaults. It plays the role the original
// engine's PointerAnalysisFI concrete subclass plays next to the
// abstract PointerAnalysis base (§9): most callers that don't need a
// flow-sensitive memory model can use this directly instead of writing
// their own Analysis.
type FieldInsensitive struct {
	Base
	objs map[*PSNode]*MemoryObject
}

// NewFieldInsensitive creates an empty FieldInsensitive analysis.
func NewFieldInsensitive() *FieldInsensitive {
	return &FieldInsensitive{objs: make(map[*PSNode]*MemoryObject)}
}

func (a *FieldInsensitive) GetMemoryObjects(_ *PSNode, p Pointer) []*MemoryObject {
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
