package tir

// Inst is the capability contract every target instruction type must
// satisfy. It is the sole coupling point between the IR and a target
// instruction set: the core never inspects instruction payloads.
//
// The type parameter is the implementing type itself (I must satisfy
// Inst[I]), so Replace stays closed over the target's instruction set.
type Inst[I any] interface {
	// Uses returns the registers the instruction reads. The order is
	// not significant but must be stable for a given value.
	Uses() []Reg
	// Defs returns the registers the instruction writes.
	Defs() []Reg
	// BranchTargets returns the successor blocks of a branch, empty
	// otherwise.
	BranchTargets() []Block
	IsBranch() bool
	IsRet() bool
	// Replace returns a copy with every occurrence of old, in uses and
	// defs alike, substituted by new. The receiver is not modified.
	Replace(old, new Reg) I
	String() string
}

// IsTerm reports whether inst may legally end a basic block.
func IsTerm[I Inst[I]](inst I) bool {
	return inst.IsBranch() || inst.IsRet()
}

// Target describes a target's physical register file to the core.
type Target interface {
	// PregCount returns the number of physical registers; physical ids
	// are dense in [0, PregCount).
	PregCount() uint32
	// PregName returns the display name of a physical register id.
	PregName(id uint32) string
}

// RegName renders a register, using the target's naming for physical
// registers.
func RegName(t Target, r Reg) string {
	if r.IsPhysical() {
		return t.PregName(r.ID())
	}
	return r.String()
}
