// Package lower implements MIR-to-LLIR lowering: the pass that turns a
// finalized mir.Module into a backend-owned llir.Module of generic-opcode
// machine instructions, virtual registers, and stack slots.
package lower

import (
	"clc/src/backend/cerr"
	"clc/src/backend/llir"
	"clc/src/backend/td"
	"clc/src/mir"
)

// ---------------------
// ----- Constants -----
// ---------------------

// CopyChunkBytes is the fixed chunk size MemoryCopy lowering uses to copy
// aggregates word-by-word, regardless of the aggregate's declared
// alignment (this MIR's structs are word-aligned by construction). Named
// so a future alignment-aware version is a one-line change.
const CopyChunkBytes = 4

const passName = "lower"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ctx holds the per-function state lowering threads through every
// instruction: the value table mapping MIR ids to LLIR operands, and which
// ids name stack slots.
type ctx struct {
	mfn    *llir.MachineFunction
	desc   *td.Description
	fn     *mir.Function
	values map[int]llir.Operand // mir value id -> its LLIR operand (VReg, or StackSlot for slot-identified values).
	slots  map[int]bool         // mir ids that name a stack slot.
	relOf  map[int]mir.CompareRel
	structRegs map[int][]int // mir id (param or loaded struct) -> chunk vreg ids, in order.
}

func newCtx(mfn *llir.MachineFunction, desc *td.Description, fn *mir.Function) *ctx {
	return &ctx{
		mfn:        mfn,
		desc:       desc,
		fn:         fn,
		values:     make(map[int]llir.Operand),
		slots:      make(map[int]bool),
		relOf:      make(map[int]mir.CompareRel),
		structRegs: make(map[int][]int),
	}
}

func (c *ctx) ptrWidth() int { return c.desc.ABI.PointerWidth }

func (c *ctx) fresh(width int) llir.Operand {
	return llir.VReg(c.mfn.NextID(), width)
}

// width returns t's bit width as the backend sees it: its declared width
// for integers, the architecture pointer width for pointers, 32 for
// anything else (structs/arrays never appear directly in a register).
func width(t mir.Type, ptrWidth int) int {
	switch t.Kind {
	case mir.KindInt:
		if t.BitWidth == 0 {
			return 32
		}
		return t.BitWidth
	case mir.KindPtr:
		return ptrWidth
	default:
		return 32
	}
}

// chunks returns how many pointer-width registers are needed to hold a
// value of type t whole (structs returned/passed by value, and any
// call/return value wider than one register).
func chunks(t mir.Type, ptrWidth int) int {
	bits := t.GetByteSize() * 8
	n := (bits + ptrWidth - 1) / ptrWidth
	if n < 1 {
		n = 1
	}
	return n
}

// addrWithOffset returns op (a StackSlot or Memory operand) shifted by an
// additional byte offset.
func addrWithOffset(op llir.Operand, off int64) llir.Operand {
	if op.Kind == llir.OpStackSlot {
		return llir.StackSlot(op.Reg, op.Offset+off)
	}
	return llir.Memory(op.Reg, op.Offset+off, op.Width)
}

// useValue resolves v to an LLIR operand for use as an ordinary value
// (never as a bare address - see resolveAddr for that). An id with no entry
// in c.values yet resolves to a fresh vreg, which is not recorded in
// c.values. If v names a stack slot, its contents are loaded into a fresh
// vreg: a stack slot used as a value means its address escaped as a value
// once (e.g. through a GEP whose offset folded into the slot) and is now
// being dereferenced.
func (c *ctx) useValue(v mir.Value, b *llir.MachineBasicBlock) llir.Operand {
	switch v.Kind {
	case mir.ValImm:
		return llir.Imm(v.Imm, width(v.Typ, c.ptrWidth()))
	case mir.ValGlobal:
		dst := c.fresh(c.ptrWidth()).AsPtr()
		b.Emit("GLOBAL_ADDRESS", dst, llir.GlobalSym(v.Global))
		return dst
	default:
		op, ok := c.values[v.ID]
		if !ok {
			return c.fresh(width(v.Typ, c.ptrWidth()))
		}
		if op.Kind == llir.OpStackSlot {
			dst := c.fresh(width(v.Typ, c.ptrWidth()))
			b.Emit("LOAD", dst, op)
			return dst
		}
		return op
	}
}

// resolveAddr resolves v as a bare memory address: the destination of a
// Store, the source of a Load, the base of a GEP, or an operand of a
// MemoryCopy. Unlike useValue, a stack-slot-identified id is returned as a
// StackSlot operand directly rather than dereferenced.
func (c *ctx) resolveAddr(v mir.Value, b *llir.MachineBasicBlock) llir.Operand {
	switch {
	case v.Kind == mir.ValGlobal:
		dst := c.fresh(c.ptrWidth())
		b.Emit("GLOBAL_ADDRESS", dst, llir.GlobalSym(v.Global))
		return llir.Memory(dst.Reg, 0, c.ptrWidth())
	case v.Kind == mir.ValReg && c.slots[v.ID]:
		op := c.values[v.ID]
		return op
	default:
		op := c.useValue(v, b)
		return llir.Memory(op.Reg, 0, c.ptrWidth())
	}
}

func (c *ctx) fail(kind cerr.Kind, instr, format string, args ...interface{}) error {
	return cerr.New(kind, passName, instr, format, args...)
}
