// Package frame implements stack-frame lowering, the pass that runs after
// register allocation: it rewrites every StackSlot operand into an (SP,
// immediate offset) pair using the function's finalized llir.StackFrame,
// and every Memory operand's base id into a physical register likewise
// paired with its offset.
package frame

import (
	"clc/src/backend/llir"
	"clc/src/backend/td"
)

// ---------------------
// ----- functions -----
// ---------------------

// Lower finalizes mfn's stack frame and rewrites every instruction's
// stack-slot and memory operands into register+immediate pairs.
func Lower(mfn *llir.MachineFunction, desc *td.Description) {
	mfn.Frame.Finalize()
	spReg := desc.Regs.SP().ID
	ptrWidth := desc.ABI.PointerWidth

	for _, b := range mfn.Blocks {
		for _, mi := range b.Instrs {
			mi.Ops = expandOperands(mi.Ops, mfn, spReg, ptrWidth)
		}
	}
}

// expandOperands replaces every StackSlot operand with (SP, #offset) and
// every Memory operand with (base, #offset), leaving every other operand
// untouched and in place.
func expandOperands(ops []llir.Operand, mfn *llir.MachineFunction, spReg, ptrWidth int) []llir.Operand {
	needsExpansion := false
	for _, op := range ops {
		if op.Kind == llir.OpStackSlot || op.Kind == llir.OpMemory {
			needsExpansion = true
			break
		}
	}
	if !needsExpansion {
		return ops
	}

	out := make([]llir.Operand, 0, len(ops)+1)
	for _, op := range ops {
		switch op.Kind {
		case llir.OpStackSlot:
			offset := mfn.Frame.GetPosition(op.Reg) + int(op.Offset)
			out = append(out, llir.PhysReg(spReg, ptrWidth), llir.Imm(int64(offset), ptrWidth))
		case llir.OpMemory:
			out = append(out, llir.PhysReg(op.Reg, ptrWidth), llir.Imm(op.Offset, ptrWidth))
		default:
			out = append(out, op)
		}
	}
	return out
}
