package lower

import (
	"clc/src/backend/llir"
	"clc/src/mir"
)

// ---------------------
// ----- functions -----
// ---------------------

// lowerGEP lowers a GEP in three steps: materialize the base address,
// compute the index contribution, then emit the final ADD - unless a step
// short-circuits (a zero constant offset, or an offset that folds
// directly into a stack slot's operand).
func (c *ctx) lowerGEP(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	ptrWidth := c.ptrWidth()

	var base llir.Operand
	switch {
	case ins.Base.Kind == mir.ValGlobal:
		base = c.fresh(ptrWidth).AsPtr()
		mb.Emit("GLOBAL_ADDRESS", base, llir.GlobalSym(ins.Base.Global))
	case ins.Base.Kind == mir.ValReg && c.slots[ins.Base.ID]:
		base = c.values[ins.Base.ID] // a StackSlot operand; left un-materialized.
	default:
		base = c.useValue(ins.Base, mb)
	}

	if ins.ConstIndex {
		idx := int(ins.Index.Imm)
		var offset int
		if ins.Base.Typ.IsStruct() {
			offset = ins.Base.Typ.GetElemByteOffset(idx)
		} else {
			offset = idx * ins.Base.Typ.CalcElemSize()
		}
		if offset == 0 {
			c.values[ins.ID] = base
			return nil
		}
		if base.Kind == llir.OpStackSlot {
			c.values[ins.ID] = llir.StackSlot(base.Reg, base.Offset+int64(offset))
			return nil
		}
		dst := c.fresh(ptrWidth).AsPtr()
		mb.Emit("ADD", dst, base, llir.Imm(int64(offset), ptrWidth))
		c.values[ins.ID] = dst
		return nil
	}

	// Register index.
	idxOp := c.useValue(ins.Index, mb)
	multiplier := ins.Base.Typ.CalcElemSize()
	var offsetOp llir.Operand
	if multiplier == 1 {
		offsetOp = idxOp
		if idxOp.Width < ptrWidth {
			sext := c.fresh(ptrWidth)
			mb.Emit("SEXT", sext, idxOp)
			offsetOp = sext
		}
	} else {
		immReg := c.fresh(ptrWidth)
		mb.Emit("MOV", immReg, llir.Imm(int64(multiplier), ptrWidth))
		idxForMul := idxOp
		if idxOp.Width < ptrWidth {
			sext := c.fresh(ptrWidth)
			mb.Emit("SEXT", sext, idxOp)
			idxForMul = sext
		}
		prod := c.fresh(ptrWidth)
		mb.Emit("MUL", prod, idxForMul, immReg)
		offsetOp = prod
	}

	if base.Kind == llir.OpStackSlot {
		addrReg := c.fresh(ptrWidth).AsPtr()
		mb.Emit("STACK_ADDRESS", addrReg, base)
		base = addrReg
	}
	dst := c.fresh(ptrWidth).AsPtr()
	mb.Emit("ADD", dst, base, offsetOp)
	c.values[ins.ID] = dst
	return nil
}
