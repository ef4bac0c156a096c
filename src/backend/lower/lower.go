package lower

import (
	"fmt"

	"clc/src/backend/cerr"
	"clc/src/backend/llir"
	"clc/src/backend/td"
	"clc/src/mir"
)

// ---------------------
// ----- functions -----
// ---------------------

// Lower transforms a finalized MIR module into a backend llir.Module,
// targeting the given Target Description's ABI for parameter/return
// register and stack-slot conventions.
func Lower(m *mir.Module, desc *td.Description) (*llir.Module, error) {
	out := &llir.Module{Name: m.Name}
	for _, g := range m.Globals {
		out.Globals = append(out.Globals, lowerGlobal(g))
	}
	for _, fn := range m.Functions {
		if fn.Declared {
			continue
		}
		mfn, err := lowerFunction(fn, desc)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, mfn)
	}
	return out, nil
}

func lowerGlobal(g *mir.Global) *llir.GlobalData {
	gd := &llir.GlobalData{Name: g.Name, Size: g.Typ.GetByteSize()}
	for _, c := range g.Init {
		gd.Allocs = append(gd.Allocs, llir.DataAlloc{ElemSize: c.ElemSize, Value: c.Value})
	}
	return gd
}

func lowerFunction(fn *mir.Function, desc *td.Description) (*llir.MachineFunction, error) {
	mfn := llir.NewMachineFunction(fn.Name)
	c := newCtx(mfn, desc, fn)
	ptrWidth := desc.ABI.PointerWidth

	for _, p := range fn.Params {
		if p.ByValStruct {
			n := chunks(p.Typ, ptrWidth)
			regs := make([]int, 0, n)
			for i := 0; i < n; i++ {
				vreg := mfn.NextID()
				mfn.Params = append(mfn.Params, llir.ParamDesc{VRegID: vreg, LLT: llir.LowLevelType{Kind: llir.LLTPtr, Width: ptrWidth}})
				regs = append(regs, vreg)
			}
			c.structRegs[p.ID] = regs
		} else {
			vreg := mfn.NextID()
			llt := llir.LowLevelType{Kind: llir.LLTInt, Width: width(p.Typ, ptrWidth)}
			if p.Typ.IsPTR() {
				llt.Kind = llir.LLTPtr
			}
			mfn.Params = append(mfn.Params, llir.ParamDesc{VRegID: vreg, LLT: llt})
			pv := llir.VReg(vreg, width(p.Typ, ptrWidth))
			if p.Typ.IsPTR() {
				pv = pv.AsPtr()
			}
			c.values[p.ID] = pv
		}
	}

	blockOf := make(map[string]*llir.MachineBasicBlock, len(fn.Blocks))
	for _, b := range fn.Blocks {
		blockOf[b.Name] = mfn.CreateBlock(b.Name)
	}
	for _, b := range fn.Blocks {
		if err := c.lowerBlock(b, blockOf[b.Name]); err != nil {
			return nil, err
		}
	}
	return mfn, nil
}

func (c *ctx) lowerBlock(b *mir.Block, mb *llir.MachineBasicBlock) error {
	for _, ins := range b.Instrs {
		if err := c.lowerInstr(ins, mb); err != nil {
			return err
		}
	}
	return nil
}

func binOpcode(op mir.BinOp) string {
	switch op {
	case mir.OpAdd:
		return "ADD"
	case mir.OpSub:
		return "SUB"
	case mir.OpMul:
		return "MUL"
	case mir.OpDiv:
		return "DIV"
	case mir.OpMod:
		return "MOD"
	case mir.OpAnd:
		return "AND"
	default:
		return "OR"
	}
}

func (c *ctx) lowerInstr(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	ptrWidth := c.ptrWidth()
	switch ins.Kind {
	case mir.InstrBinary:
		dst := c.fresh(width(ins.Typ, ptrWidth))
		a := c.useValue(ins.A, mb)
		b := c.useValue(ins.B, mb)
		mb.Emit(binOpcode(ins.Op), dst, a, b)
		c.values[ins.ID] = dst

	case mir.InstrUnary:
		dst := c.fresh(width(ins.Typ, ptrWidth))
		src := c.useValue(ins.Src, mb)
		w := width(ins.Typ, ptrWidth)
		switch ins.UOp {
		case mir.OpNeg:
			mb.Emit("SUB", dst, llir.Imm(0, w), src)
		default: // OpNot: NOT(x) == -x - 1
			tmp := c.fresh(w)
			mb.Emit("SUB", tmp, llir.Imm(0, w), src)
			mb.Emit("SUB", dst, tmp, llir.Imm(1, w))
		}
		c.values[ins.ID] = dst

	case mir.InstrStore:
		return c.lowerStore(ins, mb)

	case mir.InstrLoad:
		return c.lowerLoad(ins, mb)

	case mir.InstrGEP:
		return c.lowerGEP(ins, mb)

	case mir.InstrJump:
		mb.Emit("JUMP", llir.Label(ins.Target))

	case mir.InstrBranch:
		rel, ok := c.relOf[ins.Cond.ID]
		if !ok {
			rel = mir.NE
		}
		// The true and false labels are attached distinctly: collapsing
		// both to the same label would make the branch always take the
		// same side regardless of the comparison's outcome.
		mi := mb.Emit("BRANCH", llir.Label(ins.TrueLabel), llir.Label(ins.FalseLabel))
		mi.Rel = int(rel)

	case mir.InstrCompare:
		dst := c.fresh(width(ins.Typ, ptrWidth))
		a := c.useValue(ins.A, mb)
		b := c.useValue(ins.B, mb)
		mi := mb.Emit("CMP", dst, a, b)
		mi.Rel = int(ins.Rel)
		c.values[ins.ID] = dst
		c.relOf[ins.ID] = ins.Rel

	case mir.InstrCall:
		return c.lowerCall(ins, mb)

	case mir.InstrReturn:
		return c.lowerReturn(ins, mb)

	case mir.InstrMemoryCopy:
		return c.lowerMemoryCopy(ins, mb)

	case mir.InstrStackAllocation:
		size := ins.AllocType.GetByteSize()
		c.mfn.Frame.InsertStackSlot(ins.ID, size)
		c.slots[ins.ID] = true
		c.values[ins.ID] = llir.StackSlot(ins.ID, 0)

	default:
		return c.fail(cerr.InvalidIRShape, fmt.Sprintf("%v", ins.Kind), "unrecognized instruction kind")
	}
	return nil
}
