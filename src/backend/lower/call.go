package lower

import (
	"clc/src/backend/cerr"
	"clc/src/backend/llir"
	"clc/src/mir"
)

// ---------------------
// ----- functions -----
// ---------------------

func (c *ctx) lowerCall(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	c.mfn.HasCall = true
	ptrWidth := c.ptrWidth()
	argRegs := c.desc.ABI.ArgRegs
	argIdx := 0

	take := func() (int, error) {
		if argIdx >= len(argRegs) {
			return 0, c.fail(cerr.UnsupportedConstruct, "Call", "call to %s has more arguments than available argument registers", ins.Callee)
		}
		r := argRegs[argIdx]
		argIdx++
		return r, nil
	}

	for _, arg := range ins.Args {
		if arg.Typ.IsStruct() {
			regs, ok := c.structChunks(arg)
			if !ok {
				return c.fail(cerr.InvalidIRShape, "Call", "struct argument has no known register chunks")
			}
			for _, r := range regs {
				target, err := take()
				if err != nil {
					return err
				}
				mb.Emit("MOV", llir.PhysReg(target, ptrWidth), llir.VReg(r, ptrWidth))
			}
			continue
		}
		target, err := take()
		if err != nil {
			return err
		}
		switch {
		case arg.Kind == mir.ValGlobal:
			mb.Emit("GLOBAL_ADDRESS", llir.PhysReg(target, ptrWidth).AsPtr(), llir.GlobalSym(arg.Global))
		case arg.Kind == mir.ValReg && c.slots[arg.ID]:
			mb.Emit("STACK_ADDRESS", llir.PhysReg(target, ptrWidth).AsPtr(), c.values[arg.ID])
		default:
			src := c.useValue(arg, mb)
			mb.Emit("MOV", llir.PhysReg(target, width(arg.Typ, ptrWidth)), src)
		}
	}

	mb.Emit("CALL", llir.FunctionName(ins.Callee))

	if !ins.HasResult || ins.Typ.Kind == mir.KindVoid {
		return nil
	}

	n := chunks(ins.Typ, ptrWidth)
	retRegs := c.desc.ABI.RetRegs
	if n > len(retRegs) {
		return c.fail(cerr.UnsupportedConstruct, "Call", "call result to %s is wider than the return register set", ins.Callee)
	}
	slotID := c.mfn.NextID()
	step := ptrWidth / 8
	c.mfn.Frame.InsertStackSlot(slotID, n*step)
	c.slots[slotID] = true
	for i := 0; i < n; i++ {
		mb.Emit("STORE", llir.StackSlot(slotID, int64(i*step)), llir.PhysReg(retRegs[i], ptrWidth))
	}
	c.values[ins.ID] = llir.StackSlot(slotID, 0)
	c.slots[ins.ID] = true
	return nil
}

func (c *ctx) lowerReturn(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	ptrWidth := c.ptrWidth()
	retRegs := c.desc.ABI.RetRegs

	if !ins.HasRetVal {
		mb.Emit("RET")
		return nil
	}
	v := ins.RetVal

	if v.Typ.IsStruct() {
		slotOp, ok := c.values[v.ID]
		if !ok || slotOp.Kind != llir.OpStackSlot {
			return c.fail(cerr.InvalidIRShape, "Return", "struct return value is not backed by a stack slot")
		}
		n := chunks(v.Typ, ptrWidth)
		step := int64(ptrWidth / 8)
		for i := 0; i < n; i++ {
			tmp := c.fresh(ptrWidth)
			mb.Emit("LOAD", tmp, addrWithOffset(slotOp, int64(i)*step))
			mb.Emit("MOV", llir.PhysReg(retRegs[i], ptrWidth), tmp)
		}
		mb.Emit("RET")
		return nil
	}

	if v.Kind == mir.ValImm {
		w := width(v.Typ, ptrWidth)
		mb.Emit("LOAD_IMM", llir.PhysReg(retRegs[0], w), llir.Imm(v.Imm, w))
		mb.Emit("RET")
		return nil
	}

	// Register result: register allocation's pre-allocation pass binds
	// this vreg to the first return register by scanning for the tail RET.
	op := c.useValue(v, mb)
	mb.Emit("RET", op)
	return nil
}
