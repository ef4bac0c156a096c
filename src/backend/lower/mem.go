package lower

import (
	"clc/src/backend/llir"
	"clc/src/mir"
)

// ---------------------
// ----- functions -----
// ---------------------

// structChunks returns the chunk vreg ids backing a struct-valued v: either
// the registers a by-value parameter was spilled into, or the registers a
// prior Load of a struct id populated.
func (c *ctx) structChunks(v mir.Value) ([]int, bool) {
	regs, ok := c.structRegs[v.ID]
	return regs, ok
}

func (c *ctx) lowerStore(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	addr := c.resolveAddr(ins.Addr, mb)
	if ins.Val.Typ.IsStruct() {
		step := int64(c.ptrWidth() / 8)
		if regs, ok := c.structChunks(ins.Val); ok {
			for i, r := range regs {
				mb.Emit("STORE", addrWithOffset(addr, int64(i)*step), llir.VReg(r, c.ptrWidth()))
			}
			return nil
		}
		// The struct has no chunk registers of its own (e.g. it is a call
		// result, already spilled to its own stack slot by lowerCall):
		// copy it word by word through a temporary register instead.
		srcAddr := c.resolveAddr(ins.Val, mb)
		n := chunks(ins.Val.Typ, c.ptrWidth())
		for i := 0; i < n; i++ {
			tmp := c.fresh(c.ptrWidth())
			mb.Emit("LOAD", tmp, addrWithOffset(srcAddr, int64(i)*step))
			mb.Emit("STORE", addrWithOffset(addr, int64(i)*step), tmp)
		}
		return nil
	}
	val := c.useValue(ins.Val, mb)
	mb.Emit("STORE", addr, val)
	return nil
}

func (c *ctx) lowerLoad(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	addr := c.resolveAddr(ins.Addr, mb)
	if ins.Typ.IsStruct() {
		n := chunks(ins.Typ, c.ptrWidth())
		step := int64(c.ptrWidth() / 8)
		regs := make([]int, n)
		for i := 0; i < n; i++ {
			dst := c.fresh(c.ptrWidth())
			mb.Emit("LOAD", dst, addrWithOffset(addr, int64(i)*step))
			regs[i] = dst.Reg
		}
		c.structRegs[ins.ID] = regs
		c.values[ins.ID] = llir.VReg(regs[0], c.ptrWidth())
		return nil
	}
	dst := c.fresh(width(ins.Typ, c.ptrWidth()))
	mb.Emit("LOAD", dst, addr)
	c.values[ins.ID] = dst
	return nil
}

func (c *ctx) lowerMemoryCopy(ins *mir.Instr, mb *llir.MachineBasicBlock) error {
	dstAddr := c.resolveAddr(ins.CopyDst, mb)
	srcAddr := c.resolveAddr(ins.CopySrc, mb)
	n := (ins.Bytes + CopyChunkBytes - 1) / CopyChunkBytes
	for i := 0; i < n; i++ {
		off := int64(i * CopyChunkBytes)
		tmp := c.fresh(CopyChunkBytes * 8)
		mb.Emit("LOAD", tmp, addrWithOffset(srcAddr, off))
		mb.Emit("STORE", addrWithOffset(dstAddr, off), tmp)
	}
	return nil
}
