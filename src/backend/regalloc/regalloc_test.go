package regalloc

import (
	"testing"

	"clc/src/backend/llir"
	"clc/src/backend/td/arm"
)

func TestAllocate_BindsParameterToFirstArgRegister(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	fn.Params = append(fn.Params, llir.ParamDesc{VRegID: 0, LLT: llir.LowLevelType{Kind: llir.LLTInt, Width: 32}})
	b := fn.CreateBlock("entry")
	b.Emit("RET", llir.VReg(0, 32))

	if err := Allocate(fn, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ret := b.Instrs[len(b.Instrs)-1]
	if ret.Ops[0].Kind != llir.OpPhysReg {
		t.Fatalf("expected the parameter operand rewritten to a physical register, got kind %v", ret.Ops[0].Kind)
	}
	want, _ := desc.Regs.SubregWidth(desc.ABI.ArgRegs[0], 32)
	if ret.Ops[0].Reg != want.ID {
		t.Fatalf("expected the 32-bit parameter bound to the first ABI arg register's 32-bit sub-register (id %d), got %d", want.ID, ret.Ops[0].Reg)
	}
}

func TestAllocate_DistinctVRegsGetDistinctPhysRegs(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	b := fn.CreateBlock("entry")
	b.Emit("ADD_rrr", llir.VReg(2, 32), llir.VReg(0, 32), llir.VReg(1, 32))
	b.Emit("RET", llir.VReg(2, 32))
	fn.NextVReg = 3

	if err := Allocate(fn, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	add := b.Instrs[0]
	seen := map[int]bool{}
	for _, op := range add.Ops {
		if op.Kind != llir.OpPhysReg {
			t.Fatalf("expected every operand rewritten to OpPhysReg, got %v", op.Kind)
		}
		seen[op.Reg] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct physical registers for 3 live vregs, got %d", len(seen))
	}
}

func TestAllocate_MemoryOperandKeepsItsKindAfterRewrite(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	b := fn.CreateBlock("entry")
	b.Emit("LOAD", llir.VReg(1, 32), llir.Memory(0, 8, 64))
	b.Emit("RET", llir.VReg(1, 32))
	fn.NextVReg = 2

	if err := Allocate(fn, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	load := b.Instrs[0]
	addr := load.Ops[1]
	if addr.Kind != llir.OpMemory {
		t.Fatalf("expected the memory operand to keep OpMemory after allocation, got %v", addr.Kind)
	}
	if addr.Offset != 8 {
		t.Fatalf("expected the memory operand's offset preserved, got %d", addr.Offset)
	}
}

func TestAllocate_PromotesCalleeSavedRegisterWhenPrimaryPoolExhausted(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	b := fn.CreateBlock("entry")

	// Force more than len(CallerSaved) simultaneously-live 32-bit vregs so
	// allocation must promote at least one callee-saved register.
	n := len(desc.ABI.CallerSaved) + 2
	ops := make([]llir.Operand, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, llir.VReg(i, 32))
	}
	b.Emit("LIVE_ALL", ops...)
	ret := make([]llir.Operand, len(ops))
	copy(ret, ops)
	b.Emit("RET", ret...)
	fn.NextVReg = n

	if err := Allocate(fn, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fn.UsedCalleeSaved) == 0 {
		t.Fatal("expected at least one callee-saved register to be promoted")
	}
}
