package aselect

import (
	"testing"

	"clc/src/backend/llir"
	"clc/src/backend/td/arm"
)

func TestSelect_MOVPropagatesImmediateOutOfRangeError(t *testing.T) {
	// Regression: selectBlock's dispatch once discarded selectMOV's
	// returned error (case "MOV": selectMOV(mi)), silently swallowing an
	// ImmediateOutOfRange failure for an oversized MOV immediate.
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	b := fn.CreateBlock("entry")
	b.Emit("MOV", llir.VReg(0, 32), llir.Imm(1<<20, 32))

	m := &llir.Module{Functions: []*llir.MachineFunction{fn}}
	if err := Select(m, desc); err == nil {
		t.Fatal("expected Select to surface the MOV immediate-out-of-range error")
	}
}

func TestNormalizeWidths_WidensNarrowIntegerButNotPointer(t *testing.T) {
	mi := &llir.MachineInstr{Ops: []llir.Operand{
		llir.VReg(0, 8),
		llir.VReg(1, 64).AsPtr(),
	}}
	normalizeWidths(mi)
	if mi.Ops[0].Width != 32 {
		t.Fatalf("expected narrow integer operand widened to 32, got %d", mi.Ops[0].Width)
	}
	if mi.Ops[1].Width != 64 {
		t.Fatalf("expected pointer operand width left untouched at 64, got %d", mi.Ops[1].Width)
	}
}

func TestSelect_RewritesGenericOpcodesAcrossAFunction(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("add_one")
	b := fn.CreateBlock("entry")
	b.Emit("ADD", llir.VReg(0, 32), llir.VReg(1, 32), llir.Imm(1, 32))
	b.Emit("RET", llir.VReg(0, 32))

	m := &llir.Module{Functions: []*llir.MachineFunction{fn}}
	if err := Select(m, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Instrs[0].Op != "ADD_rri" {
		t.Fatalf("expected ADD to rewrite to ADD_rri, got %s", b.Instrs[0].Op)
	}
}
