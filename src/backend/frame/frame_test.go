package frame

import (
	"testing"

	"clc/src/backend/llir"
	"clc/src/backend/td/arm"
)

func TestLower_AdjacentSlotsOfDifferentSizesDoNotOverlap(t *testing.T) {
	// A hard-coded 4-byte stride would place an 8-byte slot's successor
	// only 4 bytes later, overlapping it.
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	fn.Frame.InsertStackSlot(0, 8)
	fn.Frame.InsertStackSlot(1, 4)
	fn.CreateBlock("entry")

	Lower(fn, desc)

	pos0 := fn.Frame.GetPosition(0)
	pos1 := fn.Frame.GetPosition(1)
	if pos1 < pos0+8 {
		t.Fatalf("slot 1 at position %d overlaps slot 0 (size 8) at position %d", pos1, pos0)
	}
}

func TestLower_ExpandsStackSlotOperandIntoSPPlusOffset(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	fn.Frame.InsertStackSlot(0, 8)
	b := fn.CreateBlock("entry")
	b.Emit("ADD_rri", llir.VReg(1, 64), llir.StackSlot(0, 0))

	Lower(fn, desc)

	ops := b.Instrs[0].Ops
	if len(ops) != 3 {
		t.Fatalf("expected the 2-operand stack-slot form to expand to 3 operands, got %d", len(ops))
	}
	if ops[1].Kind != llir.OpPhysReg || ops[1].Reg != desc.Regs.SP().ID {
		t.Fatalf("expected the second operand rewritten to SP, got %+v", ops[1])
	}
	if ops[2].Kind != llir.OpImm || ops[2].Imm != 0 {
		t.Fatalf("expected the slot's position as the trailing immediate, got %+v", ops[2])
	}
}

func TestLower_ExpandsMemoryOperandIntoBasePlusOffset(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	b := fn.CreateBlock("entry")
	b.Emit("LDR", llir.VReg(1, 32), llir.Memory(5, 16, 64))

	Lower(fn, desc)

	ops := b.Instrs[0].Ops
	if len(ops) != 3 {
		t.Fatalf("expected the memory operand to expand to 3 operands, got %d", len(ops))
	}
	if ops[1].Kind != llir.OpPhysReg || ops[1].Reg != 5 {
		t.Fatalf("expected the base register preserved as operand 2, got %+v", ops[1])
	}
	if ops[2].Imm != 16 {
		t.Fatalf("expected the offset as the trailing immediate, got %+v", ops[2])
	}
}

func TestLower_LeavesOrdinaryOperandsUntouched(t *testing.T) {
	desc := arm.NewDescription()
	fn := llir.NewMachineFunction("f")
	b := fn.CreateBlock("entry")
	b.Emit("ADD_rrr", llir.VReg(2, 32), llir.VReg(0, 32), llir.VReg(1, 32))

	Lower(fn, desc)

	if len(b.Instrs[0].Ops) != 3 {
		t.Fatalf("expected a plain 3-operand instruction to stay 3 operands, got %d", len(b.Instrs[0].Ops))
	}
}
