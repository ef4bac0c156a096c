package lower

import (
	"testing"

	"clc/src/backend/llir"
	"clc/src/backend/td/arm"
	"clc/src/mir"
)

func newFunc(name string) *mir.Function {
	return &mir.Function{Name: name}
}

func addBlock(fn *mir.Function, name string, instrs ...*mir.Instr) *mir.Block {
	b := &mir.Block{Name: name, Instrs: instrs}
	fn.Blocks = append(fn.Blocks, b)
	return b
}

func TestLower_BinaryEmitsGenericOpcodeWithFreshDestination(t *testing.T) {
	desc := arm.NewDescription()
	fn := newFunc("f")
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrBinary, ID: 0, Typ: mir.IntType(32), Op: mir.OpAdd,
			A: mir.Const(1, mir.IntType(32)), B: mir.Const(2, mir.IntType(32))},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instrs := lm.Functions[0].Blocks[0].Instrs
	if len(instrs) != 1 || instrs[0].Op != "ADD" {
		t.Fatalf("expected a single ADD machine instruction, got %+v", instrs)
	}
}

func TestLower_UnaryNotExpandsToTwoSubtractions(t *testing.T) {
	desc := arm.NewDescription()
	fn := newFunc("f")
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrUnary, ID: 0, Typ: mir.IntType(32), UOp: mir.OpNot,
			Src: mir.Const(3, mir.IntType(32))},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instrs := lm.Functions[0].Blocks[0].Instrs
	if len(instrs) != 2 || instrs[0].Op != "SUB" || instrs[1].Op != "SUB" {
		t.Fatalf("expected NOT lowered to two SUBs, got %+v", instrs)
	}
	if instrs[1].Ops[2].Imm != 1 {
		t.Fatalf("expected the second SUB to subtract 1, got %+v", instrs[1].Ops[2])
	}
}

func TestLower_BranchAttachesDistinctTrueAndFalseLabels(t *testing.T) {
	// The true and false labels of a BRANCH must stay distinct operands;
	// collapsing both slots to the same label would make every branch
	// always take the same side regardless of the comparison.
	desc := arm.NewDescription()
	fn := newFunc("f")
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrCompare, ID: 0, Typ: mir.IntType(32), Rel: mir.EQ,
			A: mir.Const(1, mir.IntType(32)), B: mir.Const(1, mir.IntType(32))},
		&mir.Instr{Kind: mir.InstrBranch, Cond: mir.Reg(0, mir.IntType(32)),
			TrueLabel: "L_true", FalseLabel: "L_false"},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instrs := lm.Functions[0].Blocks[0].Instrs
	branch := instrs[len(instrs)-1]
	if branch.Op != "BRANCH" {
		t.Fatalf("expected a trailing BRANCH instruction, got %s", branch.Op)
	}
	if branch.Ops[0].Name != "L_true" || branch.Ops[1].Name != "L_false" {
		t.Fatalf("expected distinct true/false labels, got %+v", branch.Ops)
	}
	if branch.Ops[0].Name == branch.Ops[1].Name {
		t.Fatal("true and false labels must not collapse to the same label")
	}
	if mir.CompareRel(branch.Rel) != mir.EQ {
		t.Fatalf("expected the branch to carry the Compare's relation, got %v", branch.Rel)
	}
}

func TestLower_CompareRecordsRelationForLaterBranch(t *testing.T) {
	desc := arm.NewDescription()
	fn := newFunc("f")
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrCompare, ID: 0, Typ: mir.IntType(32), Rel: mir.LT,
			A: mir.Const(1, mir.IntType(32)), B: mir.Const(2, mir.IntType(32))},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmp := lm.Functions[0].Blocks[0].Instrs[0]
	if cmp.Op != "CMP" || mir.CompareRel(cmp.Rel) != mir.LT {
		t.Fatalf("expected CMP carrying LT, got %s rel=%v", cmp.Op, cmp.Rel)
	}
}

func TestLower_MemoryCopyChunksAtCopyChunkBytes(t *testing.T) {
	desc := arm.NewDescription()
	fn := newFunc("f")
	ptrTy := mir.PtrType(mir.IntType(32))
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrStackAllocation, ID: 0, AllocType: mir.IntType(32)},
		&mir.Instr{Kind: mir.InstrStackAllocation, ID: 1, AllocType: mir.IntType(32)},
		&mir.Instr{Kind: mir.InstrMemoryCopy,
			CopyDst: mir.Reg(0, ptrTy), CopySrc: mir.Reg(1, ptrTy), Bytes: 10},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instrs := lm.Functions[0].Blocks[0].Instrs
	var loads, stores int
	for _, ins := range instrs {
		switch ins.Op {
		case "LOAD":
			loads++
		case "STORE":
			stores++
		}
	}
	wantChunks := (10 + CopyChunkBytes - 1) / CopyChunkBytes
	if loads != wantChunks || stores != wantChunks {
		t.Fatalf("expected %d load/store pairs for 10 bytes at chunk size %d, got loads=%d stores=%d",
			wantChunks, CopyChunkBytes, loads, stores)
	}
}

func TestLower_StackAllocationRegistersAStackSlot(t *testing.T) {
	desc := arm.NewDescription()
	fn := newFunc("f")
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrStackAllocation, ID: 0, AllocType: mir.IntType(32)},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mfn := lm.Functions[0]
	if !mfn.Frame.HasSlot(0) {
		t.Fatal("expected a stack slot registered for id 0")
	}
}

func TestLower_DeclaredFunctionsAreSkipped(t *testing.T) {
	desc := arm.NewDescription()
	decl := newFunc("extern_fn")
	decl.Declared = true
	m := &mir.Module{Functions: []*mir.Function{decl}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lm.Functions) != 0 {
		t.Fatalf("expected declared-only functions to produce no machine function, got %d", len(lm.Functions))
	}
}

func TestLower_StoresStructResultOfACall(t *testing.T) {
	// A struct-typed call result is spilled straight to a stack slot by
	// lowerCall rather than loaded into chunk registers; storing it must
	// fall back to copying from that slot instead of failing outright.
	desc := arm.NewDescription()
	fn := newFunc("f")
	structTy := mir.StructType("pair", mir.IntType(64), mir.IntType(64))
	ptrTy := mir.PtrType(structTy)
	addBlock(fn, "entry",
		&mir.Instr{Kind: mir.InstrStackAllocation, ID: 0, AllocType: structTy},
		&mir.Instr{Kind: mir.InstrCall, ID: 1, Callee: "returns_struct", Typ: structTy, HasResult: true},
		&mir.Instr{Kind: mir.InstrStore,
			Addr: mir.Reg(0, ptrTy), Val: mir.Reg(1, structTy)},
	)
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instrs := lm.Functions[0].Blocks[0].Instrs
	var loads, stores int
	for _, ins := range instrs {
		switch ins.Op {
		case "LOAD":
			loads++
		case "STORE":
			stores++
		}
	}
	// 2 stores spilling the call's return registers, plus 2 loads and 2
	// stores copying the struct from its spill slot into the destination.
	if loads != 2 {
		t.Fatalf("expected 2 loads copying the 2-word struct out of its spill slot, got %d", loads)
	}
	if stores != 4 {
		t.Fatalf("expected 4 stores (2 spilling the call result, 2 copying it onward), got %d", stores)
	}
}

func TestLower_JumpEmitsLabelOperand(t *testing.T) {
	desc := arm.NewDescription()
	fn := newFunc("f")
	addBlock(fn, "entry", &mir.Instr{Kind: mir.InstrJump, Target: "L_loop"})
	m := &mir.Module{Functions: []*mir.Function{fn}}

	lm, err := Lower(m, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jump := lm.Functions[0].Blocks[0].Instrs[0]
	if jump.Op != "JUMP" || jump.Ops[0].Kind != llir.OpLabel || jump.Ops[0].Name != "L_loop" {
		t.Fatalf("expected JUMP to L_loop, got %+v", jump)
	}
}
