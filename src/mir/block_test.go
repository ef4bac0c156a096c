package mir

import "testing"

func TestBlock_BuilderMethodsAssignSequentialIDs(t *testing.T) {
	fn := &Function{Name: "f"}
	b := fn.CreateBlock("entry")

	a := fn.CreateParam(IntType(32))
	v1 := b.CreateBinary(OpAdd, a, Const(1, IntType(32)), IntType(32))
	v2 := b.CreateUnary(OpNeg, v1, IntType(32))
	b.CreateReturn(v2)

	if a.ID != 0 {
		t.Fatalf("expected the first parameter to get id 0, got %d", a.ID)
	}
	if v1.ID != 1 || v2.ID != 2 {
		t.Fatalf("expected sequential ids 1, 2; got %d, %d", v1.ID, v2.ID)
	}
	if len(b.Instrs) != 3 {
		t.Fatalf("expected 3 instructions (binary, unary, return), got %d", len(b.Instrs))
	}
	if b.Instrs[0].Kind != InstrBinary || b.Instrs[1].Kind != InstrUnary || b.Instrs[2].Kind != InstrReturn {
		t.Fatalf("unexpected instruction kinds: %v, %v, %v", b.Instrs[0].Kind, b.Instrs[1].Kind, b.Instrs[2].Kind)
	}
}

func TestBlock_CreateGEPConstRecordsOffsetIndex(t *testing.T) {
	fn := &Function{Name: "f"}
	b := fn.CreateBlock("entry")
	s := StructType("pair", IntType(32), IntType(64))
	base := fn.CreateParam(PtrType(s))

	b.CreateGEPConst(base, 1, PtrType(IntType(64)))

	gep := b.Instrs[0]
	if gep.Kind != InstrGEP || !gep.ConstIndex {
		t.Fatalf("expected a const-index GEP, got %+v", gep)
	}
	if gep.Index.Imm != 1 {
		t.Fatalf("expected index immediate 1, got %d", gep.Index.Imm)
	}
}

func TestBlock_CreateCallSetsHasResultFromReturnType(t *testing.T) {
	fn := &Function{Name: "f"}
	b := fn.CreateBlock("entry")

	b.CreateCall("g", nil, Type{Kind: KindVoid})
	b.CreateCall("h", nil, IntType(32))

	if b.Instrs[0].HasResult {
		t.Fatal("expected a void call to report HasResult=false")
	}
	if !b.Instrs[1].HasResult {
		t.Fatal("expected a non-void call to report HasResult=true")
	}
}

func TestBlock_CreateStackAllocationReturnsPointerValue(t *testing.T) {
	fn := &Function{Name: "f"}
	b := fn.CreateBlock("entry")

	v := b.CreateStackAllocation(IntType(32))

	if !v.Typ.IsPTR() {
		t.Fatalf("expected a stack allocation to yield a pointer-typed value, got %s", v.Typ)
	}
	if b.Instrs[0].Kind != InstrStackAllocation || b.Instrs[0].AllocType.BitWidth != 32 {
		t.Fatalf("expected a StackAllocation instruction allocating a 32-bit int, got %+v", b.Instrs[0])
	}
}
