package mir

import "testing"

func TestType_GetByteSize(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		want int
	}{
		{"int8", IntType(8), 1},
		{"int32", IntType(32), 4},
		{"int64", IntType(64), 8},
		{"ptr", PtrType(IntType(32)), 8},
		{"array", ArrayType(IntType(32), 4), 16},
		{"struct", StructType("pair", IntType(32), IntType(64)), 12},
	}
	for _, c := range cases {
		if got := c.typ.GetByteSize(); got != c.want {
			t.Errorf("%s: GetByteSize() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestType_GetElemByteOffset_Struct(t *testing.T) {
	s := StructType("p", IntType(32), IntType(64), IntType(8))
	offsets := []int{0, 4, 12}
	for i, want := range offsets {
		if got := s.GetElemByteOffset(i); got != want {
			t.Errorf("member %d offset = %d, want %d", i, got, want)
		}
	}
}

func TestType_GetElemByteOffset_Array(t *testing.T) {
	a := ArrayType(IntType(32), 8)
	if got := a.GetElemByteOffset(3); got != 12 {
		t.Fatalf("element 3 offset = %d, want 12", got)
	}
}

func TestType_CalcElemSize(t *testing.T) {
	p := PtrType(IntType(64))
	if got := p.CalcElemSize(); got != 8 {
		t.Fatalf("pointer elem size = %d, want 8", got)
	}
	scalar := IntType(32)
	if got := scalar.CalcElemSize(); got != 4 {
		t.Fatalf("scalar elem size = %d, want 4", got)
	}
}

func TestType_PointerLevelAccumulates(t *testing.T) {
	p1 := PtrType(IntType(32))
	p2 := PtrType(p1)
	if p1.GetPointerLevel() != 1 {
		t.Fatalf("p1 pointer level = %d, want 1", p1.GetPointerLevel())
	}
	if p2.GetPointerLevel() != 2 {
		t.Fatalf("p2 pointer level = %d, want 2", p2.GetPointerLevel())
	}
}

func TestType_IsPredicates(t *testing.T) {
	if !PtrType(IntType(32)).IsPTR() {
		t.Error("expected pointer type to report IsPTR")
	}
	if !StructType("s", IntType(32)).IsStruct() {
		t.Error("expected struct type to report IsStruct")
	}
	if !ArrayType(IntType(32), 2).IsArray() {
		t.Error("expected array type to report IsArray")
	}
	if IntType(32).IsPTR() || IntType(32).IsStruct() || IntType(32).IsArray() {
		t.Error("expected a plain int type to report none of IsPTR/IsStruct/IsArray")
	}
}
