package mir

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeModuleJSON(t *testing.T, m *Module) string {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed marshaling module: %v", err)
	}
	path := filepath.Join(t.TempDir(), "module.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed writing module JSON: %v", err)
	}
	return path
}

func TestLoadModule_RestoresFunctionCounterPastHighestID(t *testing.T) {
	m := NewModule("prog")
	fn := m.CreateFunction("f", IntType(32))
	b := fn.CreateBlock("entry")
	p := fn.CreateParam(IntType(32))
	v := b.CreateBinary(OpAdd, p, Const(1, IntType(32)), IntType(32))
	b.CreateReturn(v)

	path := writeModuleJSON(t, m)
	loaded, err := LoadModule(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(loaded.Functions))
	}
	lfn := loaded.Functions[0]
	// A fresh id must continue past the highest id already used (1), not
	// collide with the parameter (id 0) or the binary result (id 1).
	next := lfn.nextID()
	if next <= v.ID {
		t.Fatalf("expected the restored counter to continue past %d, got %d", v.ID, next)
	}
}

func TestLoadModule_RestoresBlockBackReference(t *testing.T) {
	m := NewModule("prog")
	fn := m.CreateFunction("f", Type{Kind: KindVoid})
	b := fn.CreateBlock("entry")
	b.CreateReturnVoid()

	path := writeModuleJSON(t, m)
	loaded, err := LoadModule(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lb := loaded.Functions[0].Blocks[0]
	// CreateBinary relies on b.fn to mint a fresh id; if LoadModule failed to
	// restore the back-reference this would nil-pointer-panic.
	lb.CreateBinary(OpAdd, Const(1, IntType(32)), Const(2, IntType(32)), IntType(32))
	if len(lb.Instrs) != 2 {
		t.Fatalf("expected the restored block to accept a new instruction, got %d instrs", len(lb.Instrs))
	}
}

func TestLoadModule_PreservesGlobalsAndInitializers(t *testing.T) {
	m := NewModule("prog")
	m.CreateGlobal("counter", IntType(32))

	path := writeModuleJSON(t, m)
	loaded, err := LoadModule(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Globals) != 1 || loaded.Globals[0].Name != "counter" {
		t.Fatalf("expected global 'counter' preserved, got %+v", loaded.Globals)
	}
	if len(loaded.Globals[0].Init) != 1 || loaded.Globals[0].Init[0].ElemSize != 4 {
		t.Fatalf("expected a single 4-byte zero initializer, got %+v", loaded.Globals[0].Init)
	}
}

func TestLoadModule_MissingFileReturnsError(t *testing.T) {
	if _, err := LoadModule(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a nonexistent module file")
	}
}
