package mir

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ConstElem is one allocation entry of a Global's initializer list: a
// contiguous run of element_size bytes holding value (zero-extended/
// truncated to element_size).
type ConstElem struct {
	ElemSize int
	Value    int64
}

// Global is a module-level data object: a name, its type, and its total
// size with an ordered initializer allocation list. Uninitialized globals
// hold one zero allocation equal to their size.
type Global struct {
	Name string
	Typ  Type
	Init []ConstElem
}

// Module is the top-level MIR artifact the front-end hands to the backend:
// a finalized set of functions and global variables.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []*Global
}

// ---------------------
// ----- functions -----
// ---------------------

// NewModule returns an empty Module named name.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// CreateFunction appends a new Function named name and returns it.
func (m *Module) CreateFunction(name string, ret Type) *Function {
	fn := &Function{Name: name, RetType: ret}
	m.Functions = append(m.Functions, fn)
	return fn
}

// CreateGlobal appends a new zero-initialized Global of type t.
func (m *Module) CreateGlobal(name string, t Type) *Global {
	g := &Global{Name: name, Typ: t, Init: []ConstElem{{ElemSize: t.GetByteSize(), Value: 0}}}
	m.Globals = append(m.Globals, g)
	return g
}
