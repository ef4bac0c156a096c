package mir

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Param describes one formal parameter of a Function.
type Param struct {
	ID          int
	Typ         Type
	ByValStruct bool // true when the parameter is a struct passed by value.
}

// Function is a named, ordered sequence of Blocks, owned by exactly one
// Module. Ids for parameters, stack allocations, and instruction results
// share one monotonically increasing namespace per Function.
type Function struct {
	Name     string
	Params   []Param
	RetType  Type
	Blocks   []*Block
	counter  int
	Declared bool // true if this is a declaration only (no blocks); skipped by lowering.
}

// ---------------------
// ----- functions -----
// ---------------------

func (f *Function) nextID() int {
	id := f.counter
	f.counter++
	return id
}

// CreateBlock appends a new, empty Block named name and returns it.
func (f *Function) CreateBlock(name string) *Block {
	b := &Block{Name: name, fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// CreateParam registers a new scalar parameter of type t and returns a
// Value referencing it.
func (f *Function) CreateParam(t Type) Value {
	id := f.nextID()
	f.Params = append(f.Params, Param{ID: id, Typ: t})
	return Reg(id, t)
}

// CreateParamStruct registers a new by-value struct parameter of type t
// and returns a Value referencing it.
func (f *Function) CreateParamStruct(t Type) Value {
	id := f.nextID()
	f.Params = append(f.Params, Param{ID: id, Typ: t, ByValStruct: true})
	return Reg(id, t)
}

// GetParam returns a Value referencing the i'th parameter.
func (f *Function) GetParam(i int) Value {
	p := f.Params[i]
	return Reg(p.ID, p.Typ)
}
