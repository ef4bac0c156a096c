package mir

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Block is a basic block: a named, ordered sequence of instructions owned
// by exactly one Function. Callers build a Block with the fluent
// CreateXXX methods below rather than constructing Instr values by hand.
type Block struct {
	Name   string
	Instrs []*Instr
	fn     *Function
}

// ---------------------
// ----- functions -----
// ---------------------

// CreateBinary appends a Binary instruction computing op(a, b) and returns
// a Value referencing its result.
func (b *Block) CreateBinary(op BinOp, a, b2 Value, t Type) Value {
	id := b.fn.nextID()
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrBinary, ID: id, Op: op, A: a, B: b2, Typ: t})
	return Reg(id, t)
}

// CreateUnary appends a Unary instruction computing op(src) and returns a
// Value referencing its result.
func (b *Block) CreateUnary(op UnOp, src Value, t Type) Value {
	id := b.fn.nextID()
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrUnary, ID: id, UOp: op, Src: src, Typ: t})
	return Reg(id, t)
}

// CreateStore appends a Store of val into addr.
func (b *Block) CreateStore(addr, val Value) {
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrStore, Addr: addr, Val: val})
}

// CreateLoad appends a Load from addr and returns a Value referencing its result.
func (b *Block) CreateLoad(addr Value, t Type) Value {
	id := b.fn.nextID()
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrLoad, ID: id, Addr: addr, Typ: t})
	return Reg(id, t)
}

// CreateGEPConst appends a GEP computing the address of the idx'th
// element/member of base, with a compile-time-constant index.
func (b *Block) CreateGEPConst(base Value, idx int, t Type) Value {
	id := b.fn.nextID()
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrGEP, ID: id, Base: base, Index: Const(int64(idx), IntType(64)), ConstIndex: true, Typ: t})
	return Reg(id, t)
}

// CreateGEPReg appends a GEP computing the address of the element of base
// selected by the register-valued index.
func (b *Block) CreateGEPReg(base, index Value, t Type) Value {
	id := b.fn.nextID()
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrGEP, ID: id, Base: base, Index: index, ConstIndex: false, Typ: t})
	return Reg(id, t)
}

// CreateJump appends an unconditional Jump to target.
func (b *Block) CreateJump(target string) {
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrJump, Target: target})
}

// CreateBranch appends a conditional Branch on cond to trueLabel or falseLabel.
func (b *Block) CreateBranch(cond Value, trueLabel, falseLabel string) {
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrBranch, Cond: cond, TrueLabel: trueLabel, FalseLabel: falseLabel})
}

// CreateCompare appends a Compare of a rel b and returns a Value referencing
// its boolean result.
func (b *Block) CreateCompare(rel CompareRel, a, b2 Value) Value {
	id := b.fn.nextID()
	t := IntType(32)
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrCompare, ID: id, Rel: rel, A: a, B: b2, Typ: t})
	return Reg(id, t)
}

// CreateCall appends a Call to callee with args. If t is non-void, the
// instruction produces a result and the returned Value is valid.
func (b *Block) CreateCall(callee string, args []Value, t Type) Value {
	id := b.fn.nextID()
	hasResult := t.Kind != KindVoid
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrCall, ID: id, Callee: callee, Args: args, Typ: t, HasResult: hasResult})
	return Reg(id, t)
}

// CreateReturn appends a Return of val.
func (b *Block) CreateReturn(val Value) {
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrReturn, RetVal: val, HasRetVal: true})
}

// CreateReturnVoid appends a Return with no value.
func (b *Block) CreateReturnVoid() {
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrReturn})
}

// CreateMemoryCopy appends a MemoryCopy of n bytes from src to dst.
func (b *Block) CreateMemoryCopy(dst, src Value, n int) {
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrMemoryCopy, CopyDst: dst, CopySrc: src, Bytes: n})
}

// CreateStackAllocation appends a StackAllocation of a value of type t and
// returns a Value referencing the allocated slot's address.
func (b *Block) CreateStackAllocation(t Type) Value {
	id := b.fn.nextID()
	pt := PtrType(t)
	b.Instrs = append(b.Instrs, &Instr{Kind: InstrStackAllocation, ID: id, AllocType: t, Typ: pt})
	return Reg(id, pt)
}
