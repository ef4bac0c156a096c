// Package llvmdump is an ancillary diagnostic path, gated behind the
// -emit-llvm CLI flag: it renders a finalized mir.Module as textual LLVM
// IR via the tinygo.org/x/go-llvm binding, for comparing this backend's
// own lowering/selection output against what a mature LLVM-based backend
// would produce from the same MIR. It walks mir.Instr directly, one
// instruction at a time, since the input here is already a linear IR
// rather than a syntax tree.
package llvmdump

import (
	"fmt"
	"sync"

	"clc/src/mir"
	"clc/src/util"
	"tinygo.org/x/go-llvm"
)

// ---------------------
// ----- functions -----
// ---------------------

// Dump translates m into an LLVM module and returns its textual IR
// rendering. Global and function-signature declaration always run on the
// caller's goroutine - they're cheap and later bodies need every
// declaration in place first. Function body generation, the expensive
// part, fans out across opt.Threads worker goroutines when it is greater
// than one, each walking a disjoint slice of m.Functions. Every worker
// keeps its own llvm.Builder: the underlying module and context tolerate
// concurrent mutation from separate builders, but one builder shared
// across goroutines would interleave basic-block writes across different
// functions.
func Dump(opt util.Options, m *mir.Module) (string, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()
	lm := ctx.NewModule(m.Name)
	defer lm.Dispose()

	i64 := llvm.Int64Type()
	ptrT := llvm.PointerType(llvm.Int8Type(), 0)

	globals := make(map[string]llvm.Value, len(m.Globals))
	for _, g := range m.Globals {
		gt := llvm.ArrayType(llvm.Int8Type(), g.Typ.GetByteSize())
		gv := llvm.AddGlobal(lm, gt, g.Name)
		gv.SetInitializer(llvm.ConstNull(gt))
		globals[g.Name] = gv
	}

	funcs := make(map[string]llvm.Value, len(m.Functions))
	for _, fn := range m.Functions {
		params := make([]llvm.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = llvmType(p.Typ, i64, ptrT)
		}
		ftyp := llvm.FunctionType(llvmType(fn.RetType, i64, ptrT), params, false)
		funcs[fn.Name] = llvm.AddFunction(lm, fn.Name, ftyp)
	}

	defined := make([]*mir.Function, 0, len(m.Functions))
	for _, fn := range m.Functions {
		if !fn.Declared {
			defined = append(defined, fn)
		}
	}

	if opt.Threads > 1 {
		if err := genFunctionsParallel(ctx, opt.Threads, defined, funcs, globals, i64, ptrT); err != nil {
			return "", err
		}
	} else {
		b := ctx.NewBuilder()
		defer b.Dispose()
		for _, fn := range defined {
			if err := genFunction(b, funcs[fn.Name], fn, globals, funcs, i64, ptrT); err != nil {
				return "", err
			}
		}
	}

	return lm.String(), nil
}

// genFunctionsParallel walks defined across t worker goroutines, each
// generating the bodies of a contiguous slice of functions with its own
// builder. Any remainder from dividing len(defined) by t is distributed
// one-by-one to the first workers.
func genFunctionsParallel(ctx llvm.Context, t int, defined []*mir.Function, funcs, globals map[string]llvm.Value, i64, ptrT llvm.Type) error {
	l := len(defined)
	if t > l {
		t = l
	}
	if t == 0 {
		return nil
	}

	n := l / t
	res := l % t
	errs := make(chan error, t)
	var wg sync.WaitGroup

	start := 0
	for w := 0; w < t; w++ {
		end := start + n
		if w < res {
			end++
		}
		slice := defined[start:end]
		start = end

		wg.Add(1)
		go func(slice []*mir.Function) {
			defer wg.Done()
			b := ctx.NewBuilder()
			defer b.Dispose()
			for _, fn := range slice {
				if err := genFunction(b, funcs[fn.Name], fn, globals, funcs, i64, ptrT); err != nil {
					errs <- err
					return
				}
			}
		}(slice)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// llvmType maps a mir.Type to its LLVM counterpart for the purposes of
// this diagnostic dump: pointers map to i8*, everything else (scalar
// ints, structs, arrays) maps to i64. Struct-by-value ABI lowering is not
// modeled here - this path exists to compare arithmetic and control-flow
// lowering, not to reproduce the backend's own struct-chunking rules.
func llvmType(t mir.Type, i64, ptrT llvm.Type) llvm.Type {
	switch t.Kind {
	case mir.KindVoid:
		return llvm.VoidType()
	case mir.KindPtr:
		return ptrT
	default:
		return i64
	}
}

func genFunction(b llvm.Builder, lf llvm.Value, fn *mir.Function, globals, funcs map[string]llvm.Value, i64, ptrT llvm.Type) error {
	blocks := make(map[string]llvm.BasicBlock, len(fn.Blocks))
	for _, blk := range fn.Blocks {
		blocks[blk.Name] = llvm.AddBasicBlock(lf, blk.Name)
	}

	values := make(map[int]llvm.Value)
	for i, p := range fn.Params {
		values[p.ID] = lf.Param(i)
	}

	for _, blk := range fn.Blocks {
		b.SetInsertPointAtEnd(blocks[blk.Name])
		for _, ins := range blk.Instrs {
			if err := genInstr(b, ins, values, blocks, globals, funcs, i64, ptrT); err != nil {
				return fmt.Errorf("llvmdump: function %s: %w", fn.Name, err)
			}
		}
	}
	return nil
}

func operand(b llvm.Builder, v mir.Value, values map[int]llvm.Value, globals map[string]llvm.Value, i64 llvm.Type) llvm.Value {
	switch v.Kind {
	case mir.ValImm:
		return llvm.ConstInt(i64, uint64(v.Imm), true)
	case mir.ValGlobal:
		return globals[v.Global]
	default:
		return values[v.ID]
	}
}

func genInstr(b llvm.Builder, ins *mir.Instr, values map[int]llvm.Value, blocks map[string]llvm.BasicBlock, globals map[string]llvm.Value, funcs map[string]llvm.Value, i64, ptrT llvm.Type) error {
	switch ins.Kind {
	case mir.InstrBinary:
		a := operand(b, ins.A, values, globals, i64)
		c := operand(b, ins.B, values, globals, i64)
		var r llvm.Value
		switch ins.Op {
		case mir.OpAdd:
			r = b.CreateAdd(a, c, "")
		case mir.OpSub:
			r = b.CreateSub(a, c, "")
		case mir.OpMul:
			r = b.CreateMul(a, c, "")
		case mir.OpDiv:
			r = b.CreateSDiv(a, c, "")
		case mir.OpMod:
			r = b.CreateSRem(a, c, "")
		case mir.OpAnd:
			r = b.CreateAnd(a, c, "")
		default:
			r = b.CreateOr(a, c, "")
		}
		values[ins.ID] = r

	case mir.InstrUnary:
		src := operand(b, ins.Src, values, globals, i64)
		if ins.UOp == mir.OpNeg {
			values[ins.ID] = b.CreateSub(llvm.ConstInt(i64, 0, true), src, "")
		} else {
			values[ins.ID] = b.CreateXor(llvm.ConstInt(i64, ^uint64(0), true), src, "")
		}

	case mir.InstrStackAllocation:
		values[ins.ID] = b.CreateAlloca(i64, "")

	case mir.InstrStore:
		addr := operand(b, ins.Addr, values, globals, i64)
		val := operand(b, ins.Val, values, globals, i64)
		b.CreateStore(val, addr)

	case mir.InstrLoad:
		addr := operand(b, ins.Addr, values, globals, i64)
		values[ins.ID] = b.CreateLoad(addr, "")

	case mir.InstrGEP:
		base := operand(b, ins.Base, values, globals, i64)
		var idx llvm.Value
		if ins.ConstIndex {
			idx = llvm.ConstInt(i64, uint64(ins.Index.Imm), true)
		} else {
			idx = operand(b, ins.Index, values, globals, i64)
		}
		values[ins.ID] = b.CreateGEP(base, []llvm.Value{idx}, "")

	case mir.InstrJump:
		b.CreateBr(blocks[ins.Target])

	case mir.InstrBranch:
		cond := operand(b, ins.Cond, values, globals, i64)
		cmp := b.CreateICmp(llvm.IntNE, cond, llvm.ConstInt(i64, 0, false), "")
		b.CreateCondBr(cmp, blocks[ins.TrueLabel], blocks[ins.FalseLabel])

	case mir.InstrCompare:
		a := operand(b, ins.A, values, globals, i64)
		c := operand(b, ins.B, values, globals, i64)
		values[ins.ID] = b.CreateICmp(icmpPredicate(ins.Rel), a, c, "")

	case mir.InstrCall:
		target, ok := funcs[ins.Callee]
		if !ok {
			return fmt.Errorf("undeclared function %q", ins.Callee)
		}
		args := make([]llvm.Value, len(ins.Args))
		for i, a := range ins.Args {
			args[i] = operand(b, a, values, globals, i64)
		}
		r := b.CreateCall(target, args, "")
		if ins.HasResult {
			values[ins.ID] = r
		}

	case mir.InstrReturn:
		if ins.HasRetVal {
			b.CreateRet(operand(b, ins.RetVal, values, globals, i64))
		} else {
			b.CreateRetVoid()
		}

	case mir.InstrMemoryCopy:
		dst := operand(b, ins.CopyDst, values, globals, i64)
		src := operand(b, ins.CopySrc, values, globals, i64)
		for off := 0; off < ins.Bytes; off += 8 {
			sp := b.CreateGEP(src, []llvm.Value{llvm.ConstInt(i64, uint64(off/8), false)}, "")
			dp := b.CreateGEP(dst, []llvm.Value{llvm.ConstInt(i64, uint64(off/8), false)}, "")
			b.CreateStore(b.CreateLoad(sp, ""), dp)
		}

	default:
		return fmt.Errorf("unrecognized instruction kind %s", ins.Kind)
	}
	return nil
}

func icmpPredicate(rel mir.CompareRel) llvm.IntPredicate {
	switch rel {
	case mir.EQ:
		return llvm.IntEQ
	case mir.NE:
		return llvm.IntNE
	case mir.LT:
		return llvm.IntSLT
	case mir.GT:
		return llvm.IntSGT
	case mir.LE:
		return llvm.IntSLE
	default:
		return llvm.IntSGE
	}
}
