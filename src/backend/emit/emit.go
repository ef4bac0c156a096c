// Package emit implements assembly emission: the final pass that walks a
// post-frame-lowering llir.Module and writes AArch64 assembly text through
// a util.Writer, substituting each MachineInstr's operands into its target
// opcode's asm template ("$1, $2, ...").
package emit

import (
	"strconv"
	"strings"

	"clc/src/backend/llir"
	"clc/src/backend/td"
	"clc/src/util"
)

const wordSize = 8 // bytes; AArch64 general-purpose registers and pointers are 64-bit.

// ---------------------
// ----- functions -----
// ---------------------

// Emit writes m's globals and functions as AArch64 assembly to w.
func Emit(m *llir.Module, desc *td.Description, w *util.Writer) {
	for _, g := range m.Globals {
		emitGlobal(g, w)
	}
	for _, fn := range m.Functions {
		emitFunction(fn, desc, w)
	}
}

func align(n, to int) int {
	if to <= 0 {
		return n
	}
	if r := n % to; r != 0 {
		n += to - r
	}
	return n
}

func chunkDirective(elemSize int) string {
	switch elemSize {
	case 1:
		return ".byte"
	case 2:
		return ".hword"
	case 8:
		return ".xword"
	default:
		return ".word"
	}
}

func emitGlobal(g *llir.GlobalData, w *util.Writer) {
	w.Write("\n\t.data\n\t.global %s\n", g.Name)
	w.Label(g.Name)
	emitted := 0
	for _, a := range g.Allocs {
		w.Write("\t%s\t%d\n", chunkDirective(a.ElemSize), a.Value)
		emitted += a.ElemSize
	}
	if pad := g.Size - emitted; pad > 0 {
		w.Write("\t.zero\t%d\n", pad)
	}
}

// calleeSavedArea returns the number of bytes of the frame set aside to
// spill the callee-saved registers regalloc promoted into use, plus the
// link register's slot when the function itself issues a call.
func calleeSavedArea(fn *llir.MachineFunction) int {
	n := len(fn.UsedCalleeSaved)
	if fn.HasCall {
		n++
	}
	return n * wordSize
}

func emitFunction(fn *llir.MachineFunction, desc *td.Description, w *util.Writer) {
	if len(fn.Blocks) == 0 {
		return
	}
	w.Write("\n\t.text\n\t.global %s\n", fn.Name)
	w.Label(fn.Name)

	frameSize := align(fn.Frame.ObjectsSize()+calleeSavedArea(fn), desc.ABI.StackAlign)
	sp := desc.Regs.SP().Name
	lr := desc.Regs.LR().Name

	if frameSize > 0 {
		w.Write("\tsub\t%s, %s, #%d\n", sp, sp, frameSize)
	}
	base := fn.Frame.ObjectsSize()
	if fn.HasCall {
		w.Write("\tstr\t%s, [%s, #%d]\n", lr, sp, base)
		base += wordSize
	}
	for i, reg := range fn.UsedCalleeSaved {
		w.Write("\tstr\t%s, [%s, #%d]\n", desc.Regs.ByID(reg).Name, sp, base+i*wordSize)
	}

	for _, b := range fn.Blocks {
		w.Label(b.Name)
		for _, mi := range b.Instrs {
			if mi.Op == "RET" {
				emitEpilogue(fn, desc, w, frameSize, base)
			}
			emitInstr(mi, desc, w)
		}
	}
}

func emitEpilogue(fn *llir.MachineFunction, desc *td.Description, w *util.Writer, frameSize, base int) {
	sp := desc.Regs.SP().Name
	for i := len(fn.UsedCalleeSaved) - 1; i >= 0; i-- {
		reg := fn.UsedCalleeSaved[i]
		w.Write("\tldr\t%s, [%s, #%d]\n", desc.Regs.ByID(reg).Name, sp, base+i*wordSize)
	}
	if fn.HasCall {
		lr := desc.Regs.LR().Name
		w.Write("\tldr\t%s, [%s, #%d]\n", lr, sp, base-wordSize)
	}
	if frameSize > 0 {
		w.Write("\tadd\t%s, %s, #%d\n", sp, sp, frameSize)
	}
}

func emitInstr(mi *llir.MachineInstr, desc *td.Description, w *util.Writer) {
	def, ok := desc.Instrs[mi.Op]
	if !ok {
		w.Write("\t// unrecognized opcode %s\n", mi.Op)
		return
	}
	line := def.AsmTemplate
	for i, op := range mi.Ops {
		placeholder := "$" + strconv.Itoa(i+1)
		line = strings.ReplaceAll(line, placeholder, renderOperand(op, desc))
	}
	w.Write("\t%s\n", line)
}

// renderOperand renders a single operand for substitution into an asm
// template. Register and address operands have already been rewritten by
// regalloc and frame lowering to a PhysReg or Imm; labels, global symbols
// and function names are rendered by name. Any other kind renders as "?".
func renderOperand(op llir.Operand, desc *td.Description) string {
	switch op.Kind {
	case llir.OpPhysReg:
		return desc.Regs.ByID(op.Reg).Name
	case llir.OpImm:
		return strconv.FormatInt(op.Imm, 10)
	case llir.OpLabel, llir.OpGlobalSym, llir.OpFunctionName:
		return op.Name
	default:
		return "?"
	}
}
