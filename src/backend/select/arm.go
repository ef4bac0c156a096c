package aselect

import (
	"clc/src/backend/cerr"
	"clc/src/backend/llir"
	"clc/src/mir"
)

// ---------------------
// ----- Constants -----
// ---------------------

const alu12BitUnsigned = 1 << 12  // ADD/SUB/MUL/DIV/CMP _rri immediate field.
const mov16BitSigned = 1 << 15    // MOV_rc immediate field (signed).

// ---------------------
// ----- functions -----
// ---------------------

func fitsUnsigned(v int64, bits int) bool {
	return v >= 0 && v < (int64(1)<<uint(bits))
}

func fitsSigned(v int64, bits int) bool {
	lo := -(int64(1) << uint(bits-1))
	hi := int64(1)<<uint(bits-1) - 1
	return v >= lo && v <= hi
}

// selectALU picks the _rrr or _rri form of a three-operand ALU op,
// folding the third operand into an immediate encoding when it fits 12
// unsigned bits. Negative ADD immediates are converted to SUB.
func selectALU(mi *llir.MachineInstr, generic string) error {
	if len(mi.Ops) != 3 {
		return cerr.New(cerr.InvalidIRShape, passName, generic, "expected 3 operands, got %d", len(mi.Ops))
	}
	op := generic
	third := mi.Ops[2]

	if op == "ADD" && third.Kind == llir.OpImm && third.Imm < 0 {
		op = "SUB"
		third.Imm = -third.Imm
		mi.Ops[2] = third
	}

	if third.Kind == llir.OpImm {
		if fitsUnsigned(third.Imm, 12) {
			mi.Op = aluOpcode(op) + "_rri"
			return nil
		}
		if !fitsSigned(third.Imm, 16) {
			return cerr.New(cerr.ImmediateOutOfRange, passName, op, "immediate %d does not fit the ALU 12-bit unsigned field nor a materializing 16-bit MOV", third.Imm)
		}
		// An immediate that fits 16 signed bits but not 12 unsigned bits
		// is not materialized into a register either: it is reported as
		// out of range, the same as a wider one.
		return cerr.New(cerr.ImmediateOutOfRange, passName, op, "immediate %d does not fit the ALU 12-bit unsigned field", third.Imm)
	}
	mi.Op = aluOpcode(op) + "_rrr"
	return nil
}

func aluOpcode(generic string) string {
	switch generic {
	case "ADD":
		return "ADD"
	case "SUB":
		return "SUB"
	case "MUL":
		return "MUL"
	case "DIV":
		return "SDIV"
	case "AND":
		return "AND"
	default:
		return "ORR"
	}
}

// selectCMP drops CMP's destination operand (the flags register is
// implicit on AArch64) and picks the _rr or _ri form.
func selectCMP(mi *llir.MachineInstr) error {
	if len(mi.Ops) != 3 {
		return cerr.New(cerr.InvalidIRShape, passName, "CMP", "expected 3 operands, got %d", len(mi.Ops))
	}
	a, b := mi.Ops[1], mi.Ops[2]
	if b.Kind == llir.OpImm {
		if !fitsUnsigned(b.Imm, 12) {
			return cerr.New(cerr.ImmediateOutOfRange, passName, "CMP", "immediate %d does not fit the CMP 12-bit unsigned field", b.Imm)
		}
		mi.Op = "CMP_ri"
		mi.Ops = []llir.Operand{a, b}
		return nil
	}
	mi.Op = "CMP_rr"
	mi.Ops = []llir.Operand{a, b}
	return nil
}

// selectSEXT picks MOV_rc for an immediate source, SXTB for an 8-bit
// source, SXTW for a 32-bit source.
func selectSEXT(mi *llir.MachineInstr) {
	dst, src := mi.Ops[0], mi.Ops[1]
	switch {
	case src.Kind == llir.OpImm:
		mi.Op = "MOV_rc"
	case src.Width == 8:
		mi.Op = "SXTB"
	case src.Width == 32:
		mi.Op = "SXTW"
	default:
		mi.Op = "MOV_rr"
	}
	mi.Ops = []llir.Operand{dst, src}
}

// selectZEXT is SEXT's unsigned counterpart.
func selectZEXT(mi *llir.MachineInstr) {
	dst, src := mi.Ops[0], mi.Ops[1]
	switch {
	case src.Kind == llir.OpImm:
		mi.Op = "MOV_rc"
	case src.Width == 8:
		mi.Op = "UXTB"
	default:
		mi.Op = "MOV_rr"
	}
	mi.Ops = []llir.Operand{dst, src}
}

// selectTRUNC picks the instruction form for a TRUNC: an immediate move of
// the masked constant when truncating a constant to 8 bits, an AND with
// 0xFF when truncating a register to 8 bits, or a plain register move
// otherwise (AArch64 has no dedicated truncation instruction - a narrower
// destination register already discards the high bits).
func selectTRUNC(mi *llir.MachineInstr) {
	dst, src := mi.Ops[0], mi.Ops[1]
	switch {
	case dst.Width == 8 && src.Kind == llir.OpImm:
		mi.Op = "MOV_rc"
		src.Imm &= 0xFF
		mi.Ops = []llir.Operand{dst, src}
	case dst.Width == 8:
		mi.Op = "AND_rri"
		mi.Ops = []llir.Operand{dst, src, llir.Imm(0xFF, 32)}
	case dst.Width == 32 && src.Width == 64:
		mi.Op = "MOV_rr"
		mi.Ops = []llir.Operand{dst, src}
	default:
		mi.Op = "MOV_rr"
		mi.Ops = []llir.Operand{dst, src}
	}
}

// selectLOAD picks LDRB for an 8-bit destination, LDR otherwise. The size
// of the stack slot an address operand names is not consulted, so a load
// from a 1-byte slot into a wider destination selects LDR.
func selectLOAD(mi *llir.MachineInstr) {
	dst, addr := mi.Ops[0], mi.Ops[1]
	if dst.Width == 8 {
		mi.Op = "LDRB"
	} else {
		mi.Op = "LDR"
	}
	mi.Ops = []llir.Operand{dst, addr}
}

// selectSTORE is LOAD's symmetric counterpart: STRB vs STR.
func selectSTORE(mi *llir.MachineInstr) {
	addr, val := mi.Ops[0], mi.Ops[1]
	if val.Width == 8 {
		mi.Op = "STRB"
	} else {
		mi.Op = "STR"
	}
	mi.Ops = []llir.Operand{val, addr}
}

// selectMOV picks MOV_rc for an immediate source, MOV_rr for a register
// source, failing if the immediate does not fit MOV's 16-bit signed field.
func selectMOV(mi *llir.MachineInstr) error {
	dst, src := mi.Ops[0], mi.Ops[1]
	if src.Kind == llir.OpImm {
		if !fitsSigned(src.Imm, 16) {
			return cerr.New(cerr.ImmediateOutOfRange, passName, "MOV", "immediate %d does not fit MOV's 16-bit signed field", src.Imm)
		}
		mi.Op = "MOV_rc"
		mi.Ops = []llir.Operand{dst, src}
		return nil
	}
	mi.Op = "MOV_rr"
	mi.Ops = []llir.Operand{dst, src}
	return nil
}

// selectBRANCH rewrites a two-label conditional BRANCH into a single
// conditional branch to the true label, plus an unconditional jump to the
// false label. Both labels must be distinct and preserved: collapsing
// them to a single slot would make the branch jump to the same target
// regardless of the comparison's outcome.
func selectBRANCH(mi *llir.MachineInstr) (*llir.MachineInstr, *llir.MachineInstr, error) {
	if len(mi.Ops) != 2 {
		return mi, nil, cerr.New(cerr.InvalidIRShape, passName, "BRANCH", "expected 2 labels, got %d operands", len(mi.Ops))
	}
	rel := mir.CompareRel(mi.Rel)
	mi.Op = branchOpcode(rel)
	trueLabel, falseLabel := mi.Ops[0], mi.Ops[1]
	mi.Ops = []llir.Operand{trueLabel}
	fallthroughJump := &llir.MachineInstr{Op: "B", Ops: []llir.Operand{falseLabel}}
	return mi, fallthroughJump, nil
}

func branchOpcode(rel mir.CompareRel) string {
	switch rel {
	case mir.EQ:
		return "B_EQ"
	case mir.NE:
		return "B_NE"
	case mir.LT:
		return "B_LT"
	case mir.GT:
		return "B_GT"
	case mir.LE:
		return "B_LE"
	default:
		return "B_GE"
	}
}
