// Package select implements instruction selection: it walks every
// MachineInstr in a lowered llir.Module and rewrites its generic opcode
// into a concrete target opcode, folding immediates and normalizing
// operand widths along the way.
package aselect

import (
	"clc/src/backend/cerr"
	"clc/src/backend/llir"
	"clc/src/backend/td"
)

const passName = "select"

// ---------------------
// ----- functions -----
// ---------------------

// Select rewrites every instruction of every function in m for the target
// described by desc.
func Select(m *llir.Module, desc *td.Description) error {
	for _, fn := range m.Functions {
		for _, b := range fn.Blocks {
			if err := selectBlock(b, desc); err != nil {
				return err
			}
		}
	}
	return nil
}

// selectBlock rewrites b's instructions in place. BRANCH is the one rule
// that needs a second instruction (the unconditional jump to the false
// label), so this walks with an explicit output slice rather than mutating
// mi in place for every opcode.
func selectBlock(b *llir.MachineBasicBlock, desc *td.Description) error {
	out := make([]*llir.MachineInstr, 0, len(b.Instrs))
	for _, mi := range b.Instrs {
		rewritten, extra, err := selectInstr(mi, desc)
		if err != nil {
			return err
		}
		normalizeWidths(rewritten)
		out = append(out, rewritten)
		if extra != nil {
			out = append(out, extra)
		}
	}
	b.Instrs = out
	return nil
}

// normalizeWidths widens any non-pointer register/immediate operand
// narrower than 32 bits to 32 bits, the architecture's minimum
// general-purpose operand width. selectBlock applies it after an
// instruction's selection rule has run, so the width-sensitive rules
// (LDRB/STRB, SXTB, UXTB, 8-bit TRUNC) still see the original width; the
// ALU rules do not depend on operand width.
//
// Widening every operand indiscriminately would corrupt a pointer's
// width, since a pointer and a plain 64-bit integer look identical once
// widened; operands tagged IsPtr are left untouched here.
func normalizeWidths(mi *llir.MachineInstr) {
	for i := range mi.Ops {
		op := &mi.Ops[i]
		if op.IsPtr {
			continue
		}
		switch op.Kind {
		case llir.OpVReg, llir.OpPhysReg, llir.OpImm, llir.OpParameter:
			if op.Width != 0 && op.Width < 32 {
				op.Width = 32
			}
		}
	}
}

func selectInstr(mi *llir.MachineInstr, desc *td.Description) (rewritten, extra *llir.MachineInstr, err error) {
	switch mi.Op {
	case "ADD", "SUB", "MUL", "DIV", "AND", "OR":
		err = selectALU(mi, mi.Op)
	case "MOD":
		err = cerr.New(cerr.UnsupportedConstruct, passName, "MOD", "AArch64 has no native remainder instruction")
	case "CMP":
		err = selectCMP(mi)
	case "SEXT":
		selectSEXT(mi)
	case "ZEXT":
		selectZEXT(mi)
	case "TRUNC":
		selectTRUNC(mi)
	case "LOAD":
		selectLOAD(mi)
	case "STORE":
		selectSTORE(mi)
	case "STACK_ADDRESS":
		mi.Op = "ADD_rri"
	case "GLOBAL_ADDRESS":
		mi.Op = "ADRP_ADD"
	case "JUMP":
		mi.Op = "B"
	case "BRANCH":
		return selectBRANCH(mi)
	case "CALL":
		mi.Op = "BL"
	case "RET", "ADRP_ADD", "B", "BL":
		// already target-shaped or operand-free.
	case "MOV":
		err = selectMOV(mi)
	case "LOAD_IMM":
		mi.Op = "MOV_rc"
	default:
		err = cerr.New(cerr.InvalidIRShape, passName, mi.Op, "no selection rule for generic opcode %q", mi.Op)
	}
	return mi, nil, err
}
