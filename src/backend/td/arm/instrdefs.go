package arm

import "clc/src/backend/td"

// instrTable is the AArch64 asm-template catalog the selector rewrites
// generic opcodes into and the emitter renders operands against. Templates
// are grounded in the reference compiler's
// AArch64TargetArchs/AArch64InstructionDefinitions.cpp table.
func instrTable() td.InstrTable {
	defs := []td.InstrDef{
		{Opcode: "ADD_rrr", AsmTemplate: "add $1, $2, $3", NumOperands: 3},
		{Opcode: "ADD_rri", AsmTemplate: "add $1, $2, #$3", NumOperands: 3},
		{Opcode: "SUB_rrr", AsmTemplate: "sub $1, $2, $3", NumOperands: 3},
		{Opcode: "SUB_rri", AsmTemplate: "sub $1, $2, #$3", NumOperands: 3},
		{Opcode: "MUL_rrr", AsmTemplate: "mul $1, $2, $3", NumOperands: 3},
		{Opcode: "MUL_rri", AsmTemplate: "mul $1, $2, #$3", NumOperands: 3},
		{Opcode: "SDIV_rrr", AsmTemplate: "sdiv $1, $2, $3", NumOperands: 3},
		{Opcode: "SDIV_rri", AsmTemplate: "sdiv $1, $2, #$3", NumOperands: 3},
		{Opcode: "UDIV_rrr", AsmTemplate: "udiv $1, $2, $3", NumOperands: 3},
		{Opcode: "UDIV_rri", AsmTemplate: "udiv $1, $2, #$3", NumOperands: 3},
		{Opcode: "AND_rrr", AsmTemplate: "and $1, $2, $3", NumOperands: 3},
		{Opcode: "AND_rri", AsmTemplate: "and $1, $2, #$3", NumOperands: 3},
		{Opcode: "ORR_rrr", AsmTemplate: "orr $1, $2, $3", NumOperands: 3},
		{Opcode: "ORR_rri", AsmTemplate: "orr $1, $2, #$3", NumOperands: 3},
		{Opcode: "CMP_rr", AsmTemplate: "cmp $1, $2", NumOperands: 2},
		{Opcode: "CMP_ri", AsmTemplate: "cmp $1, #$2", NumOperands: 2},
		{Opcode: "MOV_rr", AsmTemplate: "mov $1, $2", NumOperands: 2},
		{Opcode: "MOV_rc", AsmTemplate: "mov $1, #$2", NumOperands: 2},
		{Opcode: "SXTB", AsmTemplate: "sxtb $1, $2", NumOperands: 2},
		{Opcode: "SXTW", AsmTemplate: "sxtw $1, $2", NumOperands: 2},
		{Opcode: "UXTB", AsmTemplate: "uxtb $1, $2", NumOperands: 2},
		{Opcode: "LDR", AsmTemplate: "ldr $1, [$2, #$3]", NumOperands: 3},
		{Opcode: "LDRB", AsmTemplate: "ldrb $1, [$2, #$3]", NumOperands: 3},
		{Opcode: "STR", AsmTemplate: "str $1, [$2, #$3]", NumOperands: 3},
		{Opcode: "STRB", AsmTemplate: "strb $1, [$2, #$3]", NumOperands: 3},
		{Opcode: "ADRP_ADD", AsmTemplate: "adrp $1, $2\n\tadd $1, $1, :lo12:$2", NumOperands: 2},
		{Opcode: "B", AsmTemplate: "b $1", NumOperands: 1},
		{Opcode: "BL", AsmTemplate: "bl $1", NumOperands: 1},
		{Opcode: "RET", AsmTemplate: "ret", NumOperands: 0},
		{Opcode: "B_EQ", AsmTemplate: "b.eq $1", NumOperands: 1},
		{Opcode: "B_NE", AsmTemplate: "b.ne $1", NumOperands: 1},
		{Opcode: "B_LT", AsmTemplate: "b.lt $1", NumOperands: 1},
		{Opcode: "B_GT", AsmTemplate: "b.gt $1", NumOperands: 1},
		{Opcode: "B_LE", AsmTemplate: "b.le $1", NumOperands: 1},
		{Opcode: "B_GE", AsmTemplate: "b.ge $1", NumOperands: 1},
	}
	t := make(td.InstrTable, len(defs))
	for _, d := range defs {
		t[d.Opcode] = d
	}
	return t
}
