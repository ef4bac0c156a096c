// Package arm is the concrete AArch64 Target Description: the register
// file, ABI partition, and instruction table the rest of the backend is
// parameterized over.
package arm

import (
	"strconv"

	"clc/src/backend/td"
)

// ----------------------------
// ----- Constants -----------
// ----------------------------

// x0-x28 are general-purpose 64-bit registers; ids 0-28 are their ids.
// x29 is the frame pointer, x30 the link register, id 31 is sp. Ids
// 100-128 are the 32-bit w0-w28 sub-registers, parented to 0-28.
const (
	idX0  = 0
	idX28 = 28
	idFP  = 29 // x29
	idLR  = 30 // x30
	idSP  = 31
	wBase = 100
)

// ---------------------
// ----- functions -----
// ---------------------

func xName(i int) string {
	switch i {
	case idFP:
		return "x29"
	case idLR:
		return "x30"
	default:
		return "x" + strconv.Itoa(i)
	}
}

func wName(i int) string { return "w" + strconv.Itoa(i) }

// registerFile is the AArch64 RegisterFile implementation.
type registerFile struct {
	regs map[int]td.PhysReg
}

// NewRegisterFile builds the AArch64 register catalog: x0-x30, sp, and
// their w0-w28 sub-registers.
func NewRegisterFile() td.RegisterFile {
	rf := &registerFile{regs: make(map[int]td.PhysReg)}
	for i := idX0; i <= idLR; i++ {
		sub := []int{}
		if i <= idX28 {
			sub = []int{wBase + i}
		}
		rf.regs[i] = td.PhysReg{ID: i, Name: xName(i), Kind: td.RegInt, Width: 64, Parent: -1, Subregs: sub}
	}
	rf.regs[idSP] = td.PhysReg{ID: idSP, Name: "sp", Kind: td.RegInt, Width: 64, Parent: -1}
	for i := idX0; i <= idX28; i++ {
		rf.regs[wBase+i] = td.PhysReg{ID: wBase + i, Name: wName(i), Kind: td.RegInt, Width: 32, Parent: i}
	}
	return rf
}

func (rf *registerFile) SP() td.PhysReg { return rf.regs[idSP] }
func (rf *registerFile) LR() td.PhysReg { return rf.regs[idLR] }
func (rf *registerFile) FP() td.PhysReg { return rf.regs[idFP] }

func (rf *registerFile) ByID(id int) td.PhysReg { return rf.regs[id] }

func (rf *registerFile) SubregWidth(id, width int) (td.PhysReg, bool) {
	r := rf.regs[id]
	if r.Width == width {
		return r, true
	}
	parent := r
	if r.Parent >= 0 {
		parent = rf.regs[r.Parent]
	}
	if parent.Width == width {
		return parent, true
	}
	for _, s := range parent.Subregs {
		if rf.regs[s].Width == width {
			return rf.regs[s], true
		}
	}
	return td.PhysReg{}, false
}

func (rf *registerFile) CanonicalParent(id int) int {
	r := rf.regs[id]
	if r.Parent >= 0 {
		return r.Parent
	}
	return id
}

func (rf *registerFile) NumRegs() int { return len(rf.regs) }

// NewABI returns the AArch64 calling convention: x0-x7 carry arguments and
// return values, x0-x7/x9-x15 are caller-saved (the primary allocation
// pool), x19-x28 are callee-saved (the backup pool), and the stack must
// stay 16-byte aligned.
func NewABI() td.ABI {
	return td.ABI{
		ArgRegs:      []int{0, 1, 2, 3, 4, 5, 6, 7},
		RetRegs:      []int{0, 1, 2, 3, 4, 5, 6, 7},
		CallerSaved:  []int{0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15},
		CalleeSaved:  []int{19, 20, 21, 22, 23, 24, 25, 26, 27, 28},
		StackAlign:   16,
		PointerWidth: 64,
		MaxStructReg: 128,
	}
}

// NewDescription returns the full AArch64 Target Description.
func NewDescription() *td.Description {
	return &td.Description{
		Name:   "aarch64",
		Regs:   NewRegisterFile(),
		ABI:    NewABI(),
		Instrs: instrTable(),
	}
}
