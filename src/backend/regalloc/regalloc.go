// Package regalloc implements linear-scan register allocation: pre-allocate
// parameter and return registers first, compute live ranges over a flat
// instruction count, sort by (def, kill), then walk the sorted ranges
// expiring and allocating against a primary (caller-saved) pool backed by
// a backup (callee-saved) pool.
package regalloc

import (
	"fmt"

	"clc/src/backend/cerr"
	"clc/src/backend/llir"
	"clc/src/backend/td"
	"clc/src/util"
)

const passName = "regalloc"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// liveRange is one virtual register's definition/kill instruction index,
// where index counts flat across every block of the function in order.
type liveRange struct {
	vreg  int
	def   int
	kill  int
	width int
}

// ---------------------
// ----- functions -----
// ---------------------

// Allocate assigns every virtual register and parameter of mfn a physical
// register from desc's ABI pools, then rewrites every operand referencing
// one in place.
func Allocate(mfn *llir.MachineFunction, desc *td.Description) error {
	allocated := make(map[int]int) // vreg/parameter id -> physical register id.

	preAllocateParameters(mfn, desc, allocated)
	preAllocateReturnRegister(mfn, desc, allocated)

	primary := newPool(desc.ABI.CallerSaved)
	backup := newPool(desc.ABI.CalleeSaved)
	removeFamily(primary, allocated, desc)

	widths := make(map[int]int)
	ranges := computeLiveRanges(mfn, desc, widths)
	for i := range ranges {
		if w, ok := widths[ranges[i].vreg]; ok {
			ranges[i].width = w
		}
	}
	sortRanges(ranges)

	active := ranges[:0:0]
	for _, lr := range ranges {
		active = expire(active, lr.def, allocated, primary, desc)

		if _, ok := allocated[lr.vreg]; !ok {
			reg, err := takeReg(lr.width, primary, backup, mfn, desc)
			if err != nil {
				return cerr.New(cerr.RegisterExhaustion, passName, fmt.Sprintf("vreg %d", lr.vreg), "%v", err)
			}
			allocated[lr.vreg] = reg
		}
		active = append(active, lr)
	}

	rewriteOperands(mfn, allocated, desc)
	return nil
}

// preAllocateParameters binds every parameter vreg to its ABI argument
// register in declaration order, narrowing to the matching sub-register
// when the parameter is narrower than the full register.
func preAllocateParameters(mfn *llir.MachineFunction, desc *td.Description, allocated map[int]int) {
	argRegs := desc.ABI.ArgRegs
	for i, p := range mfn.Params {
		if i >= len(argRegs) {
			break // caller already rejected this at lowering time.
		}
		reg := argRegs[i]
		if r, ok := desc.Regs.SubregWidth(reg, p.LLT.Width); ok {
			reg = r.ID
		}
		allocated[p.VRegID] = reg
	}
}

// preAllocateReturnRegister scans the final block's trailing RET for a
// register operand, binding it to the first ABI return register so the
// later scan allocates every other vreg around it.
func preAllocateReturnRegister(mfn *llir.MachineFunction, desc *td.Description, allocated map[int]int) {
	if len(mfn.Blocks) == 0 {
		return
	}
	last := mfn.Blocks[len(mfn.Blocks)-1]
	for i := len(last.Instrs) - 1; i >= 0; i-- {
		mi := last.Instrs[i]
		if mi.Op != "RET" || len(mi.Ops) == 0 {
			continue
		}
		op := mi.Ops[0]
		if op.Kind != llir.OpVReg {
			continue
		}
		retReg := desc.ABI.RetRegs[0]
		if r, ok := desc.Regs.SubregWidth(retReg, op.Width); ok {
			retReg = r.ID
		}
		allocated[op.Reg] = retReg
		return
	}
}

// computeLiveRanges walks every instruction of every block in order,
// assigning a flat, monotonically increasing index, and records each
// register-like operand's first (def) and last (kill) occurrence. It also
// populates widths with each id's first-seen operand width, using the
// target pointer width for memory-base operands since those always name
// an address register regardless of the value's own width.
func computeLiveRanges(mfn *llir.MachineFunction, desc *td.Description, widths map[int]int) []liveRange {
	seen := make(map[int]*liveRange)
	var order []int
	counter := 0
	for _, b := range mfn.Blocks {
		for _, mi := range b.Instrs {
			for _, op := range mi.Ops {
				if !op.IsRegLike() {
					continue
				}
				id := op.Reg
				w := op.Width
				if op.Kind == llir.OpMemory {
					w = desc.ABI.PointerWidth
				}
				if lr, ok := seen[id]; ok {
					lr.kill = counter
				} else {
					seen[id] = &liveRange{vreg: id, def: counter, kill: counter}
					order = append(order, id)
					widths[id] = w
				}
			}
			counter++
		}
	}
	out := make([]liveRange, 0, len(order))
	for _, id := range order {
		out = append(out, *seen[id])
	}
	return out
}

// sortRanges orders ranges by def ascending, breaking ties by kill
// ascending, mirroring the reference compiler's SortedLiveRanges
// comparator.
func sortRanges(ranges []liveRange) {
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0; j-- {
			a, b := ranges[j-1], ranges[j]
			if a.def < b.def || (a.def == b.def && a.kill <= b.kill) {
				break
			}
			ranges[j-1], ranges[j] = ranges[j], ranges[j-1]
		}
	}
}

// expire removes from active every range whose kill precedes def,
// returning the physical register family each held to the primary pool.
func expire(active []liveRange, def int, allocated map[int]int, primary *util.Stack, desc *td.Description) []liveRange {
	kept := active[:0]
	for _, lr := range active {
		if lr.kill < def {
			if reg, ok := allocated[lr.vreg]; ok {
				primary.Push(desc.Regs.CanonicalParent(reg))
			}
			continue
		}
		kept = append(kept, lr)
	}
	return kept
}

// newPool returns a Stack pre-loaded with every id in ids.
func newPool(ids []int) *util.Stack {
	s := &util.Stack{}
	for _, id := range ids {
		s.Push(id)
	}
	return s
}

// removeFamily strips every already-allocated physical register, and its
// whole sub/parent-register family, out of pool. Used once up front so
// pre-allocated parameter and return registers are never handed out
// again.
func removeFamily(pool *util.Stack, allocated map[int]int, desc *td.Description) {
	excluded := make(map[int]bool)
	for _, reg := range allocated {
		excluded[desc.Regs.CanonicalParent(reg)] = true
	}
	if len(excluded) == 0 {
		return
	}
	n := pool.Size()
	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		id := pool.Pop().(int)
		if !excluded[desc.Regs.CanonicalParent(id)] {
			kept = append(kept, id)
		}
	}
	for i := len(kept) - 1; i >= 0; i-- {
		pool.Push(kept[i])
	}
}

// takeReg pops the primary pool looking for a register (or sub-register)
// of the requested width, promoting one register from the backup pool
// when the primary pool runs dry, matching GetNextAvailableReg's linear
// scan-and-promote behavior.
func takeReg(width int, primary, backup *util.Stack, mfn *llir.MachineFunction, desc *td.Description) (int, error) {
	if primary.Size() == 0 {
		if backup.Size() == 0 {
			return 0, fmt.Errorf("both register pools are exhausted")
		}
		promoted := backup.Pop().(int)
		mfn.UsedCalleeSaved = append(mfn.UsedCalleeSaved, promoted)
		primary.Push(promoted)
	}

	n := primary.Size()
	var tried []int
	for i := 0; i < n; i++ {
		cand := primary.Pop().(int)
		tried = append(tried, cand)
		if r, ok := desc.Regs.SubregWidth(cand, width); ok {
			for j := 0; j < len(tried)-1; j++ {
				primary.Push(tried[j])
			}
			return r.ID, nil
		}
	}
	for _, t := range tried {
		primary.Push(t)
	}
	if backup.Size() > 0 {
		promoted := backup.Pop().(int)
		mfn.UsedCalleeSaved = append(mfn.UsedCalleeSaved, promoted)
		if r, ok := desc.Regs.SubregWidth(promoted, width); ok {
			return r.ID, nil
		}
		primary.Push(promoted)
	}
	return 0, fmt.Errorf("no register of width %d available in either pool", width)
}

// rewriteOperands replaces every VReg and Parameter operand's id with its
// allocated physical register, collapsing it to an OpPhysReg. A Memory
// operand keeps its OpMemory shape - only its base id is rewritten to the
// physical register - since frame lowering still needs to see it as an
// address, not a plain register value.
func rewriteOperands(mfn *llir.MachineFunction, allocated map[int]int, desc *td.Description) {
	for _, b := range mfn.Blocks {
		for _, mi := range b.Instrs {
			for i := range mi.Ops {
				op := &mi.Ops[i]
				if !op.IsRegLike() {
					continue
				}
				phys, ok := allocated[op.Reg]
				if !ok {
					continue
				}
				if op.Kind == llir.OpMemory {
					if r, ok := desc.Regs.SubregWidth(phys, desc.ABI.PointerWidth); ok {
						phys = r.ID
					}
					op.Reg = phys
					continue
				}
				if r, ok := desc.Regs.SubregWidth(phys, op.Width); ok {
					phys = r.ID
				}
				op.Kind = llir.OpPhysReg
				op.Reg = phys
			}
		}
	}
}
