package mir

import (
	"fmt"
	"strings"
)

// ---------------------
// ----- functions -----
// ---------------------

// String renders m as textual MIR, for the -dump-mir CLI flag.
func (m *Module) String() string {
	var sb strings.Builder
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, "global %s %s\n", g.Name, g.Typ)
	}
	for _, fn := range m.Functions {
		sb.WriteString(fn.String())
	}
	return sb.String()
}

// String renders fn as textual MIR.
func (fn *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%%%d: %s", p.ID, p.Typ)
	}
	fmt.Fprintf(&sb, ") -> %s {\n", fn.RetType)
	for _, b := range fn.Blocks {
		sb.WriteString(b.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// String renders b as textual MIR.
func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", b.Name)
	for _, ins := range b.Instrs {
		fmt.Fprintf(&sb, "  %s\n", ins.String())
	}
	return sb.String()
}

func valStr(v Value) string {
	switch v.Kind {
	case ValImm:
		return fmt.Sprintf("%d", v.Imm)
	case ValGlobal:
		return "@" + v.Global
	default:
		return fmt.Sprintf("%%%d", v.ID)
	}
}

// String renders ins as one line of textual MIR.
func (ins *Instr) String() string {
	switch ins.Kind {
	case InstrBinary:
		return fmt.Sprintf("%%%d = %s %s, %s", ins.ID, ins.Op, valStr(ins.A), valStr(ins.B))
	case InstrUnary:
		return fmt.Sprintf("%%%d = %s %s", ins.ID, ins.UOp, valStr(ins.Src))
	case InstrStore:
		return fmt.Sprintf("store %s, %s", valStr(ins.Val), valStr(ins.Addr))
	case InstrLoad:
		return fmt.Sprintf("%%%d = load %s", ins.ID, valStr(ins.Addr))
	case InstrGEP:
		return fmt.Sprintf("%%%d = gep %s, %s", ins.ID, valStr(ins.Base), valStr(ins.Index))
	case InstrJump:
		return fmt.Sprintf("jump %s", ins.Target)
	case InstrBranch:
		return fmt.Sprintf("branch %s, %s, %s", valStr(ins.Cond), ins.TrueLabel, ins.FalseLabel)
	case InstrCompare:
		return fmt.Sprintf("%%%d = cmp.%s %s, %s", ins.ID, ins.Rel, valStr(ins.A), valStr(ins.B))
	case InstrCall:
		args := make([]string, len(ins.Args))
		for i, a := range ins.Args {
			args[i] = valStr(a)
		}
		if ins.HasResult {
			return fmt.Sprintf("%%%d = call %s(%s)", ins.ID, ins.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("call %s(%s)", ins.Callee, strings.Join(args, ", "))
	case InstrReturn:
		if ins.HasRetVal {
			return "return " + valStr(ins.RetVal)
		}
		return "return"
	case InstrMemoryCopy:
		return fmt.Sprintf("memcopy %s, %s, %d", valStr(ins.CopyDst), valStr(ins.CopySrc), ins.Bytes)
	case InstrStackAllocation:
		return fmt.Sprintf("%%%d = alloca %s", ins.ID, ins.AllocType)
	default:
		return "?"
	}
}
