// Package cerr implements the backend's error taxonomy. Every pass reports
// failures as a *cerr.Error naming the pass and the offending instruction;
// the CLI driver prints it and exits non-zero.
package cerr

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind discriminates the four error categories the backend can raise.
type Kind int

const (
	// UnsupportedConstruct fires for constructs the backend has no rule
	// for: a floating-point constant reaching the backend, MOD on
	// AArch64 (no native remainder instruction), or a call with more
	// arguments than the ABI has argument registers for.
	UnsupportedConstruct Kind = iota
	// ImmediateOutOfRange fires when an immediate does not fit the
	// target's encodable range for the instruction selected to hold it.
	ImmediateOutOfRange
	// RegisterExhaustion fires when both the primary and backup register
	// pools are empty during allocation. Spilling is not implemented.
	RegisterExhaustion
	// InvalidIRShape fires when an instruction's operands do not match
	// what the pass requires, e.g. a store to a non-register,
	// non-global destination.
	InvalidIRShape
)

var kindNames = [...]string{
	"unsupported construct", "immediate out of range",
	"register exhaustion", "invalid IR shape",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Error is a fatal backend diagnostic. All four error kinds are fatal: the
// compiler reports the first failure and exits rather than attempting
// local recovery.
type Error struct {
	Kind  Kind
	Pass  string // the pass that raised the error, e.g. "lower", "select", "regalloc".
	Instr string // a textual rendering of the offending instruction, for diagnostics.
	Msg   string
}

func (e *Error) Error() string {
	if e.Instr != "" {
		return fmt.Sprintf("%s: %s: %s (in %s)", e.Pass, e.Kind, e.Msg, e.Instr)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pass, e.Kind, e.Msg)
}

// ---------------------
// ----- functions -----
// ---------------------

// New returns a new *Error of kind raised by pass, describing instr, with
// a formatted message.
func New(kind Kind, pass, instr, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pass: pass, Instr: instr, Msg: fmt.Sprintf(format, args...)}
}
