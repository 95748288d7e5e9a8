// Package fault defines the error taxonomy raised by the memory unit
// and execution engine. Faults are ordinary Go errors returned out of
// Step and recorded by Run for CPU.Err, never ambient control flow.
package fault

import "github.com/pkg/errors"

// Kind identifies which of the three terminal fault classes occurred.
type Kind int

const (
	// IllegalInstruction is raised when an opcode, or a funct3/funct7
	// combination within an opcode group, does not match any
	// implemented instruction.
	IllegalInstruction Kind = iota
	// LoadAccessFault is raised by the memory unit when an access
	// falls outside [BASE, BASE+SIZE) on either a load or a store.
	LoadAccessFault
	// MisalignedAccess is raised when a memory access requests a
	// width outside {8,16,32,64}. Reserved per spec; treated as
	// fatal like the other two kinds.
	MisalignedAccess
)

func (k Kind) String() string {
	switch k {
	case IllegalInstruction:
		return "illegal instruction"
	case LoadAccessFault:
		return "load access fault"
	case MisalignedAccess:
		return "misaligned access"
	default:
		return "unknown fault"
	}
}

// Fault is the concrete error type surfaced by the core. PC records
// the address the engine was executing at when the fault occurred.
// A fault returned by the memory unit on its own carries the accessed
// address in PC (0 for an unsupported width); CPU.Step replaces it
// with the address of the faulting instruction.
type Fault struct {
	Kind Kind
	PC   uint64
	msg  string
}

func (f *Fault) Error() string {
	if f.msg != "" {
		return f.msg
	}
	return f.Kind.String()
}

// New wraps a fault with a captured stack trace so callers debugging a
// failed run can see where in the engine it originated.
func New(kind Kind, pc uint64, format string, args ...interface{}) error {
	f := &Fault{Kind: kind, PC: pc}
	if format != "" {
		f.msg = errors.Errorf(format, args...).Error()
	}
	return errors.WithStack(f)
}

// As recovers the *Fault carried by err, unwrapping pkg/errors'
// stack-trace wrapper if present.
func As(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
