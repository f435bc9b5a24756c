package c

import (
	"fmt"

	"github.com/haiman1024/Contractus/internal/diag"
	"github.com/haiman1024/Contractus/internal/mir"
)

// Error is an internal code-generation failure. These indicate a bug in
// lowering, not in the user's program, and carry internal diagnostic codes.
type Error struct {
	Code diag.Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// verifyFn checks MIR well-formedness before emission: every register is
// defined before use and every jump target is bound by a label.
func verifyFn(f *mir.Function) error {
	defined := make([]bool, f.NumRegs)
	for _, p := range f.Params {
		defined[p.Reg] = true
	}
	bound := make([]bool, f.NumLabels)
	for i := range f.Instrs {
		in := &f.Instrs[i]
		if in.Kind == mir.Label {
			if bound[in.Target] {
				return &Error{
					Code: diag.GenUnboundLabel,
					Msg:  fmt.Sprintf("%s: label L%d bound twice", f.Name, in.Target),
				}
			}
			bound[in.Target] = true
		}
	}

	use := func(r mir.Reg) error {
		if r == mir.NoReg {
			return &Error{
				Code: diag.GenUndefinedRegister,
				Msg:  fmt.Sprintf("%s: use of absent register", f.Name),
			}
		}
		if !defined[r] {
			return &Error{
				Code: diag.GenUndefinedRegister,
				Msg:  fmt.Sprintf("%s: r%d used before definition", f.Name, r),
			}
		}
		return nil
	}
	jump := func(id mir.LabelID) error {
		if uint32(id) >= f.NumLabels || !bound[id] {
			return &Error{
				Code: diag.GenUnboundLabel,
				Msg:  fmt.Sprintf("%s: jump to unbound label L%d", f.Name, id),
			}
		}
		return nil
	}

	for i := range f.Instrs {
		in := &f.Instrs[i]
		switch in.Kind {
		case mir.Bin, mir.MakeSlice, mir.ElemPtr:
			if err := use(in.X); err != nil {
				return err
			}
			if err := use(in.Y); err != nil {
				return err
			}
		case mir.Un, mir.Load, mir.FieldPtr, mir.SlicePtr, mir.SliceLen:
			if err := use(in.X); err != nil {
				return err
			}
		case mir.Store:
			if err := use(in.X); err != nil {
				return err
			}
			if err := use(in.Y); err != nil {
				return err
			}
		case mir.Call:
			for _, a := range in.Args {
				if err := use(a); err != nil {
					return err
				}
			}
		case mir.Jump:
			if err := jump(in.Target); err != nil {
				return err
			}
		case mir.JumpIf:
			if err := use(in.X); err != nil {
				return err
			}
			if err := jump(in.Target); err != nil {
				return err
			}
			if err := jump(in.Else); err != nil {
				return err
			}
		case mir.Ret:
			if in.HasValue {
				if err := use(in.X); err != nil {
					return err
				}
			}
		}
		if defines(in) {
			if uint32(in.Dst) >= f.NumRegs {
				return &Error{
					Code: diag.GenUndefinedRegister,
					Msg:  fmt.Sprintf("%s: r%d out of range", f.Name, in.Dst),
				}
			}
			defined[in.Dst] = true
		}
	}
	return nil
}

func defines(in *mir.Instr) bool {
	switch in.Kind {
	case mir.Store, mir.Jump, mir.JumpIf, mir.Label, mir.Ret:
		return false
	case mir.Call:
		return in.Dst != mir.NoReg
	default:
		return true
	}
}
