package layout

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/haiman1024/Contractus/internal/types"
)

func (e *Engine) compute(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	switch tt.Kind {
	case types.KindUnit, types.KindInvalid, types.KindRange, types.KindFn:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.KindBool, types.KindU8:
		return scalarLayout(1), nil

	case types.KindI32:
		return scalarLayout(4), nil

	case types.KindPointer:
		return e.ptrLayout(), nil

	case types.KindSlice:
		// Fat pointer {ptr, len:i32}; len is padded out to pointer alignment.
		ptr := e.ptrLayout()
		size := roundUp(ptr.Size+4, ptr.Align)
		return TypeLayout{Size: size, Align: ptr.Align}, nil

	case types.KindArray:
		return e.arrayLayout(tt.Elem, tt.Count, state)

	case types.KindStruct:
		return e.structLayout(id, state)

	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *Engine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayout(size int) TypeLayout {
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (e *Engine) arrayLayout(elem types.TypeID, count uint32, state *layoutState) (TypeLayout, *Error) {
	el, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	align := el.Align
	if align <= 0 {
		align = 1
	}
	stride := roundUp(el.Size, align)
	n, convErr := safecast.Conv[int](count)
	if convErr != nil {
		panic(fmt.Errorf("array length overflow: %w", convErr))
	}
	return TypeLayout{Size: stride * n, Align: align}, nil
}

// structLayout assigns offsets sequentially in declaration order. Each
// field is aligned to its own alignment, struct alignment is the max field
// alignment, and the total size rounds up to the struct alignment.
func (e *Engine) structLayout(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	info, ok := e.Types.StructInfo(id)
	if !ok || len(info.Fields) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	offsets := make([]int, len(info.Fields))
	aligns := make([]int, len(info.Fields))
	size := 0
	align := 1
	for i := range info.Fields {
		fl, err := e.layoutOf(info.Fields[i].Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		fAlign := fl.Align
		if fAlign <= 0 {
			fAlign = 1
		}
		size = roundUp(size, fAlign)
		offsets[i] = size
		aligns[i] = fAlign
		size += fl.Size
		align = maxInt(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{
		Size:         size,
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}
