package staticbox

import (
	"unsafe"
)

// Layout describes the storage requirements of a value as a
// (size, alignment) pair. Alignment is always a power of two.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Extend returns the layout of a record that starts with l and is
// followed by a field with layout other, plus the byte offset of that
// field within the record. The resulting size is rounded up to the
// combined alignment so records compose when placed back to back.
func (l Layout) Extend(other Layout) (Layout, uintptr) {
	align := max(l.Align, other.Align)
	offset := alignUp(l.Size, other.Align)
	size := alignUp(offset+other.Size, align)

	return Layout{Size: size, Align: align}, offset
}

// LayoutOf returns the combined layout needed to store value together
// with its dispatch descriptor. A buffer of Size bytes plus at most
// Align-1 extra bytes for worst-case address padding is always enough
// for NewInBuf to succeed with this value.
//
// Any value is accepted here, including zero-sized ones; those are only
// rejected once construction is attempted.
func LayoutOf[I any](value I) Layout {
	info := typeInfoFor[I](value)
	layout, _ := headerLayout.Extend(Layout{Size: info.Size, Align: info.Align})

	return layout
}

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// alignOffset returns the number of leading bytes to skip so that
// ptr plus that offset satisfies align.
func alignOffset(ptr unsafe.Pointer, align uintptr) uintptr {
	return alignUp(uintptr(ptr), align) - uintptr(ptr)
}
