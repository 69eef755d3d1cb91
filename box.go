package staticbox

import (
	"fmt"
	"math"
	"unsafe"
)

// header is the dispatch descriptor written at the aligned start of a
// box's buffer. It alone carries enough information to locate the value
// bytes, rebuild the interface and run the drop hook; the concrete type
// is not needed at the access site.
type header struct {
	word    unsafe.Pointer // itab of the target interface, or the runtime type for any
	dropTab unsafe.Pointer // itab for Dropper, nil if the value has no Drop
	size    uintptr
	align   uintptr
	flags   uintptr
}

const (
	flagDirect   = 1 << iota // value lives in the interface data word itself
	flagPointers             // value contains pointers
)

var headerLayout = Layout{
	Size:  unsafe.Sizeof(header{}),
	Align: unsafe.Alignof(header{}),
}

type buf *[math.MaxInt32]byte

func rawCopy(to, from unsafe.Pointer, size uintptr) {
	dst := (*buf(to))[:size]
	src := (*buf(from))[:size]
	copy(dst, src)
}

// Box stores one value implementing the interface I inside a byte
// buffer. Live boxes come from NewInBuf, TryNewInBuf or New; the zero
// Box is closed.
//
// A Box is a unique handle. Moving it by assignment is fine, but never
// use two copies of the same box, and never release or write to a
// borrowed buffer while its box is live.
type Box[I any] struct {
	alignOffset uintptr
	mem         []byte

	// keeps heap objects referenced from inside the buffer alive, since
	// the garbage collector does not scan the raw bytes. Liveness only,
	// never read back.
	rooted any
}

// NewInBuf places value into mem and returns the box handle. The caller
// keeps ownership of mem and must keep it alive and untouched for the
// lifetime of the box; LayoutOf tells how large it has to be. The
// buffer does not need to be zeroed.
//
// Panics if mem is too small to hold the value and its descriptor.
func NewInBuf[I any](mem []byte, value I) Box[I] {
	box, err := TryNewInBuf(mem, value)
	if err != nil {
		panic(err)
	}

	return box
}

// TryNewInBuf is NewInBuf with a recoverable error instead of a panic
// when mem is too small. Nothing has been written to mem when an error
// is returned. Zero-sized values and non-interface I still panic, those
// are type-level misuse, not a runtime condition.
func TryNewInBuf[I any](mem []byte, value I) (Box[I], error) {
	info := typeInfoFor[I](value)
	if info.Size == 0 {
		panic(fmt.Errorf("staticbox: unsupported zero-sized value of type %s", info.Name))
	}

	layout, valueOffset := headerLayout.Extend(Layout{Size: info.Size, Align: info.Align})

	base := unsafe.Pointer(unsafe.SliceData(mem))
	alignOffset := alignOffset(base, layout.Align)

	if total := alignOffset + layout.Size; total > uintptr(len(mem)) {
		return Box[I]{}, fmt.Errorf(
			"Not enough memory to store the specified value (got: %d, needed: %d)",
			len(mem), total,
		)
	}

	flags := uintptr(0)
	if info.Direct {
		flags |= flagDirect
	}
	if info.HasPointers {
		flags |= flagPointers
	}

	start := unsafe.Add(base, alignOffset)

	*(*header)(start) = header{
		word:    (*iface)(unsafe.Pointer(&value)).tab,
		dropTab: info.DropTab,
		size:    info.Size,
		align:   info.Align,
		flags:   flags,
	}

	data := (*iface)(unsafe.Pointer(&value)).data
	target := unsafe.Add(start, valueOffset)

	if info.Direct {
		// the interface word is the value, store the word itself
		*(*unsafe.Pointer)(target) = data
	} else {
		rawCopy(target, data, info.Size)
	}

	box := Box[I]{alignOffset: alignOffset, mem: mem}
	if info.HasPointers {
		box.rooted = value
	}

	return box, nil
}

// New places value into a freshly allocated, right-sized, zeroed buffer
// owned by the box. For callers who do not want to manage storage but
// still need the erased handle.
func New[I any](value I) Box[I] {
	layout := LayoutOf(value)
	return NewInBuf(make([]byte, layout.Size+layout.Align-1), value)
}

// parts reads the descriptor back from the buffer and locates the value
// bytes. The value offset is recomputed from the descriptor on every
// call rather than cached; the descriptor is authoritative.
func (b *Box[I]) parts() (*header, unsafe.Pointer) {
	if b.mem == nil {
		panic("staticbox: use of closed Box")
	}

	start := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.mem)), b.alignOffset)
	hdr := (*header)(start)

	_, valueOffset := headerLayout.Extend(Layout{Size: hdr.size, Align: hdr.align})

	data := unsafe.Add(start, valueOffset)
	if hdr.flags&flagDirect != 0 {
		data = *(*unsafe.Pointer)(data)
	}

	return hdr, data
}

// Value rebuilds the interface view of the stored value from the
// descriptor and the buffer address. Methods with pointer receivers
// mutate the stored value in place.
//
// The returned interface must not outlive the box.
func (b *Box[I]) Value() I {
	hdr, data := b.parts()

	var value I
	*(*iface)(unsafe.Pointer(&value)) = iface{tab: hdr.word, data: data}

	return value
}

// Close runs the value's Drop hook, if it has one, and releases the
// box's hold on the buffer. Closing twice is a no-op, so a deferred
// Close drops exactly once. Any other use of the box afterwards panics.
func (b *Box[I]) Close() {
	if b.mem == nil {
		return
	}

	hdr, data := b.parts()
	if hdr.dropTab != nil {
		var dropper Dropper
		*(*iface)(unsafe.Pointer(&dropper)) = iface{tab: hdr.dropTab, data: data}
		dropper.Drop()
	}

	b.mem = nil
	b.rooted = nil
}
