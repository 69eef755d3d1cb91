package staticbox

import "unsafe"

// Fixed is a box that owns its buffer inline, as part of its own
// storage. The capacity is fixed by the array type A:
//
//	var console staticbox.Fixed[SerialWrite, [96]byte]
//	console.Set(&Uart1Rx{})
//	console.Value().WriteString("Hello world!")
//
// The zero value is empty and ready for Set; the inline buffer starts
// out zeroed like any Go variable. A Fixed must not be copied once a
// value is placed, the stored bytes are addressed relative to the
// struct itself. go vet flags such copies via the noCopy marker.
type Fixed[I any, A any] struct {
	_ noCopy

	mem    A
	box    Box[I]
	live   bool
	closed bool
}

// Set places value into the inline buffer. Panics if the buffer is too
// small, if the Fixed already holds a value, or if it was closed.
func (f *Fixed[I, A]) Set(value I) {
	if err := f.TrySet(value); err != nil {
		panic(err)
	}
}

// TrySet is Set with a recoverable error when the inline buffer is too
// small.
func (f *Fixed[I, A]) TrySet(value I) error {
	if f.closed {
		panic("staticbox: Fixed was already closed")
	}

	if f.live {
		panic("staticbox: Fixed already holds a value")
	}

	mem := unsafe.Slice((*byte)(unsafe.Pointer(&f.mem)), unsafe.Sizeof(f.mem))

	box, err := TryNewInBuf(mem, value)
	if err != nil {
		return err
	}

	f.box = box
	f.live = true

	return nil
}

// Value returns the interface view of the stored value.
func (f *Fixed[I, A]) Value() I {
	if !f.live {
		panic("staticbox: Fixed holds no value")
	}

	return f.box.Value()
}

// Close drops the stored value, if any. Closing is terminal: the Fixed
// holds exactly one value over its lifetime and cannot be set again.
// Closing twice is a no-op.
func (f *Fixed[I, A]) Close() {
	if f.live {
		f.box.Close()
		f.live = false
	}

	f.closed = true
}
