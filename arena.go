package staticbox

import "unsafe"

// Arena carves aligned regions out of one flat byte buffer so that
// several boxes can share a single caller-provided allocation. It never
// frees and never grows.
type Arena struct {
	_ noCopy

	mem []byte
	off uintptr
}

// NewArena returns an arena carving regions out of mem. The caller must
// keep mem alive and untouched for as long as any carved region is in
// use.
func NewArena(mem []byte) *Arena {
	return &Arena{mem: mem}
}

// Alloc returns a region of exactly layout.Size bytes whose start
// address satisfies layout.Align. Reports false once the remaining
// space is too small.
func (a *Arena) Alloc(layout Layout) ([]byte, bool) {
	base := unsafe.Pointer(unsafe.SliceData(a.mem))

	start := a.off + alignOffset(unsafe.Add(base, a.off), layout.Align)
	end := start + layout.Size

	if end > uintptr(len(a.mem)) {
		return nil, false
	}

	a.off = end

	return a.mem[start:end:end], true
}

// Remaining returns the number of bytes left in the buffer, not
// counting alignment padding a future Alloc may consume.
func (a *Arena) Remaining() int {
	return len(a.mem) - int(a.off)
}
