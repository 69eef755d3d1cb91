package staticbox

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestArena_CarveBoxes(t *testing.T) {
	arena := NewArena(make([]byte, 256))

	first, ok := arena.Alloc(LayoutOf[fmt.Stringer](answer(1)))
	require.True(t, ok)

	second, ok := arena.Alloc(LayoutOf[fmt.Stringer](answer(2)))
	require.True(t, ok)

	a := NewInBuf[fmt.Stringer](first, answer(1))
	defer a.Close()

	b := NewInBuf[fmt.Stringer](second, answer(2))
	defer b.Close()

	require.Equal(t, "1", a.Value().String())
	require.Equal(t, "2", b.Value().String())
}

func TestArena_Exhausted(t *testing.T) {
	arena := NewArena(make([]byte, 32))

	_, ok := arena.Alloc(LayoutOf[fmt.Stringer](answer(1)))
	require.False(t, ok)

	// a failed Alloc must not consume anything
	require.Equal(t, 32, arena.Remaining())
}

func TestArena_AlignsRegions(t *testing.T) {
	arena := NewArena(make([]byte, 128))

	_, ok := arena.Alloc(Layout{Size: 1, Align: 1})
	require.True(t, ok)

	region, ok := arena.Alloc(Layout{Size: 8, Align: 8})
	require.True(t, ok)
	require.Len(t, region, 8)
	require.EqualValues(t, 0, uintptr(unsafe.Pointer(unsafe.SliceData(region)))%8)
}
