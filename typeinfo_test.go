package staticbox

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeInfo_Cached(t *testing.T) {
	first := typeInfoFor[fmt.Stringer](answer(1))
	second := typeInfoFor[fmt.Stringer](answer(2))

	require.Same(t, first, second)
	require.Equal(t, "staticbox.answer", first.Name)
	require.EqualValues(t, 8, first.Size)
}

func TestTypeInfo_DropTab(t *testing.T) {
	info := typeInfoFor[any](dropSignal{ch: make(chan int)})
	require.NotNil(t, info.DropTab)

	info = typeInfoFor[any](answer(1))
	require.Nil(t, info.DropTab)
}

func TestIsDirectIface(t *testing.T) {
	require.True(t, isDirectIface(typeFor[*counter]()))
	require.True(t, isDirectIface(typeFor[chan int]()))
	require.True(t, isDirectIface(typeFor[map[string]int]()))
	require.True(t, isDirectIface(typeFor[dropSignal]()))
	require.True(t, isDirectIface(typeFor[[1]*counter]()))

	require.False(t, isDirectIface(typeFor[answer]()))
	require.False(t, isDirectIface(typeFor[string]()))
	require.False(t, isDirectIface(typeFor[struct{ a, b *counter }]()))
}

func TestTypeHasPointers(t *testing.T) {
	require.True(t, typeHasPointers(typeFor[string]()))
	require.True(t, typeHasPointers(typeFor[[]int]()))
	require.True(t, typeHasPointers(typeFor[struct{ s []byte }]()))
	require.True(t, typeHasPointers(typeFor[[2]chan int]()))

	require.False(t, typeHasPointers(typeFor[answer]()))
	require.False(t, typeHasPointers(typeFor[[8]uint32]()))
	require.False(t, typeHasPointers(typeFor[struct{ a, b float64 }]()))
}
