package staticbox

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"sync/atomic"
	"unsafe"
)

// Dropper is implemented by values that need teardown when their
// container goes away. Box.Close and Fixed.Close invoke Drop through
// the descriptor captured at construction.
type Dropper interface {
	Drop()
}

// iface mirrors the memory layout of an interface value. For the empty
// interface the first word is the runtime type instead of an itab; both
// reconstruct the same way.
type iface struct {
	tab  unsafe.Pointer
	data unsafe.Pointer
}

// typeFor mirrors reflect.TypeFor for toolchains predating Go 1.22.
func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// typeInfo describes one pairing of a concrete type with the interface
// it is stored behind. Everything in here can be derived from the value
// again; the registry only avoids paying reflect on every construction.
type typeInfo struct {
	Name  string
	Type  reflect.Type
	Size  uintptr
	Align uintptr

	// Direct indicates the value lives in the interface data word
	// itself: pointers, maps, chans, funcs and single-pointer wrappers.
	Direct bool

	// HasPointers indicates a value of the type contains pointers, e.g.
	// by having a field of type *T, a string, a slice or a map value.
	HasPointers bool

	// DropTab is the itab pairing the concrete type with Dropper,
	// nil if the type has no Drop method.
	DropTab unsafe.Pointer
}

var typeInfos atomic.Pointer[map[unsafe.Pointer]*typeInfo]

func init() {
	// initialize the lookup table
	typeInfos.Store(&map[unsafe.Pointer]*typeInfo{})
}

// typeInfoFor returns the descriptor for the dynamic type of value as
// seen through the interface I. It panics if I is not an interface type
// or if value holds no dynamic value at all.
func typeInfoFor[I any](value I) *typeInfo {
	if typeFor[I]().Kind() != reflect.Interface {
		panic(fmt.Errorf("staticbox: %s is not an interface type", typeFor[I]()))
	}

	word := (*iface)(unsafe.Pointer(&value)).tab
	if word == nil {
		panic(fmt.Errorf("staticbox: cannot store a nil %s value", typeFor[I]()))
	}

	if cached, ok := (*typeInfos.Load())[word]; ok {
		return cached
	}

	return registerTypeInfo(word, makeTypeInfo(value))
}

func registerTypeInfo(word unsafe.Pointer, info *typeInfo) *typeInfo {
	for {
		previousInfos := typeInfos.Load()
		if cached, ok := (*previousInfos)[word]; ok {
			return cached
		}

		newInfos := maps.Clone(*previousInfos)
		newInfos[word] = info

		if typeInfos.CompareAndSwap(previousInfos, &newInfos) {
			slog.Debug(
				"New boxed type registered",
				slog.String("name", info.Name),
				slog.Int("size", int(info.Size)),
				slog.Int("align", int(info.Align)),
			)

			return info
		}
	}
}

func makeTypeInfo[I any](value I) *typeInfo {
	reflectType := reflect.TypeOf(value)

	info := &typeInfo{
		Name:        reflectType.String(),
		Type:        reflectType,
		Size:        reflectType.Size(),
		Align:       uintptr(reflectType.Align()),
		Direct:      isDirectIface(reflectType),
		HasPointers: typeHasPointers(reflectType),
	}

	if dropper, ok := any(value).(Dropper); ok {
		info.DropTab = (*iface)(unsafe.Pointer(&dropper)).tab
	}

	return info
}

// isDirectIface reports whether values of type t are stored directly in
// the interface data word instead of behind a pointer. Mirrors the
// runtime rule: pointer-shaped types, plus structs and arrays wrapping
// exactly one pointer-shaped value.
func isDirectIface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true

	case reflect.Struct:
		return t.NumField() == 1 && isDirectIface(t.Field(0).Type)

	case reflect.Array:
		return t.Len() == 1 && isDirectIface(t.Elem())

	default:
		return false
	}
}

func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer,
		reflect.String, reflect.Slice, reflect.Interface:
		return true

	case reflect.Array:
		return t.Len() > 0 && typeHasPointers(t.Elem())

	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type) {
				return true
			}
		}

		return false

	default:
		return false
	}
}
