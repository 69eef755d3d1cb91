// Package staticbox stores a single value of erased concrete type,
// known only to implement some interface, inside a fixed-size byte
// buffer supplied by the caller.
//
// It is meant for the places a general-purpose allocator is unwelcome:
// static singletons, pre-carved memory pools, code that wants "some
// implementation of Logger" in a slot whose concrete size is not known
// at the declaration site. A dispatch descriptor is written at the
// start of the buffer, the value's bytes follow it, and every access
// rebuilds a fully dispatchable interface value from nothing but the
// buffer address and that descriptor.
//
//	var console staticbox.Fixed[SerialWrite, [64]byte]
//
//	console.Set(&Uart1Rx{})
//	console.Value().WriteString("Hello world!")
//
// A box holds exactly one value. It never grows, never reallocates and
// is not safe for concurrent use.
package staticbox
