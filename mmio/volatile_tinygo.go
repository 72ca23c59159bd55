//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Volatile accesses device registers at their physical addresses.
type Volatile struct{}

func (Volatile) Load8(addr uintptr) uint8 {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(addr)))
}

func (Volatile) Store8(addr uintptr, value uint8) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(addr)), value)
}
