//go:build tinygo && riscv

package riscvrt

import (
	"unsafe"

	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

//go:extern _stack_start
var _stack_start [0]byte

//go:extern _ebss
var _ebss [0]byte

// Default returns the backend for the running hart with the CLIC mapped at base.
func Default(base uintptr, sources int) *Backend {
	return New(Config{
		Threshold: csr.Mintthresh{},
		Global:    csr.MachineInterrupts{},
		Bus:       mmio.Volatile{},
		Base:      base,
		Sources:   sources,
		Stack: pcp.Stack{
			Start:   uintptr(unsafe.Pointer(&_stack_start)),
			End:     uintptr(unsafe.Pointer(&_ebss)),
			Pointer: csr.StackPointer,
		},
	})
}
