//go:build tinygo && riscv

package critical

import (
	"unsafe"

	"omibyte.io/rtic/clic"
	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

//go:extern _stack_start
var _stack_start [0]byte

//go:extern _ebss
var _ebss [0]byte

// Default returns the backend for the running hart. Sources are still configured through the
// CLIC mapped at base, but masking uses mstatus only.
func Default(base uintptr, sources int) *Backend {
	return New(Config{
		Controller: clic.New(mmio.Volatile{}, base, sources),
		Global:     csr.MachineInterrupts{},
		Stack: pcp.Stack{
			Start:   uintptr(unsafe.Pointer(&_stack_start)),
			End:     uintptr(unsafe.Pointer(&_ebss)),
			Pointer: csr.StackPointer,
		},
	})
}
