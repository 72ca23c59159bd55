//go:build tinygo && riscv

package atalanta

import (
	"unsafe"

	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

//go:extern _stack_start
var _stack_start [0]byte

//go:extern _bss_end
var _bss_end [0]byte

// Default returns the backend for the running core with the CLIC mapped at base.
func Default(base uintptr, sources int) *Backend {
	return New(Config{
		Threshold: csr.Mintthresh{},
		Global:    csr.MachineInterrupts{},
		Bus:       mmio.Volatile{},
		Base:      base,
		Sources:   sources,
		Stack: pcp.Stack{
			Start:   uintptr(unsafe.Pointer(&_stack_start)),
			End:     uintptr(unsafe.Pointer(&_bss_end)),
			Pointer: csr.StackPointer,
		},
	})
}
