//go:build tinygo && riscv

package csr

import "device/riscv"

// Mintthresh is the hardware machine interrupt threshold register.
type Mintthresh struct{}

func (Mintthresh) Read() uintptr {
	return riscv.AsmFull("csrr {}, 0x347", nil)
}

func (Mintthresh) Write(value uintptr) {
	riscv.AsmFull("csrw 0x347, {value}", map[string]interface{}{
		"value": value,
	})
}

// MachineInterrupts is the global interrupt enable of the running hart.
type MachineInterrupts struct{}

func (MachineInterrupts) DisableInterrupts() uintptr {
	state := riscv.MSTATUS.Get() & MIE
	riscv.MSTATUS.ClearBits(riscv.MSTATUS_MIE)
	return state
}

func (MachineInterrupts) EnableInterrupts(state uintptr) {
	if state&MIE != 0 {
		riscv.MSTATUS.SetBits(riscv.MSTATUS_MIE)
	}
}

// StackPointer returns the current value of sp.
func StackPointer() uintptr {
	return riscv.AsmFull("mv {}, sp", nil)
}
