// Package csr accesses the control registers that implement interrupt masking: the machine
// interrupt threshold (mintthresh) and the global enable bit of mstatus.
//
// On RISC-V TinyGo builds the hardware registers are used directly. Every other build gets
// memory-held registers with the same contract, used by the simulation backend and by tests.
package csr

const (
	// MintthreshNumber is the CSR number of the machine interrupt threshold register.
	MintthreshNumber = 0x347

	// MIE is the machine interrupt enable bit of mstatus. DisableInterrupts returns it when
	// interrupts were enabled.
	MIE uintptr = 1 << 3
)

// Cell is a threshold register held in memory.
type Cell struct {
	value  uintptr
	writes int
}

func NewCell(value uintptr) *Cell {
	return &Cell{value: value}
}

func (c *Cell) Read() uintptr {
	return c.value
}

func (c *Cell) Write(value uintptr) {
	c.value = value
	c.writes++
}

// Writes returns the number of writes since the cell was created or reset.
func (c *Cell) Writes() int {
	return c.writes
}

func (c *Cell) ResetWrites() {
	c.writes = 0
}

// Status is an mstatus.MIE bit held in memory.
type Status struct {
	state uintptr
}

func NewStatus(enabled bool) *Status {
	s := &Status{}
	if enabled {
		s.state = MIE
	}
	return s
}

func (s *Status) DisableInterrupts() uintptr {
	state := s.state
	s.state &^= MIE
	return state
}

func (s *Status) EnableInterrupts(state uintptr) {
	s.state = (s.state &^ MIE) | (state & MIE)
}

func (s *Status) Enabled() bool {
	return s.state&MIE != 0
}
