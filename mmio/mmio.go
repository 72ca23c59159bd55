// Package mmio provides byte-wide access to memory-mapped peripheral registers.
package mmio

import "fmt"

// Bus reads and writes device registers.
type Bus interface {
	Load8(addr uintptr) uint8
	Store8(addr uintptr, value uint8)
}

// Memory is a register window backed by ordinary memory.
type Memory struct {
	base   uintptr
	data   []byte
	stores int
}

func NewMemory(base uintptr, size int) *Memory {
	return &Memory{
		base: base,
		data: make([]byte, size),
	}
}

func (m *Memory) Load8(addr uintptr) uint8 {
	return m.data[m.offset(addr)]
}

func (m *Memory) Store8(addr uintptr, value uint8) {
	m.data[m.offset(addr)] = value
	m.stores++
}

// Stores returns the number of stores performed on the window.
func (m *Memory) Stores() int {
	return m.stores
}

// Snapshot returns a copy of the window contents.
func (m *Memory) Snapshot() []byte {
	return append([]byte(nil), m.data...)
}

func (m *Memory) offset(addr uintptr) uintptr {
	if addr < m.base || addr-m.base >= uintptr(len(m.data)) {
		panic(fmt.Sprintf("mmio: address %#x outside window [%#x, %#x)", addr, m.base, m.base+uintptr(len(m.data))))
	}
	return addr - m.base
}
