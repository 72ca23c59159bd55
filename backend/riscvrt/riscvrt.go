// Package riscvrt is the backend for RISC-V targets using the generic riscv-rt runtime.
//
// Masking is realized with the mintthresh CSR. Sources are configured through the CLIC and
// hardware clears the pending bit of a vectored source on entry.
package riscvrt

import (
	"omibyte.io/rtic/clic"
	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

const (
	Name = "riscv-rt"

	// Floor is the lowest level a task may run at.
	Floor pcp.Level = 1

	DefaultMaxLevel pcp.Level = 255
)

type Config struct {
	Threshold pcp.Threshold
	Global    pcp.GlobalMask
	Bus       mmio.Bus
	Base      uintptr
	Sources   int
	MaxLevel  pcp.Level
	Stack     pcp.StackProbe
	Tracer    pcp.Tracer
}

type Backend struct {
	proto  pcp.Protocol
	clic   *clic.Controller
	global pcp.GlobalMask
	stack  pcp.StackProbe
	max    pcp.Level
}

func New(config Config) *Backend {
	if config.MaxLevel == 0 {
		config.MaxLevel = DefaultMaxLevel
	}
	return &Backend{
		proto: pcp.Protocol{
			Threshold:    config.Threshold,
			Global:       config.Global,
			Mode:         pcp.MaskAtOrBelow,
			Floor:        Floor,
			MaxThreshold: uintptr(config.MaxLevel),
			Tracer:       config.Tracer,
		},
		clic:   clic.New(config.Bus, config.Base, config.Sources),
		global: config.Global,
		stack:  config.Stack,
		max:    config.MaxLevel,
	}
}

// Protocol exposes the lock protocol so derived backends can reuse it.
func (b *Backend) Protocol() *pcp.Protocol {
	return &b.proto
}

// CLIC exposes the interrupt controller driver.
func (b *Backend) CLIC() *clic.Controller {
	return b.clic
}

func (b *Backend) Enable(irq pcp.Interrupt, level pcp.Level) { b.clic.Enable(irq, level) }
func (b *Backend) Disable(irq pcp.Interrupt)                 { b.clic.Disable(irq) }
func (b *Backend) Unpend(irq pcp.Interrupt)                  { b.clic.Unpend(irq) }
func (b *Backend) SetLevel(irq pcp.Interrupt, level pcp.Level) {
	b.clic.SetLevel(irq, level)
}
func (b *Backend) IsPending(irq pcp.Interrupt) bool { return b.clic.IsPending(irq) }
func (b *Backend) IsEnabled(irq pcp.Interrupt) bool { return b.clic.IsEnabled(irq) }
func (b *Backend) Level(irq pcp.Interrupt) pcp.Level {
	return b.clic.Level(irq)
}

// Pend sets the pending bit inside a critical section.
func (b *Backend) Pend(irq pcp.Interrupt) {
	b.proto.Free(func() {
		b.clic.Pend(irq)
	})
}

func (b *Backend) Lock(ceiling pcp.Level, f func()) {
	b.proto.Lock(ceiling, f)
}

func (b *Backend) Run(level pcp.Level, f func()) {
	b.proto.Run(level, f)
}

func (b *Backend) GlobalEnable() {
	b.global.EnableInterrupts(csr.MIE)
}

func (b *Backend) GlobalDisable() {
	b.global.DisableInterrupts()
}

func (b *Backend) CurrentThreshold() uintptr {
	return b.proto.Threshold.Read()
}

func (b *Backend) MaxLevel() pcp.Level {
	return b.max
}

// AsyncEntry does nothing: the hardware clears the pending bit when the dispatcher is taken.
func (b *Backend) AsyncEntry(pcp.Interrupt) {}

// MaskThreshold masks every source before the controller is programmed.
func (b *Backend) MaskThreshold() {
	b.proto.MaskAll()
}

// UnmaskThreshold lowers the threshold once every source is programmed.
func (b *Backend) UnmaskThreshold() {
	b.proto.Unmask()
}

func (b *Backend) StackStart() uintptr { return b.stack.StackStart() }
func (b *Backend) DataEnd() uintptr    { return b.stack.DataEnd() }
func (b *Backend) SP() uintptr         { return b.stack.SP() }

var _ pcp.Backend = (*Backend)(nil)
