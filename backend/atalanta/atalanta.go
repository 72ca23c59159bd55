// Package atalanta is the backend for Atalanta-class cores with a vectored CLIC.
//
// The threshold, the source configuration and pending work as in riscvrt. The controller does not
// clear the pending bit of a vectored source on entry, so dispatchers clear it themselves.
package atalanta

import (
	"omibyte.io/rtic/backend/riscvrt"
	"omibyte.io/rtic/pcp"
)

const Name = "riscv-atalanta"

type Config = riscvrt.Config

type Backend struct {
	*riscvrt.Backend
}

func New(config Config) *Backend {
	return &Backend{
		Backend: riscvrt.New(config),
	}
}

func (b *Backend) Pend(irq pcp.Interrupt) {
	proto := b.Protocol()
	if proto.Tracer != nil {
		proto.Tracer.Tracef("pend %d enter", irq)
		defer proto.Tracer.Tracef("pend %d leave", irq)
	}
	b.Backend.Pend(irq)
}

// AsyncEntry clears the dispatcher's pending bit so a pend issued while the dispatcher runs is
// not lost.
func (b *Backend) AsyncEntry(dispatcher pcp.Interrupt) {
	b.CLIC().Unpend(dispatcher)
}

// ClearInterrupts disables and unpends every source.
func (b *Backend) ClearInterrupts() {
	b.CLIC().ClearAll()
}

// SetInterrupts opens the threshold once every source is programmed.
func (b *Backend) SetInterrupts() {
	b.Protocol().Unmask()
}

var _ pcp.Backend = (*Backend)(nil)
