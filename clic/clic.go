// Package clic drives a RISC-V core-local interrupt controller.
//
// Every source owns four byte registers at base+0x1000+4*n: clicintip, clicintie, clicintattr
// and clicintctl. The level is held in clicintctl.
package clic

import (
	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

const (
	intOffset = 0x1000

	ipOffset   = 0
	ieOffset   = 1
	attrOffset = 2
	ctlOffset  = 3
)

// Size is the length of the register window for n sources.
func Size(sources int) int {
	return intOffset + 4*sources
}

type Trig uint8

const (
	TrigLevel Trig = iota
	TrigEdge
)

type Polarity uint8

const (
	Positive Polarity = iota
	Negative
)

// Attr is the content of clicintattr.
type Attr uint8

const (
	AttrSHV  Attr = 1 << 0
	AttrEdge Attr = 1 << 1
	AttrNeg  Attr = 1 << 2
)

func (a Attr) Trig() Trig {
	if a&AttrEdge != 0 {
		return TrigEdge
	}
	return TrigLevel
}

func (a Attr) Polarity() Polarity {
	if a&AttrNeg != 0 {
		return Negative
	}
	return Positive
}

func (a Attr) Vectored() bool {
	return a&AttrSHV != 0
}

type Controller struct {
	bus     mmio.Bus
	base    uintptr
	sources int
}

func New(bus mmio.Bus, base uintptr, sources int) *Controller {
	return &Controller{
		bus:     bus,
		base:    base,
		sources: sources,
	}
}

func (c *Controller) Sources() int {
	return c.sources
}

func (c *Controller) Enable(irq pcp.Interrupt, level pcp.Level) {
	c.SetTrig(irq, TrigEdge)
	c.SetPolarity(irq, Positive)
	c.SetLevel(irq, level)
	c.SetVectored(irq, true)
	c.bus.Store8(c.reg(irq, ieOffset), 1)
}

func (c *Controller) Disable(irq pcp.Interrupt) {
	c.bus.Store8(c.reg(irq, ieOffset), 0)
	c.bus.Store8(c.reg(irq, ctlOffset), 0)
	c.bus.Store8(c.reg(irq, attrOffset), 0)
}

func (c *Controller) Pend(irq pcp.Interrupt) {
	c.bus.Store8(c.reg(irq, ipOffset), 1)
}

func (c *Controller) Unpend(irq pcp.Interrupt) {
	c.bus.Store8(c.reg(irq, ipOffset), 0)
}

func (c *Controller) SetLevel(irq pcp.Interrupt, level pcp.Level) {
	c.bus.Store8(c.reg(irq, ctlOffset), uint8(level))
}

func (c *Controller) SetTrig(irq pcp.Interrupt, trig Trig) {
	attr := c.Attr(irq) &^ AttrEdge
	if trig == TrigEdge {
		attr |= AttrEdge
	}
	c.bus.Store8(c.reg(irq, attrOffset), uint8(attr))
}

func (c *Controller) SetPolarity(irq pcp.Interrupt, polarity Polarity) {
	attr := c.Attr(irq) &^ AttrNeg
	if polarity == Negative {
		attr |= AttrNeg
	}
	c.bus.Store8(c.reg(irq, attrOffset), uint8(attr))
}

func (c *Controller) SetVectored(irq pcp.Interrupt, vectored bool) {
	attr := c.Attr(irq) &^ AttrSHV
	if vectored {
		attr |= AttrSHV
	}
	c.bus.Store8(c.reg(irq, attrOffset), uint8(attr))
}

func (c *Controller) IsPending(irq pcp.Interrupt) bool {
	return c.bus.Load8(c.reg(irq, ipOffset))&1 != 0
}

func (c *Controller) IsEnabled(irq pcp.Interrupt) bool {
	return c.bus.Load8(c.reg(irq, ieOffset))&1 != 0
}

func (c *Controller) Level(irq pcp.Interrupt) pcp.Level {
	return pcp.Level(c.bus.Load8(c.reg(irq, ctlOffset)))
}

func (c *Controller) Attr(irq pcp.Interrupt) Attr {
	return Attr(c.bus.Load8(c.reg(irq, attrOffset)))
}

// ClearAll disables every source and clears every pending bit.
func (c *Controller) ClearAll() {
	for i := 0; i < c.sources; i++ {
		irq := pcp.Interrupt(i)
		c.bus.Store8(c.reg(irq, ieOffset), 0)
		c.bus.Store8(c.reg(irq, ipOffset), 0)
	}
}

func (c *Controller) reg(irq pcp.Interrupt, offset uintptr) uintptr {
	return c.base + intOffset + uintptr(irq)*4 + offset
}
