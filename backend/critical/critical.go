// Package critical is the backend for targets without a usable threshold register.
//
// Every lock whose ceiling is above the running level disables all interrupts for the duration
// of the critical section. The running level is tracked in software and stands in for the
// threshold.
package critical

import (
	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/pcp"
)

const Name = "critical-section"

type Config struct {
	Controller pcp.Controller
	Global     pcp.GlobalMask
	MaxLevel   pcp.Level
	Stack      pcp.StackProbe
	Tracer     pcp.Tracer
}

type Backend struct {
	pcp.Controller

	global pcp.GlobalMask
	stack  pcp.StackProbe
	tracer pcp.Tracer
	max    pcp.Level

	// current is the level the running code is protected at.
	current pcp.Level
}

func New(config Config) *Backend {
	if config.MaxLevel == 0 {
		config.MaxLevel = 255
	}
	return &Backend{
		Controller: config.Controller,
		global:     config.Global,
		stack:      config.Stack,
		tracer:     config.Tracer,
		max:        config.MaxLevel,
	}
}

func (b *Backend) Lock(ceiling pcp.Level, f func()) {
	if b.tracer != nil {
		b.tracer.Tracef("lock (ceiling=%d) enter", ceiling)
		defer b.tracer.Tracef("lock (ceiling=%d) leave", ceiling)
	}

	if ceiling <= b.current {
		f()
		return
	}

	state := b.global.DisableInterrupts()
	previous := b.current
	b.current = ceiling
	defer func() {
		b.current = previous
		b.global.EnableInterrupts(state)
	}()
	f()
}

func (b *Backend) Run(level pcp.Level, f func()) {
	if b.tracer != nil {
		b.tracer.Tracef("run task@%d enter", level)
		defer b.tracer.Tracef("run task@%d leave", level)
	}

	previous := b.current
	b.current = level
	defer func() {
		b.current = previous
	}()
	f()
}

// Pend sets the pending bit inside a critical section.
func (b *Backend) Pend(irq pcp.Interrupt) {
	state := b.global.DisableInterrupts()
	defer b.global.EnableInterrupts(state)
	b.Controller.Pend(irq)
}

func (b *Backend) GlobalEnable() {
	b.global.EnableInterrupts(csr.MIE)
}

func (b *Backend) GlobalDisable() {
	b.global.DisableInterrupts()
}

func (b *Backend) CurrentThreshold() uintptr {
	return uintptr(b.current)
}

func (b *Backend) MaxLevel() pcp.Level {
	return b.max
}

func (b *Backend) AsyncEntry(dispatcher pcp.Interrupt) {
	b.Controller.Unpend(dispatcher)
}

func (b *Backend) StackStart() uintptr { return b.stack.StackStart() }
func (b *Backend) DataEnd() uintptr    { return b.stack.DataEnd() }
func (b *Backend) SP() uintptr         { return b.stack.SP() }

var _ pcp.Backend = (*Backend)(nil)
