// Package sim is a backend that simulates a single-core machine with a level-based interrupt
// controller.
//
// Interrupts are delivered synchronously: whenever a source is pended, the threshold drops or
// interrupts are re-enabled, the highest pending source that is enabled, above the running level
// and not masked by the threshold is dispatched on the caller's stack. Nested dispatch therefore
// has the same shape as hardware preemption on one core.
package sim

import (
	"errors"
	"fmt"

	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/pcp"
)

const Name = "sim"

var (
	ErrRunaway      = errors.New("dispatch limit exceeded")
	ErrUnhandled    = errors.New("unhandled interrupt")
	ErrBadInterrupt = errors.New("interrupt out of range")
)

type Config struct {
	Sources  int
	MaxLevel pcp.Level
	Mode     pcp.Mode

	// Floor is the lowest task level, see pcp.Protocol.
	Floor pcp.Level

	// AutoClear clears the pending bit when a source is taken, as vectored edge-triggered
	// controllers do.
	AutoClear bool

	StackStart uintptr
	DataEnd    uintptr
	SP         uintptr

	// DispatchLimit bounds the total number of dispatches.
	DispatchLimit int

	Tracer pcp.Tracer
}

type source struct {
	level   pcp.Level
	enabled bool
	pending bool
}

// SourceState is the observable configuration of one source.
type SourceState struct {
	Level   pcp.Level
	Enabled bool
	Pending bool
}

type Machine struct {
	config     Config
	proto      pcp.Protocol
	sources    []source
	vector     []func()
	threshold  uintptr
	global     uintptr
	running    []pcp.Level
	writes     int
	dispatches int
	events     []Event
	sp         uintptr
}

func New(config Config) *Machine {
	if config.Sources == 0 {
		config.Sources = 32
	}
	if config.MaxLevel == 0 {
		config.MaxLevel = 7
	}
	if config.DispatchLimit == 0 {
		config.DispatchLimit = 1 << 16
	}

	m := &Machine{
		config:    config,
		sources:   make([]source, config.Sources),
		vector:    make([]func(), config.Sources),
		threshold: uintptr(config.MaxLevel),
		sp:        config.SP,
	}
	m.proto = pcp.Protocol{
		Threshold:    m,
		Global:       m,
		Mode:         config.Mode,
		Floor:        config.Floor,
		MaxThreshold: uintptr(config.MaxLevel),
		Tracer:       config.Tracer,
	}
	return m
}

// Attach installs the handler of a source in the vector table.
func (m *Machine) Attach(irq pcp.Interrupt, handler func()) {
	m.check(irq)
	m.vector[irq] = handler
}

// Read and Write make the machine its own threshold register.

func (m *Machine) Read() uintptr {
	return m.threshold
}

func (m *Machine) Write(value uintptr) {
	m.threshold = value
	m.writes++
	m.record(Event{Kind: EventThreshold, Value: value})
	m.poll()
}

func (m *Machine) DisableInterrupts() uintptr {
	state := m.global
	m.global = 0
	return state
}

func (m *Machine) EnableInterrupts(state uintptr) {
	m.global = state & csr.MIE
	m.poll()
}

func (m *Machine) Enable(irq pcp.Interrupt, level pcp.Level) {
	m.check(irq)
	m.sources[irq].level = level
	m.sources[irq].enabled = true
	m.poll()
}

func (m *Machine) Disable(irq pcp.Interrupt) {
	m.check(irq)
	m.sources[irq].level = 0
	m.sources[irq].enabled = false
}

func (m *Machine) Pend(irq pcp.Interrupt) {
	m.check(irq)
	m.sources[irq].pending = true
	m.record(Event{Kind: EventPend, Irq: irq})
	m.poll()
}

func (m *Machine) Unpend(irq pcp.Interrupt) {
	m.check(irq)
	m.sources[irq].pending = false
	m.record(Event{Kind: EventUnpend, Irq: irq})
}

func (m *Machine) SetLevel(irq pcp.Interrupt, level pcp.Level) {
	m.check(irq)
	m.sources[irq].level = level
	m.poll()
}

func (m *Machine) IsPending(irq pcp.Interrupt) bool {
	m.check(irq)
	return m.sources[irq].pending
}

func (m *Machine) IsEnabled(irq pcp.Interrupt) bool {
	m.check(irq)
	return m.sources[irq].enabled
}

func (m *Machine) Level(irq pcp.Interrupt) pcp.Level {
	m.check(irq)
	return m.sources[irq].level
}

func (m *Machine) Lock(ceiling pcp.Level, f func()) {
	m.proto.Lock(ceiling, f)
}

func (m *Machine) Run(level pcp.Level, f func()) {
	m.proto.Run(level, f)
}

func (m *Machine) GlobalEnable() {
	m.EnableInterrupts(csr.MIE)
}

func (m *Machine) GlobalDisable() {
	m.DisableInterrupts()
}

func (m *Machine) GlobalEnabled() bool {
	return m.global&csr.MIE != 0
}

func (m *Machine) CurrentThreshold() uintptr {
	return m.threshold
}

func (m *Machine) MaxLevel() pcp.Level {
	return m.config.MaxLevel
}

// AsyncEntry clears the dispatcher's pending bit, whether or not the controller already did.
func (m *Machine) AsyncEntry(dispatcher pcp.Interrupt) {
	m.Unpend(dispatcher)
}

// MaskAll writes the all-masking threshold and disables interrupts.
func (m *Machine) MaskAll() {
	m.DisableInterrupts()
	m.proto.MaskAll()
}

// UnmaskAll opens the threshold and enables interrupts.
func (m *Machine) UnmaskAll() {
	m.proto.Unmask()
	m.GlobalEnable()
}

func (m *Machine) StackStart() uintptr { return m.config.StackStart }
func (m *Machine) DataEnd() uintptr    { return m.config.DataEnd }
func (m *Machine) SP() uintptr         { return m.sp }

func (m *Machine) SetSP(sp uintptr) {
	m.sp = sp
}

// RunningLevel is the hardware level of the innermost handler, 0 outside handlers.
func (m *Machine) RunningLevel() pcp.Level {
	if len(m.running) == 0 {
		return 0
	}
	return m.running[len(m.running)-1]
}

// Writes returns the number of threshold writes.
func (m *Machine) Writes() int {
	return m.writes
}

func (m *Machine) Dispatches() int {
	return m.dispatches
}

// Events returns a copy of the event log.
func (m *Machine) Events() []Event {
	return append([]Event(nil), m.events...)
}

// ResetLog clears the event log and the counters.
func (m *Machine) ResetLog() {
	m.events = nil
	m.writes = 0
	m.dispatches = 0
}

func (m *Machine) Source(irq pcp.Interrupt) SourceState {
	m.check(irq)
	s := m.sources[irq]
	return SourceState{Level: s.level, Enabled: s.enabled, Pending: s.pending}
}

func (m *Machine) poll() {
	for m.global&csr.MIE != 0 {
		irq, ok := m.next()
		if !ok {
			return
		}
		m.dispatch(irq)
	}
}

// next selects the source to take. Equal levels are resolved in favour of the higher number.
func (m *Machine) next() (pcp.Interrupt, bool) {
	best := -1
	var bestLevel pcp.Level
	running := m.RunningLevel()
	for i := range m.sources {
		s := &m.sources[i]
		if !s.enabled || !s.pending || s.level == 0 {
			continue
		}
		if s.level <= running || m.config.Mode.Masks(m.threshold, s.level) {
			continue
		}
		if best < 0 || s.level >= bestLevel {
			best, bestLevel = i, s.level
		}
	}
	return pcp.Interrupt(best), best >= 0
}

func (m *Machine) dispatch(irq pcp.Interrupt) {
	m.dispatches++
	if m.dispatches > m.config.DispatchLimit {
		panic(fmt.Errorf("%w: %d dispatches", ErrRunaway, m.dispatches))
	}

	s := &m.sources[irq]
	if m.config.AutoClear {
		s.pending = false
	}

	handler := m.vector[irq]
	if handler == nil {
		panic(fmt.Errorf("%w: %d", ErrUnhandled, irq))
	}

	level := s.level
	m.running = append(m.running, level)
	m.record(Event{Kind: EventEnter, Irq: irq, Level: level})
	defer func() {
		m.running = m.running[:len(m.running)-1]
		m.record(Event{Kind: EventLeave, Irq: irq, Level: level})
	}()
	handler()
}

func (m *Machine) record(e Event) {
	m.events = append(m.events, e)
}

func (m *Machine) check(irq pcp.Interrupt) {
	if int(irq) >= len(m.sources) {
		panic(fmt.Errorf("%w: %d", ErrBadInterrupt, irq))
	}
}

var _ pcp.Backend = (*Machine)(nil)
