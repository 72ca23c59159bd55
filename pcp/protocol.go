// Package pcp implements the stack/priority-ceiling lock protocol on top of an interrupt
// threshold register.
//
// A resource shared between tasks of different priorities is guarded by raising the threshold to
// the resource ceiling, the highest priority of any task that accesses it. While the threshold is
// raised no task that could touch the resource is able to preempt the holder, so the lock needs no
// lock word and cannot deadlock. Ceilings are computed at build time and passed in as constants.
package pcp

// Threshold is the interrupt priority threshold of the running core.
type Threshold interface {
	Read() uintptr
	Write(value uintptr)
}

// GlobalMask is the master interrupt enable of the running core.
type GlobalMask interface {
	// DisableInterrupts masks every interrupt and returns the previous state.
	DisableInterrupts() uintptr

	// EnableInterrupts restores a state previously returned by DisableInterrupts.
	EnableInterrupts(state uintptr)
}

// Mode selects how a priority level is programmed into the threshold register.
type Mode uint8

const (
	// MaskAtOrBelow programs the level itself. A source whose level equals the threshold is
	// masked.
	MaskAtOrBelow Mode = iota

	// MaskBelow programs level+1. A source whose level equals the threshold is let through.
	MaskBelow
)

func (m Mode) String() string {
	switch m {
	case MaskAtOrBelow:
		return "mask-at-or-below"
	case MaskBelow:
		return "mask-below"
	default:
		return "unknown"
	}
}

// Encode returns the threshold value that masks every source at or below level.
func (m Mode) Encode(level Level) uintptr {
	if m == MaskBelow {
		return uintptr(level) + 1
	}
	return uintptr(level)
}

// Open returns the threshold value that masks every source below level while still letting
// sources at level through.
func (m Mode) Open(level Level) uintptr {
	if m == MaskBelow {
		return uintptr(level)
	}
	if level == 0 {
		return 0
	}
	return uintptr(level) - 1
}

// Masks reports whether a source at level is held back by threshold.
func (m Mode) Masks(threshold uintptr, level Level) bool {
	if m == MaskBelow {
		return uintptr(level) < threshold
	}
	return uintptr(level) <= threshold
}

// Protocol is the backend independent part of locking and task execution.
type Protocol struct {
	Threshold Threshold
	Global    GlobalMask
	Mode      Mode

	// Floor is the lowest task level. A task running at the floor leaves the threshold open for
	// floor-level sources when it returns instead of restoring a saved value. Zero disables the
	// special case.
	Floor Level

	// MaxThreshold is the largest value the threshold register can hold. A ceiling whose
	// encoding does not fit is locked with a global critical section instead.
	MaxThreshold uintptr

	Tracer Tracer
}

// Lock runs f with every task whose priority is at or below ceiling held back.
//
// The previous threshold is restored even if f panics. Nested locks must be taken in
// non-decreasing ceiling order.
func (p *Protocol) Lock(ceiling Level, f func()) {
	if p.Tracer != nil {
		p.Tracer.Tracef("lock (ceiling=%d) enter", ceiling)
		defer p.Tracer.Tracef("lock (ceiling=%d) leave", ceiling)
	}

	target := p.Mode.Encode(ceiling)
	if target > p.MaxThreshold {
		p.Free(f)
		return
	}

	previous := p.Threshold.Read()
	p.Threshold.Write(higher(previous, target))
	defer p.Threshold.Write(previous)
	f()
}

// Run executes a task body at its static level.
func (p *Protocol) Run(level Level, f func()) {
	if p.Tracer != nil {
		p.Tracer.Tracef("run task@%d enter", level)
		defer p.Tracer.Tracef("run task@%d leave", level)
	}

	if p.Floor != 0 && level == p.Floor {
		p.Threshold.Write(p.clamp(p.Mode.Encode(level)))
		defer p.Threshold.Write(p.Mode.Open(p.Floor))
		f()
		return
	}

	previous := p.Threshold.Read()
	p.Threshold.Write(p.clamp(p.Mode.Encode(level)))
	defer p.Threshold.Write(previous)
	f()
}

// Free runs f with all interrupts disabled.
func (p *Protocol) Free(f func()) {
	state := p.Global.DisableInterrupts()
	defer p.Global.EnableInterrupts(state)
	f()
}

// MaskAll writes the largest threshold the register can hold.
func (p *Protocol) MaskAll() {
	p.Threshold.Write(p.MaxThreshold)
}

// Unmask writes the live threshold, masking nothing.
func (p *Protocol) Unmask() {
	p.Threshold.Write(0)
}

func (p *Protocol) clamp(value uintptr) uintptr {
	if value > p.MaxThreshold {
		return p.MaxThreshold
	}
	return value
}

func higher(a, b uintptr) uintptr {
	if a > b {
		return a
	}
	return b
}
