package pcp

import "sync/atomic"

// Dispatcher runs the software tasks sharing one priority level. Tasks are started by pending the
// dispatcher interrupt.
type Dispatcher[B Backend] struct {
	backend B
	irq     Interrupt
	level   Level
	tasks   []func()
	ready   []atomic.Bool
}

func NewDispatcher[B Backend](backend B, irq Interrupt, level Level, tasks ...func()) *Dispatcher[B] {
	return &Dispatcher[B]{
		backend: backend,
		irq:     irq,
		level:   level,
		tasks:   tasks,
		ready:   make([]atomic.Bool, len(tasks)),
	}
}

func (d *Dispatcher[B]) Interrupt() Interrupt {
	return d.irq
}

func (d *Dispatcher[B]) Level() Level {
	return d.level
}

// Spawn marks the task ready and pends the dispatcher. A task can be pending at most once.
func (d *Dispatcher[B]) Spawn(task int) error {
	if task < 0 || task >= len(d.tasks) {
		return ErrUnknownTask
	}
	if !d.ready[task].CompareAndSwap(false, true) {
		return ErrAlreadySpawned
	}
	d.backend.Pend(d.irq)
	return nil
}

// Entry is the body of the dispatcher interrupt handler.
func (d *Dispatcher[B]) Entry() {
	d.backend.AsyncEntry(d.irq)
	d.backend.Run(d.level, d.drain)
}

func (d *Dispatcher[B]) drain() {
	for i := range d.tasks {
		// Clear before running so the task may spawn itself again.
		if d.ready[i].CompareAndSwap(true, false) {
			d.tasks[i]()
		}
	}
}
