package pcp

// Level is a static priority. 0 is the idle level and never preempts; higher values are more
// urgent.
type Level uint8

// Interrupt identifies an interrupt source by its number in the vector table.
type Interrupt uint16

// Controller programs individual interrupt sources.
type Controller interface {
	// Enable configures the source for edge-triggered, positive-polarity, vectored dispatch at the
	// given level and then unmasks it.
	Enable(irq Interrupt, level Level)

	// Disable masks the source and resets its level and attributes to their defaults.
	Disable(irq Interrupt)

	// Pend sets the software pending bit of the source.
	Pend(irq Interrupt)

	// Unpend clears the software pending bit of the source.
	Unpend(irq Interrupt)

	// SetLevel reprograms the level of an already configured source.
	SetLevel(irq Interrupt, level Level)

	IsPending(irq Interrupt) bool
	IsEnabled(irq Interrupt) bool
	Level(irq Interrupt) Level
}
