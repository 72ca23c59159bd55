package pcp

// Locker runs a critical section guarded by a statically computed ceiling.
type Locker interface {
	Lock(ceiling Level, f func())
}

// StackProbe exposes the linker symbols and stack pointer used by the pre-init stack guard.
type StackProbe interface {
	StackStart() uintptr
	DataEnd() uintptr
	SP() uintptr
}

// Backend is the capability set every target architecture provides. Generated code refers to one
// concrete implementation, chosen when the application is generated.
type Backend interface {
	Controller
	Locker
	StackProbe

	// Run executes a task activation at its static level.
	Run(level Level, f func())

	GlobalEnable()
	GlobalDisable()

	// CurrentThreshold returns the current masking level in the backend's own encoding.
	CurrentThreshold() uintptr

	// MaxLevel is the highest priority the interrupt controller can represent.
	MaxLevel() Level

	// AsyncEntry runs first in every software-task dispatcher.
	AsyncEntry(dispatcher Interrupt)
}

// Stack is a StackProbe built from fixed addresses and a stack pointer reader.
type Stack struct {
	Start   uintptr
	End     uintptr
	Pointer func() uintptr
}

func (s Stack) StackStart() uintptr { return s.Start }
func (s Stack) DataEnd() uintptr    { return s.End }

func (s Stack) SP() uintptr {
	if s.Pointer == nil {
		return s.Start
	}
	return s.Pointer()
}
