package pcp

// Tracer receives enter and leave events from the lock protocol and the run wrapper.
type Tracer interface {
	Tracef(format string, args ...any)
}
