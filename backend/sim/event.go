package sim

import (
	"fmt"

	"omibyte.io/rtic/pcp"
)

type EventKind uint8

const (
	EventEnter EventKind = iota
	EventLeave
	EventPend
	EventUnpend
	EventThreshold
)

func (k EventKind) String() string {
	switch k {
	case EventEnter:
		return "enter"
	case EventLeave:
		return "leave"
	case EventPend:
		return "pend"
	case EventUnpend:
		return "unpend"
	case EventThreshold:
		return "threshold"
	default:
		return "unknown"
	}
}

// Event is one entry of the machine log.
type Event struct {
	Kind  EventKind
	Irq   pcp.Interrupt
	Level pcp.Level
	Value uintptr
}

func (e Event) String() string {
	switch e.Kind {
	case EventEnter, EventLeave:
		return fmt.Sprintf("%s %d@%d", e.Kind, e.Irq, e.Level)
	case EventThreshold:
		return fmt.Sprintf("%s=%d", e.Kind, e.Value)
	default:
		return fmt.Sprintf("%s %d", e.Kind, e.Irq)
	}
}

// Filter returns the events of the given kinds.
func Filter(events []Event, kinds ...EventKind) []Event {
	var out []Event
	for _, e := range events {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
