// Package backendtest checks that a backend honours the observable contract shared by every
// variant: nested locks restore the threshold, enable is idempotent, disable resets a source and
// pend/unpend round-trips.
package backendtest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"omibyte.io/rtic/pcp"
)

// Harness is one freshly constructed backend in its live state (threshold open) together with
// sources the suite may reprogram.
type Harness struct {
	Backend pcp.Backend
	Sources []pcp.Interrupt
}

type sourceState struct {
	Enabled bool
	Level   pcp.Level
	Pending bool
}

func stateOf(b pcp.Backend, irq pcp.Interrupt) sourceState {
	return sourceState{
		Enabled: b.IsEnabled(irq),
		Level:   b.Level(irq),
		Pending: b.IsPending(irq),
	}
}

// Run runs the conformance suite. setup is called once per subtest.
func Run(t *testing.T, setup func(t *testing.T) Harness) {
	t.Run("ThresholdRestore", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		top := b.MaxLevel() - 1
		before := b.CurrentThreshold()

		var trail []uintptr
		b.Run(2, func() {
			trail = append(trail, b.CurrentThreshold())
			b.Lock(3, func() {
				trail = append(trail, b.CurrentThreshold())
				b.Lock(top, func() {
					trail = append(trail, b.CurrentThreshold())
				})
				trail = append(trail, b.CurrentThreshold())
			})
			trail = append(trail, b.CurrentThreshold())
		})

		if after := b.CurrentThreshold(); after != before {
			t.Errorf("threshold after nested calls = %d, expected %d", after, before)
		}
		if trail[0] > trail[1] || trail[1] > trail[2] {
			t.Errorf("threshold decreased while nesting: %v", trail)
		}
		if trail[3] != trail[1] || trail[4] != trail[0] {
			t.Errorf("inner restores are not stack-like: %v", trail)
		}
	})

	t.Run("RestoreOnPanic", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		errBody := errors.New("body failed")

		var inside uintptr
		b.Run(2, func() {
			inside = b.CurrentThreshold()
			func() {
				defer func() {
					if r := recover(); r != errBody {
						t.Fatalf("recovered %v, expected %v", r, errBody)
					}
				}()
				b.Lock(4, func() {
					panic(errBody)
				})
			}()
			if got := b.CurrentThreshold(); got != inside {
				t.Errorf("threshold after panicking lock = %d, expected %d", got, inside)
			}
		})
	})

	t.Run("MaxCeiling", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		before := b.CurrentThreshold()

		ran := false
		b.Lock(b.MaxLevel(), func() {
			ran = true
		})

		if !ran {
			t.Fatal("critical section did not run")
		}
		if after := b.CurrentThreshold(); after != before {
			t.Errorf("threshold after max ceiling lock = %d, expected %d", after, before)
		}
	})

	t.Run("IdempotentEnable", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		irq := h.Sources[0]
		b.GlobalDisable()

		b.Enable(irq, 3)
		once := stateOf(b, irq)
		b.Enable(irq, 3)
		twice := stateOf(b, irq)

		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("second Enable changed the source (-once +twice):\n%s", diff)
		}
		if diff := cmp.Diff(sourceState{Enabled: true, Level: 3}, once); diff != "" {
			t.Errorf("unexpected state after Enable (-expected +got):\n%s", diff)
		}
	})

	t.Run("DisableResets", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		irq := h.Sources[0]
		b.GlobalDisable()

		b.Enable(irq, 5)
		b.Disable(irq)

		if diff := cmp.Diff(sourceState{}, stateOf(b, irq)); diff != "" {
			t.Errorf("unexpected state after Disable (-expected +got):\n%s", diff)
		}
	})

	t.Run("PendUnpend", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		b.GlobalDisable()

		for _, irq := range h.Sources {
			b.Pend(irq)
			if !b.IsPending(irq) {
				t.Errorf("source %d not pending after Pend", irq)
			}
			b.Unpend(irq)
			if b.IsPending(irq) {
				t.Errorf("source %d still pending after Unpend", irq)
			}
		}
	})

	t.Run("SetLevel", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		irq := h.Sources[len(h.Sources)-1]
		b.GlobalDisable()

		b.Enable(irq, 2)
		b.SetLevel(irq, 6)

		if diff := cmp.Diff(sourceState{Enabled: true, Level: 6}, stateOf(b, irq)); diff != "" {
			t.Errorf("unexpected state after SetLevel (-expected +got):\n%s", diff)
		}
	})

	t.Run("AsyncEntryKeepsLaterPend", func(t *testing.T) {
		h := setup(t)
		b := h.Backend
		irq := h.Sources[0]
		b.GlobalDisable()

		b.Pend(irq)
		b.AsyncEntry(irq)
		b.Pend(irq)

		if !b.IsPending(irq) {
			t.Error("pend issued after dispatcher entry was lost")
		}
	})
}
