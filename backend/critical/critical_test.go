package critical

import (
	"testing"

	"omibyte.io/rtic/backend/backendtest"
	"omibyte.io/rtic/clic"
	"omibyte.io/rtic/csr"
	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

const testBase = 0x0c00_0000

func newTestBackend() (*Backend, *csr.Status) {
	status := csr.NewStatus(true)
	b := New(Config{
		Controller: clic.New(mmio.NewMemory(testBase, clic.Size(8)), testBase, 8),
		Global:     status,
		MaxLevel:   15,
		Stack:      pcp.Stack{Start: 0x2000, End: 0x1000},
	})
	return b, status
}

func TestConformance(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backendtest.Harness {
		b, _ := newTestBackend()
		return backendtest.Harness{
			Backend: b,
			Sources: []pcp.Interrupt{0, 4, 7},
		}
	})
}

func TestLockAboveRunningLevelDisablesInterrupts(t *testing.T) {
	b, status := newTestBackend()

	b.Run(2, func() {
		b.Lock(5, func() {
			if status.Enabled() {
				t.Error("interrupts enabled inside lock")
			}
			if b.CurrentThreshold() != 5 {
				t.Errorf("current level = %d, expected 5", b.CurrentThreshold())
			}
		})
		if !status.Enabled() {
			t.Error("interrupts not restored after lock")
		}
	})
}

func TestLockAtRunningLevelIsFree(t *testing.T) {
	b, status := newTestBackend()

	b.Run(5, func() {
		b.Lock(5, func() {
			if !status.Enabled() {
				t.Error("lock at the running level disabled interrupts")
			}
		})
	})
}

func TestNestedLockKeepsInterruptsDisabled(t *testing.T) {
	b, status := newTestBackend()

	b.Lock(3, func() {
		b.Lock(6, func() {})
		if status.Enabled() {
			t.Error("inner lock re-enabled interrupts")
		}
		if b.CurrentThreshold() != 3 {
			t.Errorf("current level = %d, expected 3", b.CurrentThreshold())
		}
	})

	if !status.Enabled() {
		t.Error("interrupts not restored after outer lock")
	}
}

func TestDefaultMaxLevel(t *testing.T) {
	b := New(Config{})

	if b.MaxLevel() != 255 {
		t.Errorf("MaxLevel() = %d, expected 255", b.MaxLevel())
	}
}
