package clic

import (
	"bytes"
	"testing"

	"omibyte.io/rtic/mmio"
	"omibyte.io/rtic/pcp"
)

const testBase = 0x0280_0000

func newTestController() (*Controller, *mmio.Memory) {
	mem := mmio.NewMemory(testBase, Size(16))
	return New(mem, testBase, 16), mem
}

func TestEnable(t *testing.T) {
	c, _ := newTestController()

	c.Enable(5, 3)

	attr := c.Attr(5)
	if attr.Trig() != TrigEdge || attr.Polarity() != Positive || !attr.Vectored() {
		t.Errorf("attr = %03b, expected edge, positive, vectored", attr)
	}
	if c.Level(5) != 3 {
		t.Errorf("level = %d, expected 3", c.Level(5))
	}
	if !c.IsEnabled(5) {
		t.Error("source not enabled")
	}
	if c.IsEnabled(4) || c.IsEnabled(6) {
		t.Error("neighbouring sources enabled")
	}
}

func TestEnableIdempotent(t *testing.T) {
	c, mem := newTestController()

	c.Enable(2, 7)
	once := mem.Snapshot()
	c.Enable(2, 7)

	if !bytes.Equal(once, mem.Snapshot()) {
		t.Error("second Enable changed the controller state")
	}
}

func TestDisableResetsSource(t *testing.T) {
	c, _ := newTestController()

	c.SetPolarity(9, Negative)
	c.Enable(9, 6)
	c.Disable(9)

	if c.IsEnabled(9) {
		t.Error("source still enabled")
	}
	if c.Level(9) != 0 {
		t.Errorf("level = %d, expected 0", c.Level(9))
	}
	if c.Attr(9) != 0 {
		t.Errorf("attr = %03b, expected 0", c.Attr(9))
	}
}

func TestPendUnpend(t *testing.T) {
	c, _ := newTestController()

	c.Pend(1)
	if !c.IsPending(1) {
		t.Fatal("pending bit not set")
	}
	c.Unpend(1)
	if c.IsPending(1) {
		t.Error("pending bit not cleared")
	}
}

func TestSetLevelKeepsConfiguration(t *testing.T) {
	c, _ := newTestController()

	c.Enable(3, 2)
	c.SetLevel(3, 6)

	if c.Level(3) != 6 || !c.IsEnabled(3) || !c.Attr(3).Vectored() {
		t.Errorf("level %d enabled %v attr %03b after SetLevel", c.Level(3), c.IsEnabled(3), c.Attr(3))
	}
}

func TestClearAll(t *testing.T) {
	c, _ := newTestController()
	for i := pcp.Interrupt(0); i < 16; i++ {
		c.Enable(i, pcp.Level(i))
		c.Pend(i)
	}

	c.ClearAll()

	for i := pcp.Interrupt(0); i < 16; i++ {
		if c.IsEnabled(i) || c.IsPending(i) {
			t.Errorf("source %d enabled %v pending %v after ClearAll", i, c.IsEnabled(i), c.IsPending(i))
		}
	}
}
