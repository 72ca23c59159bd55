package csr

import "testing"

func TestCell(t *testing.T) {
	c := NewCell(0xFF)
	if c.Read() != 0xFF {
		t.Fatalf("initial value = %#x, expected 0xff", c.Read())
	}

	c.Write(3)
	c.Write(0)
	if c.Read() != 0 || c.Writes() != 2 {
		t.Errorf("value = %d with %d writes, expected 0 with 2", c.Read(), c.Writes())
	}

	c.ResetWrites()
	if c.Writes() != 0 {
		t.Errorf("writes after reset = %d", c.Writes())
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStatus(tc.enabled)

			outer := s.DisableInterrupts()
			inner := s.DisableInterrupts()
			if s.Enabled() {
				t.Fatal("interrupts enabled after DisableInterrupts")
			}

			s.EnableInterrupts(inner)
			if s.Enabled() {
				t.Error("inner restore enabled interrupts")
			}

			s.EnableInterrupts(outer)
			if s.Enabled() != tc.enabled {
				t.Errorf("enabled = %v after outer restore, expected %v", s.Enabled(), tc.enabled)
			}
		})
	}
}
