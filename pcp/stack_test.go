package pcp

import (
	"errors"
	"testing"
)

func TestCheckStack(t *testing.T) {
	tests := []struct {
		name     string
		stack    Stack
		expected error
	}{
		{
			"overflowed",
			Stack{Start: 0x2000, End: 0x1000, Pointer: func() uintptr { return 0x0F00 }},
			ErrStackOverflow,
		},
		{
			"atEndOfData",
			Stack{Start: 0x2000, End: 0x1000, Pointer: func() uintptr { return 0x1000 }},
			ErrStackOverflow,
		},
		{
			"healthy",
			Stack{Start: 0x2000, End: 0x1000, Pointer: func() uintptr { return 0x1F00 }},
			nil,
		},
		{
			"stackBelowData",
			Stack{Start: 0x1000, End: 0x2000, Pointer: func() uintptr { return 0x0F00 }},
			nil,
		},
		{
			"noPointer",
			Stack{Start: 0x2000, End: 0x1000},
			nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := CheckStack(tc.stack); !errors.Is(err, tc.expected) {
				t.Errorf("CheckStack() = %v, expected %v", err, tc.expected)
			}
		})
	}
}

func TestGuardStackAbortsBeforeInit(t *testing.T) {
	initRan := false
	defer func() {
		if r := recover(); r != ErrStackOverflow {
			t.Errorf("recovered %v, expected %v", r, ErrStackOverflow)
		}
		if initRan {
			t.Error("init ran after stack overflow")
		}
	}()

	GuardStack(Stack{Start: 0x2000, End: 0x1000, Pointer: func() uintptr { return 0x0F00 }})
	initRan = true
}

func TestGuardExecutorStack(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		if !ok || err != ErrExecutorStackOverflow {
			t.Fatalf("recovered %v, expected %v", err, ErrExecutorStackOverflow)
		}
		if !errors.Is(err, ErrStackOverflow) {
			t.Error("executor overflow does not match ErrStackOverflow")
		}
		if err.Error() != "pre-init sp ovrflw: stack overflow after allocating executors" {
			t.Errorf("message = %q", err.Error())
		}
	}()

	GuardExecutorStack(Stack{Start: 0x2000, End: 0x1000, Pointer: func() uintptr { return 0x0F00 }})
}

func TestGuardExecutorStackHealthy(t *testing.T) {
	GuardExecutorStack(Stack{Start: 0x2000, End: 0x1000, Pointer: func() uintptr { return 0x1F00 }})
}
