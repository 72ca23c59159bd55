package pcp

import (
	"errors"
	"fmt"
)

var (
	ErrStackOverflow  = errors.New("pre-init sp ovrflw")
	ErrAlreadySpawned = errors.New("task is already spawned")
	ErrUnknownTask    = errors.New("unknown task index")

	// ErrExecutorStackOverflow is reported by targets that check the stack once the software task
	// dispatchers are allocated.
	ErrExecutorStackOverflow = fmt.Errorf("%w: stack overflow after allocating executors", ErrStackOverflow)
)
