package app

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGraph = errors.New("invalid application graph")
	ErrUnknownTask  = errors.New("unknown task")
	ErrDuplicate    = errors.New("duplicate name")
	ErrPriority     = errors.New("priority out of range")
)

// GraphError is a validation failure of the application graph.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrInvalidGraph, Msg: fmt.Sprintf(format, args...)}
}

func graphErrorf(kind error, format string, args ...any) error {
	return &GraphError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
