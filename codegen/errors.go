package codegen

import "errors"

var (
	ErrNoBackend         = errors.New("no backend selected")
	ErrMultipleBackends  = errors.New("more than one backend selected")
	ErrUnknownBackend    = errors.New("unknown backend")
	ErrBackendArgs       = errors.New("invalid backend arguments")
	ErrNoTarget          = errors.New("no target selected")
	ErrUnsupportedTarget = errors.New("target does not support backend")
	ErrMissingInterrupt  = errors.New("interrupt not declared by device package")
)
