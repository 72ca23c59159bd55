package codegen

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/slices"
)

type Env map[string]string

func Environment() Env {
	return map[string]string{
		"RTICGEN_BACKEND": getenv("RTICGEN_BACKEND", ""),
		"RTICGEN_TARGET":  getenv("RTICGEN_TARGET", ""),

		// Build tags used when loading the device package.
		"RTICGEN_TAGS": getenv("RTICGEN_TAGS", "tinygo,riscv"),
	}
}

func (e Env) Print(w io.Writer) {
	for _, kv := range e.List() {
		fmt.Fprintln(w, "set "+kv)
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

// List returns the environment as sorted KEY=value pairs.
func (e Env) List() []string {
	var result []string
	for key, value := range e {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	slices.Sort(result)
	return result
}

func getenv(key, _default string) (value string) {
	value = os.Getenv(key)
	if len(value) == 0 {
		value = _default
	}
	return value
}
