package codegen

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"omibyte.io/rtic/app"
)

// SelectBackend resolves the single backend of an application. Backends can be named on the
// command line, in the application file or both, but they must agree on exactly one.
func SelectBackend(flag string, config app.Config) (Binding, error) {
	var names []string
	for _, list := range []string{flag, config.Backend} {
		for _, name := range strings.Split(list, ",") {
			name = strings.TrimSpace(name)
			if name != "" && !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	switch len(names) {
	case 0:
		return nil, fmt.Errorf("%w: choose one of %s", ErrNoBackend, strings.Join(Backends(), ", "))
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrMultipleBackends, strings.Join(names, ", "))
	}

	binding, ok := bindings[names[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, names[0])
	}
	if err := binding.ParseArgs(config.BackendArgs); err != nil {
		return nil, err
	}
	return binding, nil
}
