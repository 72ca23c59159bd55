package codegen

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/tools/go/packages"
)

// VerifyDevice loads the device package with the build tags of env and checks that it declares
// every name.
func VerifyDevice(ctx context.Context, path string, names []string, env Env) error {
	config := &packages.Config{
		Mode:    packages.NeedName | packages.NeedTypes,
		Context: ctx,
		Env:     append(os.Environ(), env.List()...),
	}
	if tags := env.Value("RTICGEN_TAGS"); tags != "" {
		config.BuildFlags = []string{"-tags=" + tags}
	}

	pkgs, err := packages.Load(config, path)
	if err != nil {
		return err
	}
	if len(pkgs) != 1 {
		return fmt.Errorf("%s: expected one package, found %d", path, len(pkgs))
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		var errs []error
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
		return errors.Join(errs...)
	}

	var errs []error
	for _, name := range names {
		if pkg.Types.Scope().Lookup(name) == nil {
			errs = append(errs, fmt.Errorf("%w: %s.%s", ErrMissingInterrupt, pkg.Name, name))
		}
	}
	return errors.Join(errs...)
}
