package app

import (
	"errors"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// reserved are the identifiers the generated file declares or imports.
var reserved = map[string]bool{
	"rtic":                        true,
	"Start":                       true,
	"RTIC_ASYNC_MAX_LOGICAL_PRIO": true,
	"device":                      true,
	"backend":                     true,
	"pcp":                         true,
}

// generated reports whether name can collide with an identifier the generator derives from tasks,
// resources or interrupts.
func generated(name string) bool {
	if reserved[name] {
		return true
	}
	for _, prefix := range []string{"irq", "rtic", "Spawn"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			r, _ := utf8.DecodeRuneInString(rest)
			if rest == "" || unicode.IsUpper(r) || r == '_' || unicode.IsDigit(r) {
				return true
			}
		}
	}
	return strings.HasSuffix(name, "Ceiling") && name != "Ceiling"
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// Validate checks the structure of the graph. Every violation is reported.
func (a *App) Validate() error {
	var errs []error
	report := func(err error) {
		errs = append(errs, err)
	}

	if a.Config.Name == "" {
		report(invalidf("app has no name"))
	}
	if !token.IsIdentifier(a.Config.Package) {
		report(invalidf("package %q is not an identifier", a.Config.Package))
	}

	dispatchers := map[string]bool{}
	for _, d := range a.Config.Dispatchers {
		if dispatchers[d] {
			report(graphErrorf(ErrDuplicate, "dispatcher %s", d))
		}
		dispatchers[d] = true
	}

	tasks := map[string]bool{}
	handlers := map[string]string{}
	spawners := map[string]string{}
	bound := map[string]string{}
	idle := ""
	for _, t := range a.Tasks {
		if !token.IsIdentifier(t.Name) {
			report(invalidf("task name %q is not an identifier", t.Name))
		}
		if tasks[t.Name] {
			report(graphErrorf(ErrDuplicate, "task %s", t.Name))
		}
		tasks[t.Name] = true

		if t.Handler != "" && !token.IsIdentifier(t.Handler) {
			report(invalidf("task %s: handler %q is not an identifier", t.Name, t.Handler))
		}
		if handler := t.HandlerName(); generated(handler) {
			report(graphErrorf(ErrDuplicate, "task %s: handler %s collides with a generated identifier", t.Name, handler))
		} else {
			handlers[handler] = t.Name
		}
		if t.Software {
			spawn := "Spawn" + exported(t.Name)
			if other, ok := spawners[spawn]; ok {
				report(graphErrorf(ErrDuplicate, "tasks %s and %s both generate %s", other, t.Name, spawn))
			}
			spawners[spawn] = t.Name
		}

		kinds := 0
		for _, set := range []bool{t.Binds != "", t.Software, t.Idle} {
			if set {
				kinds++
			}
		}
		if kinds != 1 {
			report(invalidf("task %s must set exactly one of binds, software and idle", t.Name))
			continue
		}

		switch t.Kind() {
		case Idle:
			if idle != "" {
				report(graphErrorf(ErrDuplicate, "idle task %s, %s is already idle", t.Name, idle))
			}
			idle = t.Name
			if t.Priority != 0 {
				report(graphErrorf(ErrPriority, "idle task %s must have priority 0", t.Name))
			}
		case Hardware:
			if other, ok := bound[t.Binds]; ok {
				report(graphErrorf(ErrDuplicate, "interrupt %s bound by %s and %s", t.Binds, other, t.Name))
			}
			bound[t.Binds] = t.Name
			if dispatchers[t.Binds] {
				report(invalidf("task %s binds %s, which is a dispatcher", t.Name, t.Binds))
			}
			fallthrough
		default:
			if t.Priority == 0 {
				report(graphErrorf(ErrPriority, "task %s must have priority 1 or above", t.Name))
			}
		}
	}

	resources := map[string]bool{}
	storage := map[string]string{}
	for _, r := range a.Resources {
		if !token.IsIdentifier(r.Name) {
			report(invalidf("resource name %q is not an identifier", r.Name))
		}
		if resources[r.Name] {
			report(graphErrorf(ErrDuplicate, "resource %s", r.Name))
		}
		resources[r.Name] = true

		switch {
		case generated(r.Name):
			report(graphErrorf(ErrDuplicate, "resource %s collides with a generated identifier", r.Name))
		case tasks[r.Name]:
			report(graphErrorf(ErrDuplicate, "resource %s has the name of a task", r.Name))
		case handlers[r.Name] != "":
			report(graphErrorf(ErrDuplicate, "resource %s has the name of the handler of task %s", r.Name, handlers[r.Name]))
		}
		if r.Name != "" {
			key := exported(r.Name)
			if other, ok := storage[key]; ok && other != r.Name {
				report(graphErrorf(ErrDuplicate, "resources %s and %s share storage rtic%s", other, r.Name, key))
			}
			storage[key] = r.Name
		}

		if r.Type == "" {
			report(invalidf("resource %s has no type", r.Name))
		}
		if len(r.Accessors) == 0 {
			report(invalidf("resource %s has no accessors", r.Name))
		}

		accessors := map[string]bool{}
		for _, name := range r.Accessors {
			if !tasks[name] {
				report(graphErrorf(ErrUnknownTask, "resource %s is accessed by %s", r.Name, name))
			}
			if accessors[name] {
				report(graphErrorf(ErrDuplicate, "resource %s lists accessor %s twice", r.Name, name))
			}
			accessors[name] = true
		}
	}

	return errors.Join(errs...)
}
