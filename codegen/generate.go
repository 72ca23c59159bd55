// Package codegen turns an application graph into the Go source that binds its tasks to one
// backend: resource proxies with their ceilings, interrupt handlers, software task dispatchers
// and the start-up sequence.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"

	"omibyte.io/rtic/analysis"
	"omibyte.io/rtic/app"
	"omibyte.io/rtic/pcp"
	"omibyte.io/rtic/targets"
)

const DefaultOutput = "rtic_gen.go"

type generator struct {
	app      *app.App
	binding  Binding
	target   targets.TargetInfo
	analysis *analysis.Analysis
	device   string
	irqs     map[string]targets.Interrupt
}

// ResolveTarget finds the target named on the command line or, failing that, in the application
// file.
func ResolveTarget(name string, config app.Config) (targets.TargetInfo, error) {
	if name == "" {
		name = config.Target
	}
	if name == "" {
		return targets.TargetInfo{}, ErrNoTarget
	}
	return targets.All().FindByName(name)
}

// Generate returns the formatted source file for an application.
func Generate(ctx context.Context, a *app.App, options Options) ([]byte, error) {
	binding, err := SelectBackend(options.Backend, a.Config)
	if err != nil {
		return nil, err
	}

	target, err := ResolveTarget(options.Target, a.Config)
	if err != nil {
		return nil, err
	}
	if !target.Supports(binding.Name()) {
		return nil, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedTarget, target.Name, binding.Name())
	}

	an, err := analysis.Analyze(a, target.MaxLevel)
	if err != nil {
		return nil, err
	}

	g := &generator{
		app:      a,
		binding:  binding,
		target:   target,
		analysis: an,
		device:   firstNonEmpty(options.Device, a.Config.Device, target.DevicePackage),
		irqs:     map[string]targets.Interrupt{},
	}
	if err := g.resolveInterrupts(); err != nil {
		return nil, err
	}

	if options.Verbose {
		log.Printf("backend %s, target %s, %d tasks, %d resources", binding.Name(), target.Name, len(a.Tasks), len(a.Resources))
	}

	if options.VerifyDevice && g.device != "" {
		env := options.Environment
		if env == nil {
			env = Environment()
		}
		if err := VerifyDevice(ctx, g.device, g.deviceNames(), env); err != nil {
			return nil, err
		}
	}

	filename := options.Output
	if filename == "" {
		filename = DefaultOutput
	}
	src := g.emit()
	buf, err := imports.Process(filename, src, &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, fmt.Errorf("error formatting %s: %w", filename, err)
	}
	return buf, nil
}

// resolveInterrupts looks up every declared dispatcher and every bound interrupt in the target
// catalogue.
func (g *generator) resolveInterrupts() error {
	var errs []error
	for _, name := range g.deviceNames() {
		irq, err := g.target.Interrupt(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.irqs[name] = irq
	}
	return errors.Join(errs...)
}

// deviceNames returns the declared dispatchers followed by the bound interrupts.
func (g *generator) deviceNames() []string {
	names := append([]string(nil), g.app.Config.Dispatchers...)
	for _, t := range g.app.TasksOf(app.Hardware) {
		names = append(names, t.Binds)
	}
	return names
}

// sources returns the interrupts Start programs, dispatchers first.
func (g *generator) sources() []source {
	var result []source
	for _, p := range g.analysis.Priorities() {
		result = append(result, source{irq: g.irqs[g.analysis.Dispatchers[p]], priority: p})
	}
	for _, t := range g.app.TasksOf(app.Hardware) {
		result = append(result, source{irq: g.irqs[t.Binds], priority: t.Priority})
	}
	return result
}

func (g *generator) emit() []byte {
	var w strings.Builder

	fmt.Fprintln(&w, "// Code generated by rticgen. DO NOT EDIT.")
	fmt.Fprintln(&w)
	if c := g.binding.BuildConstraint(); c != "" {
		fmt.Fprintf(&w, "//go:build %s\n\n", c)
	}
	fmt.Fprintf(&w, "package %s\n\n", g.app.Config.Package)

	fmt.Fprintln(&w, "import (")
	if g.device != "" {
		fmt.Fprintf(&w, "device %q\n", g.device)
	}
	fmt.Fprintf(&w, "backend %q\n", g.binding.ImportPath())
	fmt.Fprintln(&w, `"omibyte.io/rtic/pcp"`)
	fmt.Fprintln(&w, ")")
	fmt.Fprintln(&w)

	fmt.Fprintf(&w, "// rtic is the %s backend shared by every task.\n", g.binding.Name())
	fmt.Fprintf(&w, "var rtic = %s\n\n", g.binding.Constructor(g.target))

	g.writeInterrupts(&w)
	g.writeDeviceChecks(&w)
	g.writeAsyncLimit(&w)
	g.writeResources(&w)
	g.writeHardwareTasks(&w)
	g.writeDispatchers(&w)
	g.writeStart(&w)

	return []byte(w.String())
}

type source struct {
	irq      targets.Interrupt
	priority pcp.Level
}

func irqConst(irq targets.Interrupt) string {
	return "irq" + irq.Name
}

func handlerName(irq targets.Interrupt) string {
	return "rtic" + irq.Name + "Handler"
}

func dispatcherName(priority pcp.Level) string {
	return fmt.Sprintf("rticDispatcher%d", priority)
}

func storageName(resource string) string {
	return "rtic" + exported(resource)
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

func (g *generator) writeInterrupts(w *strings.Builder) {
	sources := g.sources()
	if len(sources) == 0 {
		return
	}
	fmt.Fprintf(w, "// Interrupt numbers from the %s catalogue.\n", g.target.Name)
	fmt.Fprintln(w, "const (")
	for _, s := range sources {
		fmt.Fprintf(w, "%s pcp.Interrupt = %d\n", irqConst(s.irq), s.irq.Number)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)
}

// writeDeviceChecks makes the build fail when the device package lacks an interrupt.
func (g *generator) writeDeviceChecks(w *strings.Builder) {
	if g.device == "" {
		return
	}
	fmt.Fprintf(w, "// Every interrupt used must be declared by %s.\n", path.Base(g.device))
	fmt.Fprintln(w, "var (")
	for _, name := range g.deviceNames() {
		fmt.Fprintf(w, "_ = device.%s\n", name)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)
}

func (g *generator) writeAsyncLimit(w *strings.Builder) {
	fmt.Fprintln(w, "// RTIC_ASYNC_MAX_LOGICAL_PRIO is the highest priority async drivers may use.")
	fmt.Fprintf(w, "const RTIC_ASYNC_MAX_LOGICAL_PRIO pcp.Level = %d\n\n", g.analysis.MaxAsyncPriority)
	fmt.Fprintln(w, "func init() {")
	fmt.Fprintln(w, "pcp.AsyncMaxLogicalPriority = RTIC_ASYNC_MAX_LOGICAL_PRIO")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
}

func (g *generator) writeResources(w *strings.Builder) {
	if len(g.app.Resources) == 0 {
		return
	}

	fmt.Fprintln(w, "var (")
	for _, r := range g.app.Resources {
		if r.Init != "" {
			fmt.Fprintf(w, "%s %s = %s\n", storageName(r.Name), r.Type, r.Init)
		} else {
			fmt.Fprintf(w, "%s %s\n", storageName(r.Name), r.Type)
		}
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "// Resource ceilings, the highest priority of any accessor.")
	fmt.Fprintln(w, "const (")
	for _, r := range g.app.Resources {
		fmt.Fprintf(w, "%sCeiling pcp.Level = %d\n", r.Name, g.analysis.Ceilings[r.Name])
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "var (")
	for _, r := range g.app.Resources {
		if g.analysis.IsExclusive(r.Name) {
			fmt.Fprintf(w, "// %s is only used by %s.\n", r.Name, r.Accessors[0])
		}
		fmt.Fprintf(w, "%s = pcp.NewMutex(rtic, &%s, %sCeiling)\n", r.Name, storageName(r.Name), r.Name)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)
}

func (g *generator) writeHandler(w *strings.Builder, irq targets.Interrupt, doc, body string) {
	fmt.Fprintf(w, "// %s %s\n", handlerName(irq), doc)
	if pragma := g.binding.HandlerPragma(irq); pragma != "" {
		fmt.Fprintln(w, pragma)
	}
	fmt.Fprintf(w, "func %s() {\n", handlerName(irq))
	fmt.Fprintln(w, body)
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
}

func (g *generator) writeHardwareTasks(w *strings.Builder) {
	for _, t := range g.app.TasksOf(app.Hardware) {
		irq := g.irqs[t.Binds]
		g.writeHandler(w, irq,
			fmt.Sprintf("runs %s at priority %d.", t.Name, t.Priority),
			fmt.Sprintf("rtic.Run(%d, %s)", t.Priority, t.HandlerName()))
	}
}

func (g *generator) writeDispatchers(w *strings.Builder) {
	priorities := g.analysis.Priorities()
	if len(priorities) == 0 {
		return
	}

	fmt.Fprintln(w, "var (")
	for _, p := range priorities {
		fmt.Fprintf(w, "%s *pcp.Dispatcher[%s]\n", dispatcherName(p), g.binding.BackendType())
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)

	software := g.app.TasksOf(app.Software)
	for _, p := range priorities {
		irq := g.irqs[g.analysis.Dispatchers[p]]
		g.writeHandler(w, irq,
			fmt.Sprintf("dispatches the software tasks at priority %d.", p),
			dispatcherName(p)+".Entry()")

		index := 0
		for _, t := range software {
			if t.Priority != p {
				continue
			}
			fmt.Fprintf(w, "// Spawn%s makes %s ready to run at priority %d.\n", exported(t.Name), t.Name, p)
			fmt.Fprintf(w, "func Spawn%s() error {\n", exported(t.Name))
			fmt.Fprintf(w, "return %s.Spawn(%d)\n", dispatcherName(p), index)
			fmt.Fprintln(w, "}")
			fmt.Fprintln(w)
			index++
		}
	}

	fmt.Fprintln(w, "func init() {")
	for _, p := range priorities {
		var handlers []string
		for _, t := range software {
			if t.Priority == p {
				handlers = append(handlers, t.HandlerName())
			}
		}
		irq := g.irqs[g.analysis.Dispatchers[p]]
		fmt.Fprintf(w, "%s = pcp.NewDispatcher(rtic, %s, %d, %s)\n", dispatcherName(p), irqConst(irq), p, strings.Join(handlers, ", "))
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
}

func (g *generator) writeStart(w *strings.Builder) {
	fmt.Fprintln(w, "// Start checks the stack, programs every interrupt with all tasks held back, runs setup and")
	if _, ok := g.app.IdleTask(); ok {
		fmt.Fprintln(w, "// then lets tasks run. It returns when the idle task returns.")
	} else {
		fmt.Fprintln(w, "// then lets tasks run.")
	}
	fmt.Fprintln(w, "func Start(setup func()) {")
	for _, stmt := range g.binding.StackGuard() {
		fmt.Fprintln(w, stmt)
	}
	fmt.Fprintln(w)

	for _, stmt := range g.binding.MaskInterrupts() {
		fmt.Fprintln(w, stmt)
	}
	for _, s := range g.sources() {
		if stmt := g.binding.RegisterHandler(irqConst(s.irq), handlerName(s.irq)); stmt != "" {
			fmt.Fprintln(w, stmt)
		}
	}
	for _, s := range g.sources() {
		fmt.Fprintf(w, "rtic.Enable(%s, %d)\n", irqConst(s.irq), s.priority)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "if setup != nil {")
	fmt.Fprintln(w, "setup()")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)

	for _, stmt := range g.binding.UnmaskInterrupts() {
		fmt.Fprintln(w, stmt)
	}

	if idle, ok := g.app.IdleTask(); ok {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s()\n", idle.HandlerName())
	}
	fmt.Fprintln(w, "}")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
