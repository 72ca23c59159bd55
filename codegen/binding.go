package codegen

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/rtic/backend/atalanta"
	"omibyte.io/rtic/backend/critical"
	"omibyte.io/rtic/backend/riscvrt"
	"omibyte.io/rtic/backend/sim"
	"omibyte.io/rtic/targets"
)

// Binding is what the generator needs to know about one backend.
type Binding interface {
	Name() string

	// ImportPath is the package generated code imports as "backend".
	ImportPath() string

	// BackendType is the type of the backend instance in generated code.
	BackendType() string

	// BuildConstraint is the build constraint of generated files, empty for none.
	BuildConstraint() string

	// Constructor is the expression creating the backend instance for target.
	Constructor(target targets.TargetInfo) string

	ParseArgs(args []string) error

	// StackGuard is emitted first in Start.
	StackGuard() []string

	// MaskInterrupts is emitted before sources are programmed.
	MaskInterrupts() []string

	// UnmaskInterrupts is emitted after the user init function returns.
	UnmaskInterrupts() []string

	// HandlerPragma is the directive placed above the handler of irq, empty for none.
	HandlerPragma(irq targets.Interrupt) string

	// RegisterHandler installs a handler from Start, empty when the pragma is enough.
	RegisterHandler(irqConst, handler string) string
}

// hardware holds what the TinyGo RISC-V backends have in common.
type hardware struct {
	name       string
	importPath string
}

func (h hardware) Name() string            { return h.name }
func (h hardware) ImportPath() string      { return h.importPath }
func (h hardware) BackendType() string     { return "*backend.Backend" }
func (h hardware) BuildConstraint() string { return "tinygo && riscv" }

func (h hardware) Constructor(target targets.TargetInfo) string {
	return fmt.Sprintf("backend.Default(%#x, %d)", target.ClicBase, target.Sources)
}

// ParseArgs rejects every argument: no shipped backend takes any.
func (h hardware) ParseArgs(args []string) error {
	return noArgs(h.name, args)
}

func (h hardware) StackGuard() []string {
	return []string{"pcp.GuardStack(rtic)"}
}

func (h hardware) HandlerPragma(irq targets.Interrupt) string {
	return "//export " + irq.Name
}

func (h hardware) RegisterHandler(string, string) string {
	return ""
}

type riscvRTBinding struct {
	hardware
}

func (riscvRTBinding) MaskInterrupts() []string {
	return []string{"rtic.MaskThreshold()"}
}

func (riscvRTBinding) UnmaskInterrupts() []string {
	return []string{"rtic.UnmaskThreshold()", "rtic.GlobalEnable()"}
}

type atalantaBinding struct {
	hardware
}

func (atalantaBinding) StackGuard() []string {
	return []string{"pcp.GuardExecutorStack(rtic)"}
}

func (atalantaBinding) MaskInterrupts() []string {
	return []string{"rtic.ClearInterrupts()", "rtic.GlobalDisable()"}
}

func (atalantaBinding) UnmaskInterrupts() []string {
	return []string{"rtic.SetInterrupts()", "rtic.GlobalEnable()"}
}

type criticalBinding struct {
	hardware
}

func (criticalBinding) MaskInterrupts() []string {
	return []string{"rtic.GlobalDisable()"}
}

func (criticalBinding) UnmaskInterrupts() []string {
	return []string{"rtic.GlobalEnable()"}
}

// simBinding generates applications that run on the host against the simulated machine.
type simBinding struct{}

func (simBinding) Name() string            { return sim.Name }
func (simBinding) ImportPath() string      { return "omibyte.io/rtic/backend/sim" }
func (simBinding) BackendType() string     { return "*backend.Machine" }
func (simBinding) BuildConstraint() string { return "" }

func (simBinding) Constructor(target targets.TargetInfo) string {
	return fmt.Sprintf("backend.New(backend.Config{Sources: %d, MaxLevel: %d, Floor: 1, AutoClear: true})", target.Sources, target.MaxLevel)
}

func (simBinding) ParseArgs(args []string) error {
	return noArgs(sim.Name, args)
}

func (simBinding) StackGuard() []string {
	return []string{"pcp.GuardStack(rtic)"}
}

func (simBinding) MaskInterrupts() []string {
	return []string{"rtic.MaskAll()"}
}

func (simBinding) UnmaskInterrupts() []string {
	return []string{"rtic.UnmaskAll()"}
}

func (simBinding) HandlerPragma(targets.Interrupt) string {
	return ""
}

func (simBinding) RegisterHandler(irqConst, handler string) string {
	return fmt.Sprintf("rtic.Attach(%s, %s)", irqConst, handler)
}

var bindings = map[string]Binding{
	riscvrt.Name:  riscvRTBinding{hardware{riscvrt.Name, "omibyte.io/rtic/backend/riscvrt"}},
	atalanta.Name: atalantaBinding{hardware{atalanta.Name, "omibyte.io/rtic/backend/atalanta"}},
	critical.Name: criticalBinding{hardware{critical.Name, "omibyte.io/rtic/backend/critical"}},
	sim.Name:      simBinding{},
}

// Backends returns the names of every known backend, sorted.
func Backends() []string {
	names := maps.Keys(bindings)
	slices.Sort(names)
	return names
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", ErrBackendArgs, name, args)
	}
	return nil
}
