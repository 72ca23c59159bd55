package codegen

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"omibyte.io/rtic/analysis"
	"omibyte.io/rtic/app"
	"omibyte.io/rtic/targets"
)

const blinky = `
app:
  name: blinky
  device: device/atalanta
  backend: riscv-atalanta
  target: atalanta
  dispatchers: [Dma0, Dma1]
tasks:
  - {name: idle, idle: true}
  - {name: tick, priority: 2, binds: Timer0Cmp}
  - {name: uart, priority: 5, binds: Uart}
  - {name: blink, priority: 1, software: true, handler: toggleLed}
resources:
  - {name: counter, type: uint32, accessors: [tick, uart]}
  - {name: led, type: bool, init: "true", accessors: [blink]}
`

const host = `
app:
  name: host
  target: sim
  dispatchers: [Swi0, Swi1]
tasks:
  - {name: timer, priority: 2, binds: Timer}
  - {name: report, priority: 1, software: true}
  - {name: flush, priority: 3, software: true}
  - {name: drain, priority: 3, software: true}
resources:
  - {name: samples, type: "[]int", accessors: [timer, report, flush]}
`

func mustParse(t *testing.T, src string) *app.App {
	t.Helper()
	a, err := app.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// normalize collapses all whitespace so snippets can be matched regardless of alignment.
func normalize(src string) string {
	return strings.Join(strings.Fields(src), " ")
}

func generate(t *testing.T, src string, options Options) string {
	t.Helper()
	out, err := Generate(context.Background(), mustParse(t, src), options)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), DefaultOutput, out, parser.ParseComments); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, out)
	}
	return string(out)
}

func expectSnippets(t *testing.T, out string, snippets ...string) {
	t.Helper()
	normalized := normalize(out)
	for _, snippet := range snippets {
		if !strings.Contains(normalized, normalize(snippet)) {
			t.Errorf("generated source is missing %q:\n%s", snippet, out)
		}
	}
}

func TestGenerateAtalanta(t *testing.T) {
	out := generate(t, blinky, Options{})

	if !strings.HasPrefix(out, "// Code generated by rticgen. DO NOT EDIT.\n") {
		t.Errorf("missing generated header:\n%s", out)
	}
	expectSnippets(t, out,
		"//go:build tinygo && riscv",
		"package main",
		`device "device/atalanta"`,
		`backend "omibyte.io/rtic/backend/atalanta"`,
		"var rtic = backend.Default(0x50000, 64)",
		"irqDma1 pcp.Interrupt = 33",
		"irqTimer0Cmp pcp.Interrupt = 21",
		"irqUart pcp.Interrupt = 16",
		"_ = device.Dma0",
		"_ = device.Dma1",
		"_ = device.Timer0Cmp",
		"const RTIC_ASYNC_MAX_LOGICAL_PRIO pcp.Level = 1",
		"func init() {\npcp.AsyncMaxLogicalPriority = RTIC_ASYNC_MAX_LOGICAL_PRIO\n}",
		"rticCounter uint32",
		"rticLed bool = true",
		"counterCeiling pcp.Level = 5",
		"ledCeiling pcp.Level = 1",
		"counter = pcp.NewMutex(rtic, &rticCounter, counterCeiling)",
		"// led is only used by blink.",
		"//export Timer0Cmp\nfunc rticTimer0CmpHandler() {\nrtic.Run(2, tick)\n}",
		"//export Uart\nfunc rticUartHandler() {\nrtic.Run(5, uart)\n}",
		"rticDispatcher1 *pcp.Dispatcher[*backend.Backend]",
		"//export Dma1\nfunc rticDma1Handler() {\nrticDispatcher1.Entry()\n}",
		"func SpawnBlink() error {\nreturn rticDispatcher1.Spawn(0)\n}",
		"rticDispatcher1 = pcp.NewDispatcher(rtic, irqDma1, 1, toggleLed)",
		`func Start(setup func()) {
			pcp.GuardExecutorStack(rtic)
			rtic.ClearInterrupts()
			rtic.GlobalDisable()
			rtic.Enable(irqDma1, 1)
			rtic.Enable(irqTimer0Cmp, 2)
			rtic.Enable(irqUart, 5)
			if setup != nil {
				setup()
			}
			rtic.SetInterrupts()
			rtic.GlobalEnable()
			idle()
		}`,
	)

	if strings.Contains(out, "irqDma0") {
		t.Error("unused dispatcher Dma0 was programmed")
	}
}

func TestGenerateRiscvRT(t *testing.T) {
	out := generate(t, `
app:
  name: rt
  target: riscv-clic
  backend: riscv-rt
tasks:
  - {name: rx, priority: 3, binds: Uart0}
`, Options{})

	expectSnippets(t, out,
		"pcp.GuardStack(rtic)",
		`backend "omibyte.io/rtic/backend/riscvrt"`,
		`device "device/riscv"`,
		"var rtic = backend.Default(0x2800000, 48)",
		"const RTIC_ASYNC_MAX_LOGICAL_PRIO pcp.Level = 255",
		"pcp.AsyncMaxLogicalPriority = RTIC_ASYNC_MAX_LOGICAL_PRIO",
		`rtic.MaskThreshold()
		rtic.Enable(irqUart0, 3)`,
		`rtic.UnmaskThreshold()
		rtic.GlobalEnable()
		}`,
	)
	if strings.Contains(out, "NewDispatcher") {
		t.Error("dispatcher generated without software tasks")
	}
}

func TestGenerateSim(t *testing.T) {
	out := generate(t, host, Options{Backend: "sim"})

	expectSnippets(t, out,
		`backend "omibyte.io/rtic/backend/sim"`,
		"var rtic = backend.New(backend.Config{Sources: 32, MaxLevel: 7, Floor: 1, AutoClear: true})",
		"samplesCeiling pcp.Level = 3",
		"const RTIC_ASYNC_MAX_LOGICAL_PRIO pcp.Level = 3",
		"rticDispatcher1 *pcp.Dispatcher[*backend.Machine]",
		"rticDispatcher3 *pcp.Dispatcher[*backend.Machine]",
		"func SpawnFlush() error {\nreturn rticDispatcher3.Spawn(0)\n}",
		"func SpawnDrain() error {\nreturn rticDispatcher3.Spawn(1)\n}",
		"func SpawnReport() error {\nreturn rticDispatcher1.Spawn(0)\n}",
		"rticDispatcher1 = pcp.NewDispatcher(rtic, irqSwi0, 1, report)",
		"rticDispatcher3 = pcp.NewDispatcher(rtic, irqSwi1, 3, flush, drain)",
		`rtic.MaskAll()
		rtic.Attach(irqSwi0, rticSwi0Handler)
		rtic.Attach(irqSwi1, rticSwi1Handler)
		rtic.Attach(irqTimer, rticTimerHandler)
		rtic.Enable(irqSwi0, 1)
		rtic.Enable(irqSwi1, 3)
		rtic.Enable(irqTimer, 2)`,
		`rtic.UnmaskAll()
		}`,
	)

	for _, unwanted := range []string{"//go:build", "//export", "device"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("sim output contains %q:\n%s", unwanted, out)
		}
	}
}

func TestGenerateDeviceOverride(t *testing.T) {
	out := generate(t, blinky, Options{Device: "example.com/board/atalanta"})

	expectSnippets(t, out, `device "example.com/board/atalanta"`)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		options Options
		err     error
	}{
		{
			name: "noBackend",
			src:  "app: {name: a, target: sim}\n",
			err:  ErrNoBackend,
		},
		{
			name:    "flagAndFileDisagree",
			src:     blinky,
			options: Options{Backend: "sim"},
			err:     ErrMultipleBackends,
		},
		{
			name:    "commaList",
			src:     "app: {name: a, target: sim}\n",
			options: Options{Backend: "sim,riscv-rt"},
			err:     ErrMultipleBackends,
		},
		{
			name:    "unknownBackend",
			src:     "app: {name: a, target: sim}\n",
			options: Options{Backend: "cortex-m"},
			err:     ErrUnknownBackend,
		},
		{
			name: "backendArgs",
			src:  "app: {name: a, target: sim, backend: sim, backendArgs: [fast]}\n",
			err:  ErrBackendArgs,
		},
		{
			name: "noTarget",
			src:  "app: {name: a, backend: sim}\n",
			err:  ErrNoTarget,
		},
		{
			name: "unknownTarget",
			src:  "app: {name: a, backend: sim, target: esp32}\n",
			err:  targets.ErrTargetNotFound,
		},
		{
			name: "unsupportedTarget",
			src:  "app: {name: a, backend: riscv-rt, target: atalanta}\n",
			err:  ErrUnsupportedTarget,
		},
		{
			name: "priorityAboveTarget",
			src: `
app: {name: a, backend: sim, target: sim}
tasks:
  - {name: t, priority: 9, binds: Timer}
`,
			err: app.ErrPriority,
		},
		{
			name: "unknownInterrupt",
			src: `
app: {name: a, backend: sim, target: sim}
tasks:
  - {name: t, priority: 1, binds: Usb}
`,
			err: targets.ErrInterruptNotFound,
		},
		{
			name: "unknownDispatcher",
			src:  "app: {name: a, backend: sim, target: sim, dispatchers: [Swi9]}\n",
			err:  targets.ErrInterruptNotFound,
		},
		{
			name: "notEnoughDispatchers",
			src: `
app: {name: a, backend: sim, target: sim}
tasks:
  - {name: t, priority: 1, software: true}
`,
			err: analysis.ErrNotEnoughDispatchers,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(context.Background(), mustParse(t, tc.src), tc.options)
			if !errors.Is(err, tc.err) {
				t.Errorf("Generate() error = %v, expected %v", err, tc.err)
			}
		})
	}
}

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		flag     string
		file     string
		expected string
	}{
		{"sim", "", "sim"},
		{"", "riscv-rt", "riscv-rt"},
		{"riscv-atalanta", "riscv-atalanta", "riscv-atalanta"},
		{" critical-section ", "", "critical-section"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			b, err := SelectBackend(tc.flag, app.Config{Backend: tc.file})
			if err != nil {
				t.Fatal(err)
			}
			if b.Name() != tc.expected {
				t.Errorf("SelectBackend() = %s, expected %s", b.Name(), tc.expected)
			}
		})
	}
}

func TestBackends(t *testing.T) {
	expected := "critical-section riscv-atalanta riscv-rt sim"
	if got := strings.Join(Backends(), " "); got != expected {
		t.Errorf("Backends() = %s, expected %s", got, expected)
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("RTICGEN_BACKEND", "sim")
	t.Setenv("RTICGEN_TARGET", "")
	t.Setenv("RTICGEN_TAGS", "")

	env := Environment()

	if env.Value("RTICGEN_BACKEND") != "sim" {
		t.Errorf("RTICGEN_BACKEND = %q, expected sim", env.Value("RTICGEN_BACKEND"))
	}
	if env.Value("RTICGEN_TAGS") != "tinygo,riscv" {
		t.Errorf("RTICGEN_TAGS = %q, expected the default", env.Value("RTICGEN_TAGS"))
	}
	expected := "RTICGEN_BACKEND=sim RTICGEN_TAGS=tinygo,riscv RTICGEN_TARGET="
	if got := strings.Join(env.List(), " "); got != expected {
		t.Errorf("List() = %s, expected %s", got, expected)
	}
}
