package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

const hostApp = `
app:
  name: host
  backend: sim
  target: sim
  dispatchers: [Swi0]
tasks:
  - {name: timer, priority: 2, binds: Timer}
  - {name: report, priority: 1, software: true}
resources:
  - {name: samples, type: "[]int", accessors: [timer, report]}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeApp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(hostApp), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild(t *testing.T) {
	path := writeApp(t)
	output := filepath.Join(filepath.Dir(path), "out.go")

	out, err := execute(t, "build", path, "-o", output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "wrote "+output) {
		t.Errorf("unexpected output: %s", out)
	}

	src, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(src), "// Code generated by rticgen. DO NOT EDIT.") {
		t.Errorf("generated file lacks header:\n%s", src)
	}
	if !strings.Contains(string(src), "func SpawnReport() error") {
		t.Errorf("generated file lacks spawn function:\n%s", src)
	}
}

func TestBuildMissingFile(t *testing.T) {
	if _, err := execute(t, "build", filepath.Join(t.TempDir(), "missing.yaml"), "-o", "-"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("build error = %v, expected a missing file", err)
	}
}

func TestAnalyze(t *testing.T) {
	out, err := execute(t, "analyze", writeApp(t), "--dot=false")
	if err != nil {
		t.Fatal(err)
	}

	normalized := strings.Join(strings.Fields(out), " ")
	for _, want := range []string{
		"host on sim (levels 1-7)",
		"samples 2",
		"priority 1 Swi0",
		"async priority limit: 1",
		"report samples timer",
	} {
		if !strings.Contains(normalized, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeDot(t *testing.T) {
	out, err := execute(t, "analyze", writeApp(t), "--dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `digraph "host" {`) {
		t.Errorf("unexpected dot output:\n%s", out)
	}
}

func TestTargets(t *testing.T) {
	out, err := execute(t, "targets")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"atalanta", "riscv-clic", "sim"} {
		if !strings.Contains(out, name) {
			t.Errorf("targets output missing %s:\n%s", name, out)
		}
	}
}

func TestSVD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.svd")
	src := `<device><name>Board</name><peripherals><peripheral><name>UART</name>
<interrupt><name>Uart</name><value>16</value></interrupt></peripheral></peripherals></device>`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "svd", path, "--backend", "riscv-rt")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"name: board", "devicePackage: device/board", "- riscv-rt", "sources: 17", "name: Uart"} {
		if !strings.Contains(out, want) {
			t.Errorf("svd output missing %q:\n%s", want, out)
		}
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("RTICGEN_TARGET", "atalanta")

	out, err := execute(t, "env")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "set RTICGEN_TARGET=atalanta") {
		t.Errorf("unexpected env output:\n%s", out)
	}
}
