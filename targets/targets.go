// Package targets is the catalogue of supported chips: the backends each one can run, its
// priority range, the CLIC location and the interrupt vector names.
package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/rtic/pcp"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var (
	ErrTargetNotFound    = errors.New("target not found")
	ErrInterruptNotFound = errors.New("interrupt not found")
)

func All() Targets {
	return targets
}

type Targets []TargetInfo

type TargetInfo struct {
	Name          string      `yaml:"name"`
	DevicePackage string      `yaml:"devicePackage"`
	Backends      []string    `yaml:"backends"`
	MaxLevel      pcp.Level   `yaml:"maxLevel"`
	ClicBase      uint64      `yaml:"clicBase"`
	Sources       int         `yaml:"sources"`
	Interrupts    []Interrupt `yaml:"interrupts"`
}

type Interrupt struct {
	Name   string        `yaml:"name"`
	Number pcp.Interrupt `yaml:"number"`
}

func (t TargetInfo) Supports(backend string) bool {
	return slices.Contains(t.Backends, backend)
}

func (t TargetInfo) Interrupt(name string) (Interrupt, error) {
	i := slices.IndexFunc(t.Interrupts, func(irq Interrupt) bool {
		return irq.Name == name
	})
	if i < 0 {
		return Interrupt{}, fmt.Errorf("%w: %s on %s", ErrInterruptNotFound, name, t.Name)
	}
	return t.Interrupts[i], nil
}

func (t Targets) FindByName(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Name == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: %s", ErrTargetNotFound, name)
}

func (t Targets) Names() []string {
	names := make([]string, len(t))
	for i, target := range t {
		names[i] = target.Name
	}
	slices.Sort(names)
	return names
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
