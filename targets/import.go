package targets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/rtic/pcp"
	"omibyte.io/rtic/targets/svd"
)

var (
	ErrNoInterrupts     = errors.New("device declares no interrupts")
	ErrInterruptNumbers = errors.New("conflicting interrupt numbers")
)

// FromSVD builds a catalogue entry from a device description. The CLIC base is taken from a
// peripheral named CLIC when the description has one.
func FromSVD(r io.Reader, backends []string) (TargetInfo, error) {
	device, err := svd.Decode(r)
	if err != nil {
		return TargetInfo{}, err
	}

	name := strings.ToLower(device.Name)
	target := TargetInfo{
		Name:          name,
		DevicePackage: "device/" + name,
		Backends:      backends,
		MaxLevel:      255,
	}
	if bits := device.CPU.PriorityBits; bits > 0 && bits < 8 {
		target.MaxLevel = pcp.Level(1<<bits - 1)
	}
	if clic, ok := device.Find("CLIC"); ok {
		target.ClicBase = uint64(clic.BaseAddress)
	}

	numbers := map[string]svd.Integer{}
	for _, p := range device.Peripherals {
		for _, irq := range p.Interrupts {
			if n, ok := numbers[irq.Name]; ok {
				if n != irq.Value {
					return TargetInfo{}, fmt.Errorf("%w: %s is %d and %d", ErrInterruptNumbers, irq.Name, n, irq.Value)
				}
				continue
			}
			numbers[irq.Name] = irq.Value
			target.Interrupts = append(target.Interrupts, Interrupt{Name: irq.Name, Number: pcp.Interrupt(irq.Value)})
		}
	}
	if len(target.Interrupts) == 0 {
		return TargetInfo{}, fmt.Errorf("%w: %s", ErrNoInterrupts, device.Name)
	}

	slices.SortFunc(target.Interrupts, func(a, b Interrupt) bool {
		return a.Number < b.Number
	})
	target.Sources = int(target.Interrupts[len(target.Interrupts)-1].Number) + 1
	return target, nil
}

// WriteYAML writes t as an entry of the embedded catalogue.
func (t TargetInfo) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode([]TargetInfo{t}); err != nil {
		return err
	}
	return enc.Close()
}
