// Package svd decodes the parts of a CMSIS-SVD device description needed to build a target
// catalogue entry.
package svd

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Integer is an SVD scaled non-negative integer: decimal, 0x hexadecimal or # binary.
type Integer uint64

func (h *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}

	v = strings.TrimSpace(v)
	base := 10
	switch {
	case strings.HasPrefix(v, "0x"), strings.HasPrefix(v, "0X"):
		v, base = v[2:], 16
	case strings.HasPrefix(v, "#"):
		v, base = v[1:], 2
	}

	value, err := strconv.ParseUint(v, base, 64)
	if err != nil {
		return fmt.Errorf("svd: %s: %w", start.Name.Local, err)
	}
	*h = Integer(value)
	return nil
}

type Device struct {
	Name        string       `xml:"name"`
	Description string       `xml:"description"`
	CPU         CPU          `xml:"cpu"`
	Peripherals []Peripheral `xml:"peripherals>peripheral"`
}

type CPU struct {
	Name string `xml:"name"`

	// PriorityBits is the number of implemented priority bits.
	PriorityBits Integer `xml:"nvicPrioBits"`
}

type Peripheral struct {
	Name        string      `xml:"name"`
	BaseAddress Integer     `xml:"baseAddress"`
	Interrupts  []Interrupt `xml:"interrupt"`
	DerivedFrom string      `xml:"derivedFrom,attr"`
}

type Interrupt struct {
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	Value       Integer `xml:"value"`
}

func Decode(r io.Reader) (*Device, error) {
	var device Device
	if err := xml.NewDecoder(r).Decode(&device); err != nil {
		return nil, fmt.Errorf("svd: %w", err)
	}
	return &device, nil
}

// Find returns the peripheral called name.
func (d *Device) Find(name string) (Peripheral, bool) {
	for _, p := range d.Peripherals {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Peripheral{}, false
}
