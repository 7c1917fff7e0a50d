//go:build linux

package tach

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOReader counts tachometer pulses on a GPIO line using kernel edge
// events. Open-collector tach wires need the internal pull-up.
type GPIOReader struct {
	pulses atomic.Uint64

	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	meter *Meter
}

// NewGPIOReader requests the tach pin with falling-edge detection.
func NewGPIOReader(pin int) (*GPIOReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &GPIOReader{
		chip:  chip,
		meter: NewMeter(PulsesPerRevolution, time.Now()),
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(r.onEdge))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request tach pin %d: %w", pin, err)
	}
	r.line = line

	return r, nil
}

// onEdge runs on the gpiocdev event goroutine; it only touches the atomic
// counter.
func (r *GPIOReader) onEdge(gpiocdev.LineEvent) {
	r.pulses.Add(1)
}

// RPM returns the average speed since the previous call.
func (r *GPIOReader) RPM() (int, error) {
	return r.meter.RPM(r.pulses.Load(), time.Now()), nil
}

// Close releases the line and the chip.
func (r *GPIOReader) Close() error {
	var errs []error
	if r.line != nil {
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tach line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
