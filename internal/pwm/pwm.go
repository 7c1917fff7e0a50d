// Package pwm drives a fan through a Linux sysfs PWM chip.
// The real implementation writes the chip's sysfs attribute files.
// The fake implementation allows testing without hardware.
package pwm

import "errors"

// ErrUnavailable classifies transient write failures. The control loop logs
// and retries on the next tick.
var ErrUnavailable = errors.New("actuator unavailable")

// DefaultDevice is the first PWM chip exposed by the kernel.
const DefaultDevice = "/sys/class/pwm/pwmchip0"

// Writer commands a single PWM channel.
type Writer interface {
	// Configure programs the PWM period from the given frequency and
	// sets normal polarity. Must be called once before SetDuty.
	Configure(frequencyHz uint) error

	// SetDuty programs the active time as a fraction of the period,
	// clamped to [0, 1].
	SetDuty(fraction float64) error

	// SetEnabled switches the PWM output on or off.
	SetEnabled(on bool) error

	// Close releases the channel.
	Close() error
}
