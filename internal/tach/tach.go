// Package tach measures fan speed from a tachometer wire on a GPIO line.
// The real implementation counts edge events via the Linux GPIO character
// device. The fake implementation allows testing without hardware.
package tach

// PulsesPerRevolution is how many tach pulses a standard 4-wire fan emits
// per revolution.
const PulsesPerRevolution = 2

// Reader reports fan speed.
type Reader interface {
	// RPM returns the rotation speed measured since the previous call.
	RPM() (int, error)

	// Close releases GPIO resources.
	Close() error
}
