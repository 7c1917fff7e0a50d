// Package sensor provides temperature sampling with hardware abstraction.
// The real implementation reads a sysfs thermal zone.
// The fake implementation allows testing without hardware.
package sensor

import "errors"

// ErrUnavailable classifies transient read failures. The control loop logs
// and retries on the next tick; sensor errors never reach the state machine.
var ErrUnavailable = errors.New("sensor unavailable")

// DefaultDevice is the SoC thermal zone on most ARM boards.
const DefaultDevice = "/sys/class/thermal/thermal_zone0"

// Reader samples a temperature.
type Reader interface {
	// Read returns the current temperature in degrees Celsius.
	Read() (float64, error)

	// Close releases sensor resources.
	Close() error
}
