// Package control contains the fan control law: the temperature to
// duty-cycle curve and the hysteresis state machine that decides, on every
// sampling tick, whether to stop the fan, follow the rising curve, hold a
// previously computed duty cycle, force maximum speed, or decay back toward
// off. This package has NO external dependencies (no sysfs, MQTT, OS, or
// time.Sleep) — it consumes one temperature sample per call and returns the
// duty fraction to command.
package control

import "fmt"

// Config holds the control-law parameters. It is validated once at startup
// and shared by pointer into the Controller; it must not be mutated after
// that.
type Config struct {
	// StopTemperature (T0) is the temperature below which the fan is
	// allowed to stop once the lag window has expired, in °C.
	StopTemperature float64

	// StartTemperature (T1) is the temperature above which the fan
	// starts, in °C. The curve emits MinDutyCycle at or below it.
	StartTemperature float64

	// HighTemperature is the temperature at which the curve reaches
	// MaxDutyCycle, in °C.
	HighTemperature float64

	// MinDutyCycle and MaxDutyCycle bound the commanded duty cycle,
	// as fractions in (0, 1).
	MinDutyCycle float64
	MaxDutyCycle float64

	// LagTimeCycle is how many non-rising ticks Keep tolerates before
	// the held duty cycle starts to decay, in sampling intervals.
	LagTimeCycle int

	// MaxSpeedTimeCycle is how many consecutive holding ticks are
	// tolerated before the controller forces maximum speed, in sampling
	// intervals.
	MaxSpeedTimeCycle int
}

// Validate rejects configurations the state machine is not defined over.
// A Controller must never be constructed from an invalid Config: the
// process refuses to start instead of discovering a broken control law at
// runtime.
func (c *Config) Validate() error {
	if c.StopTemperature >= c.StartTemperature {
		return fmt.Errorf("stop-temperature (%.1f°C) must be below start-temperature (%.1f°C)",
			c.StopTemperature, c.StartTemperature)
	}
	if c.StartTemperature >= c.HighTemperature {
		return fmt.Errorf("start-temperature (%.1f°C) must be below high-temperature (%.1f°C)",
			c.StartTemperature, c.HighTemperature)
	}
	if c.MinDutyCycle <= 0 || c.MinDutyCycle >= 1 {
		return fmt.Errorf("min-duty-cycle (%.2f) must be in (0, 1)", c.MinDutyCycle)
	}
	if c.MaxDutyCycle <= 0 || c.MaxDutyCycle >= 1 {
		return fmt.Errorf("max-duty-cycle (%.2f) must be in (0, 1)", c.MaxDutyCycle)
	}
	if c.MinDutyCycle >= c.MaxDutyCycle {
		return fmt.Errorf("min-duty-cycle (%.2f) must be below max-duty-cycle (%.2f)",
			c.MinDutyCycle, c.MaxDutyCycle)
	}
	if c.LagTimeCycle <= 0 {
		return fmt.Errorf("lag-time-cycle (%d) must be positive", c.LagTimeCycle)
	}
	if c.MaxSpeedTimeCycle <= 0 {
		return fmt.Errorf("max-speed-time-cycle (%d) must be positive", c.MaxSpeedTimeCycle)
	}
	return nil
}
