package control

import "fmt"

// Curve maps a temperature to a target duty-cycle fraction by clamped
// linear interpolation between (StartTemperature, MinDutyCycle) and
// (HighTemperature, MaxDutyCycle). It is pure and total: the division is
// guarded by Config.Validate, which requires StartTemperature to be
// strictly below HighTemperature.
type Curve struct {
	start float64
	high  float64
	min   float64
	max   float64
}

// NewCurve builds a Curve from a validated Config.
func NewCurve(cfg *Config) Curve {
	return Curve{
		start: cfg.StartTemperature,
		high:  cfg.HighTemperature,
		min:   cfg.MinDutyCycle,
		max:   cfg.MaxDutyCycle,
	}
}

// Map returns the duty fraction for the given temperature in °C.
func (c Curve) Map(temperature float64) float64 {
	if temperature <= c.start {
		return c.min
	}
	if temperature >= c.high {
		return c.max
	}
	return c.min + (temperature-c.start)/(c.high-c.start)*(c.max-c.min)
}

// String renders the curve parameters for startup logging.
func (c Curve) String() string {
	return fmt.Sprintf("linear[%.1f°C→%.0f%%, %.1f°C→%.0f%%]",
		c.start, c.min*100, c.high, c.max*100)
}
