package control

// absoluteZero primes the previous-sample memory so the first real sample
// is always treated as warmer than its predecessor and evaluated from Off.
const absoluteZero = -273.15

// Mode identifies the state the controller is in.
type Mode string

const (
	// ModeOff commands duty 0; the fan is stopped.
	ModeOff Mode = "OFF"
	// ModeFunction tracks rising temperature live along the curve.
	ModeFunction Mode = "FUNCTION"
	// ModeKeep holds a frozen duty cycle while temperature is flat or
	// falling, within the lag window, then decays it.
	ModeKeep Mode = "KEEP"
	// ModeForceMax commands maximum duty for one tick after the keep
	// counter expires, bounding the time spent throttled at a held level.
	ModeForceMax Mode = "FORCE_MAX"
)

// hold is the payload Keep carries: the frozen temperature/duty pair and
// the two tick counters. It is zeroed whenever the controller leaves the
// holding pattern so a stale pair cannot leak into the next Keep episode.
type hold struct {
	temperature float64 // Tk
	duty        float64 // Pk, always Curve.Map(Tk)
	lag         int     // non-rising ticks since Keep was (re)entered
	held        int     // consecutive ticks spent holding
}

// Output is what one tick decided: the mode after the transition and the
// duty fraction to command. Off always commands 0 and ForceMax always
// commands MaxDutyCycle.
type Output struct {
	Mode Mode
	Duty float64
}

// Running reports whether the fan should be spinning at all.
func (o Output) Running() bool {
	return o.Duty > 0
}

// Controller consumes successive temperature samples and emits the duty
// cycle to apply on each tick. It is exclusively owned by the sampling
// loop: Step must be called exactly once per tick and is not safe for
// concurrent use. Step never fails and never blocks — invalid
// configurations are rejected by New, transient I/O faults belong to the
// collaborators around the loop.
type Controller struct {
	cfg      *Config
	curve    Curve
	mode     Mode
	lastTemp float64
	duty     float64
	hold     hold
}

// New constructs a Controller in Off with zeroed counters. It returns an
// error if the configuration violates any control-law constraint.
func New(cfg *Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:      cfg,
		curve:    NewCurve(cfg),
		mode:     ModeOff,
		lastTemp: absoluteZero,
	}, nil
}

// Curve returns the temperature→duty mapping the controller follows.
func (c *Controller) Curve() Curve {
	return c.curve
}

// Config returns a copy of the control-law parameters.
func (c *Controller) Config() Config {
	return *c.cfg
}

// Mode returns the current state-machine state.
func (c *Controller) Mode() Mode {
	return c.mode
}

// LastTemperature returns the most recent sample, in °C.
func (c *Controller) LastTemperature() float64 {
	return c.lastTemp
}

// Step consumes one temperature sample (°C) and returns the duty cycle to
// command for this tick.
func (c *Controller) Step(temperature float64) Output {
	switch c.mode {
	case ModeOff:
		if temperature > c.cfg.StartTemperature {
			c.mode = ModeFunction
			c.duty = c.curve.Map(temperature)
		} else {
			c.duty = 0
		}

	case ModeFunction:
		if temperature > c.lastTemp {
			c.duty = c.curve.Map(temperature)
		} else {
			// Freeze the last rising point, so the commanded duty
			// does not change on the tick that enters Keep.
			c.enterKeep(c.lastTemp)
		}

	case ModeKeep:
		c.stepKeep(temperature)

	case ModeForceMax:
		if temperature > c.lastTemp {
			c.mode = ModeFunction
			c.duty = c.curve.Map(temperature)
		} else {
			c.enterKeep(temperature)
		}
	}

	c.lastTemp = temperature
	return Output{Mode: c.mode, Duty: c.duty}
}

// stepKeep evaluates one tick inside the holding pattern.
func (c *Controller) stepKeep(temperature float64) {
	if temperature > c.lastTemp {
		// Temperature is rising again: back to tracking it live.
		c.mode = ModeFunction
		c.duty = c.curve.Map(temperature)
		c.hold = hold{}
		return
	}

	c.hold.lag++
	if c.hold.lag > c.cfg.LagTimeCycle {
		if temperature < c.cfg.StopTemperature {
			// Out of the lag window and cold enough to stop.
			c.mode = ModeOff
			c.duty = 0
			c.hold = hold{}
			return
		}
		// Out of the lag window but still warm: relax the held point
		// toward the falling temperature, halving the gap each tick.
		c.hold.temperature = (c.hold.temperature + temperature) / 2
		c.hold.duty = c.curve.Map(c.hold.temperature)
	}
	c.duty = c.hold.duty

	// Counted only on ticks that remain in the holding pattern; a tick
	// that resolved to Off or Function above never gets here.
	c.hold.held++
	if c.hold.held >= c.cfg.MaxSpeedTimeCycle {
		c.mode = ModeForceMax
		c.duty = c.cfg.MaxDutyCycle
		c.hold = hold{}
	}
}

// enterKeep freezes the given temperature and its curve value and resets
// both counters.
func (c *Controller) enterKeep(temperature float64) {
	c.mode = ModeKeep
	c.hold = hold{
		temperature: temperature,
		duty:        c.curve.Map(temperature),
	}
	c.duty = c.hold.duty
}

// Prime forces the controller into Keep at the given temperature,
// commanding the curve value for it. It is used once at startup to spin
// the fan regardless of the current temperature; on a cold machine the
// normal lag/decay path stops it again within LagTimeCycle ticks.
func (c *Controller) Prime(temperature float64) Output {
	c.enterKeep(temperature)
	c.lastTemp = temperature
	return Output{Mode: c.mode, Duty: c.duty}
}
