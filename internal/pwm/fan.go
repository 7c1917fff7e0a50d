package pwm

// Fan owns the on/off latch around a Writer so the control loop can tell
// actual starts and stops apart from routine duty updates. Duty is always
// written before the output is enabled, so the fan never spins up at a
// stale speed.
type Fan struct {
	w  Writer
	on bool
}

// NewFan wraps a configured Writer. The fan starts latched off.
func NewFan(w Writer) *Fan {
	return &Fan{w: w}
}

// Apply commands the given duty fraction; 0 stops the fan. The returned
// flag reports whether this call actually started or stopped the fan, as
// opposed to adjusting the speed of an already running one.
func (f *Fan) Apply(duty float64) (changed bool, err error) {
	if duty <= 0 {
		return f.stop()
	}
	return f.start(duty)
}

// Running reports whether the output is currently enabled.
func (f *Fan) Running() bool {
	return f.on
}

func (f *Fan) start(duty float64) (bool, error) {
	if err := f.w.SetDuty(duty); err != nil {
		return false, err
	}
	if f.on {
		return false, nil
	}
	if err := f.w.SetEnabled(true); err != nil {
		return false, err
	}
	f.on = true
	return true, nil
}

func (f *Fan) stop() (bool, error) {
	if !f.on {
		return false, nil
	}
	// Zero the duty before disabling so the channel is not left holding a
	// stale speed for the next enable.
	if err := f.w.SetDuty(0); err != nil {
		return false, err
	}
	if err := f.w.SetEnabled(false); err != nil {
		return false, err
	}
	f.on = false
	return true, nil
}
