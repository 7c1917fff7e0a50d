package pwm

// FakeWriter records PWM commands for test assertions.
type FakeWriter struct {
	// ConfiguredHz records the frequency passed to Configure.
	ConfiguredHz uint

	// Duties contains every fraction passed to SetDuty, in order.
	Duties []float64

	// Enables contains every value passed to SetEnabled, in order.
	Enables []bool

	// ConfigureError, DutyError and EnableError, if set, are returned by
	// the corresponding method.
	ConfigureError error
	DutyError      error
	EnableError    error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWriter creates a FakeWriter for testing.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Configure records the frequency.
func (f *FakeWriter) Configure(frequencyHz uint) error {
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	f.ConfiguredHz = frequencyHz
	return nil
}

// SetDuty records the fraction.
func (f *FakeWriter) SetDuty(fraction float64) error {
	if f.DutyError != nil {
		return f.DutyError
	}
	f.Duties = append(f.Duties, fraction)
	return nil
}

// SetEnabled records the switch.
func (f *FakeWriter) SetEnabled(on bool) error {
	if f.EnableError != nil {
		return f.EnableError
	}
	f.Enables = append(f.Enables, on)
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// LastDuty returns the most recent duty fraction, or 0 when none was set.
func (f *FakeWriter) LastDuty() float64 {
	if len(f.Duties) == 0 {
		return 0
	}
	return f.Duties[len(f.Duties)-1]
}
