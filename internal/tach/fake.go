package tach

// FakeReader is a test double that returns scripted RPM readings.
type FakeReader struct {
	// Readings contains scripted RPM values.
	// Each call to RPM() consumes the next one.
	Readings []int

	// index tracks current position in Readings
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by RPM()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given readings.
func NewFakeReader(readings ...int) *FakeReader {
	return &FakeReader{Readings: readings}
}

// RPM returns the next scripted reading.
// If readings are exhausted, returns the last one repeatedly.
func (f *FakeReader) RPM() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Readings) == 0 {
		return 0, nil
	}

	rpm := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}

	return rpm, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
