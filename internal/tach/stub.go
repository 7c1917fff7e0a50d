//go:build !linux

package tach

import "errors"

// GPIOReader is not available on non-Linux platforms.
type GPIOReader struct{}

// NewGPIOReader returns an error on non-Linux platforms.
func NewGPIOReader(pin int) (*GPIOReader, error) {
	return nil, errors.New("tach: not supported on this platform (requires Linux)")
}

// RPM is not implemented on non-Linux platforms.
func (r *GPIOReader) RPM() (int, error) {
	return 0, errors.New("tach: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *GPIOReader) Close() error {
	return nil
}
