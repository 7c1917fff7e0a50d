package pwm

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

const nanosPerSecond = 1_000_000_000

// SysfsWriter drives one channel of a sysfs PWM chip, e.g.
// /sys/class/pwm/pwmchip0. The channel is exported on construction if the
// kernel has not exposed it yet.
type SysfsWriter struct {
	periodPath   string
	dutyPath     string
	polarityPath string
	enablePath   string

	periodNs uint64 // set by Configure
}

// NewSysfsWriter exports the channel if needed and verifies its attribute
// files exist.
func NewSysfsWriter(device string, channel uint) (*SysfsWriter, error) {
	instance := filepath.Join(device, fmt.Sprintf("pwm%d", channel))
	if _, err := os.Stat(instance); err != nil {
		if werr := writeAttr(filepath.Join(device, "export"), strconv.FormatUint(uint64(channel), 10)); werr != nil {
			return nil, fmt.Errorf("export pwm%d: %w", channel, werr)
		}
	}

	w := &SysfsWriter{
		periodPath:   filepath.Join(instance, "period"),
		dutyPath:     filepath.Join(instance, "duty_cycle"),
		polarityPath: filepath.Join(instance, "polarity"),
		enablePath:   filepath.Join(instance, "enable"),
	}
	for _, p := range []string{w.periodPath, w.dutyPath, w.polarityPath, w.enablePath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("pwm channel attribute: %w", err)
		}
	}
	return w, nil
}

// Configure programs the period from the given frequency and sets normal
// polarity. Sysfs periods are in nanoseconds.
func (w *SysfsWriter) Configure(frequencyHz uint) error {
	if frequencyHz == 0 {
		return fmt.Errorf("pwm frequency must be positive")
	}
	periodNs := uint64(nanosPerSecond / frequencyHz)
	if err := writeAttr(w.periodPath, strconv.FormatUint(periodNs, 10)); err != nil {
		return fmt.Errorf("set period: %w", err)
	}
	if err := writeAttr(w.polarityPath, "normal"); err != nil {
		return fmt.Errorf("set polarity: %w", err)
	}
	w.periodNs = periodNs
	return nil
}

// SetDuty programs the active time as a fraction of the period.
func (w *SysfsWriter) SetDuty(fraction float64) error {
	if w.periodNs == 0 {
		return fmt.Errorf("pwm channel not configured")
	}
	fraction = math.Max(0, math.Min(1, fraction))
	dutyNs := uint64(math.Round(fraction * float64(w.periodNs)))
	if err := writeAttr(w.dutyPath, strconv.FormatUint(dutyNs, 10)); err != nil {
		return fmt.Errorf("%w: set duty_cycle: %v", ErrUnavailable, err)
	}
	return nil
}

// SetEnabled switches the output on or off.
func (w *SysfsWriter) SetEnabled(on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	if err := writeAttr(w.enablePath, v); err != nil {
		return fmt.Errorf("%w: set enable: %v", ErrUnavailable, err)
	}
	return nil
}

// Close leaves the channel exported; disabling on shutdown is the control
// loop's decision, not the writer's.
func (w *SysfsWriter) Close() error {
	return nil
}

func writeAttr(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
