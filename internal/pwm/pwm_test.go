package pwm

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writeChip(t *testing.T, channel uint) string {
	t.Helper()
	dir := t.TempDir()
	instance := filepath.Join(dir, "pwm"+strconv.FormatUint(uint64(channel), 10))
	if err := os.Mkdir(instance, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"period", "duty_cycle", "polarity", "enable"} {
		if err := os.WriteFile(filepath.Join(instance, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "export"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func readAttr(t *testing.T, dir, channel, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "pwm"+channel, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSysfsWriterConfigure(t *testing.T) {
	dir := writeChip(t, 0)

	w, err := NewSysfsWriter(dir, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Configure(10000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10 kHz is a 100000 ns period.
	if got := readAttr(t, dir, "0", "period"); got != "100000" {
		t.Errorf("period: expected 100000, got %q", got)
	}
	if got := readAttr(t, dir, "0", "polarity"); got != "normal" {
		t.Errorf("polarity: expected normal, got %q", got)
	}
}

func TestSysfsWriterSetDuty(t *testing.T) {
	dir := writeChip(t, 0)

	w, err := NewSysfsWriter(dir, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Configure(10000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		fraction float64
		want     string
	}{
		{fraction: 0.5, want: "50000"},
		{fraction: 0.9, want: "90000"},
		{fraction: 0, want: "0"},
		{fraction: 1.5, want: "100000"}, // clamped
		{fraction: -0.1, want: "0"},     // clamped
	}
	for _, tt := range tests {
		if err := w.SetDuty(tt.fraction); err != nil {
			t.Fatalf("duty %v: unexpected error: %v", tt.fraction, err)
		}
		if got := readAttr(t, dir, "0", "duty_cycle"); got != tt.want {
			t.Errorf("duty %v: expected %q, got %q", tt.fraction, tt.want, got)
		}
	}
}

func TestSysfsWriterDutyBeforeConfigure(t *testing.T) {
	dir := writeChip(t, 0)

	w, err := NewSysfsWriter(dir, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.SetDuty(0.5); err == nil {
		t.Error("expected error before Configure")
	}
}

func TestSysfsWriterEnable(t *testing.T) {
	dir := writeChip(t, 0)

	w, err := NewSysfsWriter(dir, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.SetEnabled(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAttr(t, dir, "0", "enable"); got != "1" {
		t.Errorf("expected 1, got %q", got)
	}

	if err := w.SetEnabled(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAttr(t, dir, "0", "enable"); got != "0" {
		t.Errorf("expected 0, got %q", got)
	}
}

func TestSysfsWriterMissingChannel(t *testing.T) {
	// A chip with an export file but no pwm3 directory: exporting
	// succeeds but the attributes never appear.
	dir := writeChip(t, 0)

	if _, err := NewSysfsWriter(dir, 3); err == nil {
		t.Error("expected error for channel the chip does not expose")
	}
}

func TestFanLatchSemantics(t *testing.T) {
	w := NewFakeWriter()
	fan := NewFan(w)

	// First non-zero duty starts the fan.
	changed, err := fan.Apply(0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected start to report a change")
	}
	if !fan.Running() {
		t.Error("fan should be running")
	}

	// Adjusting the speed of a running fan is not a change.
	changed, err = fan.Apply(0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("speed adjustment should not report a change")
	}

	// Duty 0 stops it.
	changed, err = fan.Apply(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected stop to report a change")
	}
	if fan.Running() {
		t.Error("fan should be stopped")
	}

	// Stopping a stopped fan is a no-op.
	changed, err = fan.Apply(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("repeated stop should not report a change")
	}

	// Duty writes: 0.5, 0.7, then 0 on stop; enable writes: on then off.
	if len(w.Duties) != 3 || w.Duties[0] != 0.5 || w.Duties[1] != 0.7 || w.Duties[2] != 0 {
		t.Errorf("unexpected duty writes: %v", w.Duties)
	}
	if len(w.Enables) != 2 || !w.Enables[0] || w.Enables[1] {
		t.Errorf("unexpected enable writes: %v", w.Enables)
	}
}

func TestFanStopZeroesDuty(t *testing.T) {
	w := NewFakeWriter()
	fan := NewFan(w)

	if _, err := fan.Apply(0.95); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fan.Apply(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stop must clear the duty so the channel does not hold a stale
	// speed while disabled.
	if got := w.LastDuty(); got != 0 {
		t.Errorf("expected duty 0 after stop, got %v", got)
	}
	if len(w.Enables) != 2 || w.Enables[1] {
		t.Errorf("expected final enable write to be off, got %v", w.Enables)
	}
}

func TestFanDutyWriteFailureKeepsLatch(t *testing.T) {
	w := NewFakeWriter()
	fan := NewFan(w)

	w.DutyError = errors.New("simulated error")
	if _, err := fan.Apply(0.5); err == nil {
		t.Fatal("expected error")
	}
	if fan.Running() {
		t.Error("fan must not latch on after a failed start")
	}
}
