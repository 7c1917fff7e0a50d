package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Thermal zones report millidegrees Celsius.
const millidegree = 1000.0

// SysfsReader reads a Linux sysfs thermal zone directory, e.g.
// /sys/class/thermal/thermal_zone0. The zone's `temp` file carries the
// reading in millidegrees; an optional `offset` file is subtracted before
// scaling, matching the kernel's thermal-of offset convention.
type SysfsReader struct {
	tempPath   string
	offsetPath string // empty when the zone has no offset file
}

// NewSysfsReader verifies the zone exposes a temp file and probes for an
// offset file once, at construction.
func NewSysfsReader(device string) (*SysfsReader, error) {
	tempPath := filepath.Join(device, "temp")
	if _, err := os.Stat(tempPath); err != nil {
		return nil, fmt.Errorf("sensor device %s: %w", device, err)
	}

	offsetPath := filepath.Join(device, "offset")
	if _, err := os.Stat(offsetPath); err != nil {
		offsetPath = ""
	}

	return &SysfsReader{
		tempPath:   tempPath,
		offsetPath: offsetPath,
	}, nil
}

// Read returns the zone temperature in degrees Celsius.
func (r *SysfsReader) Read() (float64, error) {
	raw, err := readMillidegrees(r.tempPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var offset int64
	if r.offsetPath != "" {
		offset, err = readMillidegrees(r.offsetPath)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return float64(raw-offset) / millidegree, nil
}

// Close releases sensor resources. Sysfs reads hold no file handles open
// between ticks, so there is nothing to release.
func (r *SysfsReader) Close() error {
	return nil
}

func readMillidegrees(path string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, fmt.Errorf("empty file: %s", path)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
