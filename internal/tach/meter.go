package tach

import "time"

// Meter converts a monotonically increasing pulse count into RPM. It keeps
// the count and timestamp of the previous reading, so each call measures
// the average speed over the interval since the last one. Not safe for
// concurrent use — the sampling loop owns it.
type Meter struct {
	pulsesPerRev int
	lastCount    uint64
	lastTime     time.Time
}

// NewMeter creates a Meter. The start time anchors the first interval.
func NewMeter(pulsesPerRev int, start time.Time) *Meter {
	return &Meter{
		pulsesPerRev: pulsesPerRev,
		lastTime:     start,
	}
}

// RPM computes the speed from the pulse count delta since the previous
// call. A zero or negative interval yields 0 rather than dividing by it.
func (m *Meter) RPM(count uint64, now time.Time) int {
	elapsed := now.Sub(m.lastTime)
	delta := count - m.lastCount
	m.lastCount = count
	m.lastTime = now

	if elapsed <= 0 {
		return 0
	}
	revs := float64(delta) / float64(m.pulsesPerRev)
	return int(revs/elapsed.Seconds()*60 + 0.5)
}
