// Package status provides a thread-safe status tracker for the fanctrl
// daemon. It is read by the HTTP handlers and rendered into the MQTT
// system payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/fanctrl/internal/control"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	IntervalMs     int64
	LagCycles      int
	MaxSpeedCycles int
	HeartbeatMs    int64
	Curve          string // rendered control curve
	PWMFrequencyHz uint
	Broker         string
	HTTPAddr       string
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Starts         int
	Stops          int
	ForceMax       int
	SensorErrors   int
	ActuatorErrors int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Temperature   float64
	Duty          float64
	Mode          control.Mode
	RPM           int
	HasSample     bool // false until the first successful sensor read
	Counts        EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Mode:      control.ModeOff,
			Config:    cfg,
		},
		lastHeartbeat: startTime,
	}
}

// Update sets the latest sample and controller output.
// Called from the control loop on every tick.
func (t *Tracker) Update(temperature float64, out control.Output) {
	t.mu.Lock()
	t.snap.Temperature = temperature
	t.snap.Duty = out.Duty
	t.snap.Mode = out.Mode
	t.snap.HasSample = true
	t.mu.Unlock()
}

// SetRPM sets the latest tachometer reading.
func (t *Tracker) SetRPM(rpm int) {
	t.mu.Lock()
	t.snap.RPM = rpm
	t.mu.Unlock()
}

// CountEvent records a published fan event.
func (t *Tracker) CountEvent(typ control.EventType) {
	t.mu.Lock()
	switch typ {
	case control.EventFanStart:
		t.snap.Counts.Starts++
	case control.EventFanStop:
		t.snap.Counts.Stops++
	case control.EventForceMax:
		t.snap.Counts.ForceMax++
	}
	t.mu.Unlock()
}

// CountSensorError records a failed temperature read.
func (t *Tracker) CountSensorError() {
	t.mu.Lock()
	t.snap.Counts.SensorErrors++
	t.mu.Unlock()
}

// CountActuatorError records a failed PWM write.
func (t *Tracker) CountActuatorError() {
	t.mu.Lock()
	t.snap.Counts.ActuatorErrors++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// CheckHeartbeat reports whether the heartbeat interval has elapsed since
// the last heartbeat (or startup), and if so, rearms it. An interval <= 0
// disables heartbeats.
func (t *Tracker) CheckHeartbeat(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.lastHeartbeat) < interval {
		return false
	}
	t.lastHeartbeat = now
	return true
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
