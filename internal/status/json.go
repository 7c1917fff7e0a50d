package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	TemperatureC  float64      `json:"temperature_c"`
	DutyCycle     float64      `json:"duty_cycle"`
	RPM           int          `json:"rpm,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Starts         int `json:"fan_starts"`
	Stops          int `json:"fan_stops"`
	ForceMax       int `json:"force_max"`
	SensorErrors   int `json:"sensor_errors"`
	ActuatorErrors int `json:"actuator_errors"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	IntervalMs     int64  `json:"interval_ms"`
	LagCycles      int    `json:"lag_time_cycle"`
	MaxSpeedCycles int    `json:"max_speed_time_cycle"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	Curve          string `json:"curve"`
	PWMFrequencyHz uint   `json:"pwm_frequency_hz"`
	Broker         string `json:"broker,omitempty"`
	HTTPAddr       string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Mode:          string(snap.Mode),
		TemperatureC:  round2(snap.Temperature),
		DutyCycle:     round4(snap.Duty),
		RPM:           snap.RPM,
		Ready:         snap.HasSample,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Starts:         snap.Counts.Starts,
			Stops:          snap.Counts.Stops,
			ForceMax:       snap.Counts.ForceMax,
			SensorErrors:   snap.Counts.SensorErrors,
			ActuatorErrors: snap.Counts.ActuatorErrors,
		},
		Config: ConfigJSON{
			IntervalMs:     snap.Config.IntervalMs,
			LagCycles:      snap.Config.LagCycles,
			MaxSpeedCycles: snap.Config.MaxSpeedCycles,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Curve:          snap.Config.Curve,
			PWMFrequencyHz: snap.Config.PWMFrequencyHz,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
