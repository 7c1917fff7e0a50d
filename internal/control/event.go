package control

import "time"

// EventType classifies an externally visible fan transition.
type EventType string

const (
	// EventFanStart fires when the commanded duty goes from 0 to running.
	EventFanStart EventType = "FAN_START"
	// EventFanStop fires when the commanded duty returns to 0.
	EventFanStop EventType = "FAN_STOP"
	// EventForceMax fires when the controller engages maximum speed.
	EventForceMax EventType = "FORCE_MAX"
)

// Event is a fan transition to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature float64 // sample that triggered the transition, °C
	Duty        float64 // commanded duty fraction after the transition
	Mode        Mode
}

// Events derives the externally visible transitions between two consecutive
// tick outputs. Per-tick duty adjustments inside a running state are not
// events; only start, stop and the force-max escape are.
func Events(prev, cur Output, temperature float64, now time.Time) []Event {
	var events []Event

	if !prev.Running() && cur.Running() {
		events = append(events, Event{
			Timestamp:   now,
			Type:        EventFanStart,
			Temperature: temperature,
			Duty:        cur.Duty,
			Mode:        cur.Mode,
		})
	}
	if prev.Running() && !cur.Running() {
		events = append(events, Event{
			Timestamp:   now,
			Type:        EventFanStop,
			Temperature: temperature,
			Duty:        0,
			Mode:        cur.Mode,
		})
	}
	if cur.Mode == ModeForceMax && prev.Mode != ModeForceMax {
		events = append(events, Event{
			Timestamp:   now,
			Type:        EventForceMax,
			Temperature: temperature,
			Duty:        cur.Duty,
			Mode:        cur.Mode,
		})
	}

	return events
}
