package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/fanctrl/internal/control"
)

func TestFormatPayload(t *testing.T) {
	event := control.Event{
		Timestamp:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Type:        control.EventFanStart,
		Temperature: 48.51,
		Duty:        0.6234,
		Mode:        control.ModeFunction,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload failed: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded.Fan.Event != "FAN_START" {
		t.Errorf("expected event FAN_START, got %q", decoded.Fan.Event)
	}
	if decoded.Fan.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("expected RFC3339 UTC timestamp, got %q", decoded.Fan.Timestamp)
	}
	if decoded.Fan.TemperatureC != 48.51 {
		t.Errorf("expected temperature 48.51, got %v", decoded.Fan.TemperatureC)
	}
	if decoded.Fan.DutyCycle != 0.6234 {
		t.Errorf("expected duty 0.6234, got %v", decoded.Fan.DutyCycle)
	}
	if decoded.Fan.Mode != "FUNCTION" {
		t.Errorf("expected mode FUNCTION, got %q", decoded.Fan.Mode)
	}
}

func TestFormatPayloadLocalTimeNormalized(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	event := control.Event{
		Timestamp: time.Date(2026, 3, 14, 10, 26, 53, 0, loc),
		Type:      control.EventFanStop,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload failed: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded.Fan.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("expected timestamp converted to UTC, got %q", decoded.Fan.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload failed: %v", err)
	}

	var decoded SystemPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded.System.Event != "SHUTDOWN" {
		t.Errorf("expected event SHUTDOWN, got %q", decoded.System.Event)
	}
	if decoded.System.Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", decoded.System.Reason)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Now(),
		Event:     "HEARTBEAT",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload failed: %v", err)
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if _, ok := raw["system"]["reason"]; ok {
		t.Error("expected empty reason to be omitted from payload")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload failed: %v", err)
	}

	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisherRecordsEvents(t *testing.T) {
	fake := NewFakePublisher()

	event := control.Event{
		Timestamp:   time.Now(),
		Type:        control.EventFanStart,
		Temperature: 42.0,
		Duty:        0.52,
		Mode:        control.ModeFunction,
	}

	if err := fake.Publish(event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(fake.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(fake.Events))
	}
	if fake.Events[0].Type != control.EventFanStart {
		t.Errorf("expected FAN_START, got %v", fake.Events[0].Type)
	}
	if len(fake.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(fake.Payloads))
	}

	var decoded Payload
	if err := json.Unmarshal(fake.Payloads[0], &decoded); err != nil {
		t.Fatalf("recorded payload is not valid JSON: %v", err)
	}
}

func TestFakePublisherError(t *testing.T) {
	fake := NewFakePublisher()
	fake.PublishError = errors.New("broker unreachable")

	err := fake.Publish(control.Event{Type: control.EventFanStop})
	if err == nil {
		t.Fatal("expected error from Publish")
	}

	if len(fake.Events) != 0 {
		t.Errorf("expected no recorded events after error, got %d", len(fake.Events))
	}
}

func TestFakePublisherReset(t *testing.T) {
	fake := NewFakePublisher()
	fake.Publish(control.Event{Type: control.EventFanStart})
	fake.PublishSystem(SystemEvent{Event: "STARTUP"})
	fake.Close()

	fake.Reset()

	if len(fake.Events) != 0 || len(fake.SystemEvents) != 0 {
		t.Error("expected Reset to clear recorded events")
	}
	if fake.Closed {
		t.Error("expected Reset to clear Closed")
	}
}
