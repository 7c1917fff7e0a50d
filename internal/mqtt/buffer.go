package mqtt

import "log"

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ring is a fixed-capacity FIFO that stores messages while the broker is
// unreachable; when full, the oldest message is dropped. Not safe for
// concurrent use — the publisher synchronizes around it.
type ring struct {
	buf     []queuedMsg
	start   int // oldest message
	count   int
	dropped bool // true if any message was dropped since last drain
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]queuedMsg, capacity)}
}

func (r *ring) add(msg queuedMsg) {
	if r.count == len(r.buf) {
		if !r.dropped {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", len(r.buf))
			r.dropped = true
		}
		r.buf[r.start] = msg
		r.start = (r.start + 1) % len(r.buf)
		return
	}
	r.buf[(r.start+r.count)%len(r.buf)] = msg
	r.count++
}

// drain returns the buffered messages oldest-first and empties the ring.
func (r *ring) drain() []queuedMsg {
	if r.count == 0 {
		return nil
	}

	out := make([]queuedMsg, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}

	r.start = 0
	r.count = 0
	r.dropped = false
	return out
}

func (r *ring) len() int {
	return r.count
}
