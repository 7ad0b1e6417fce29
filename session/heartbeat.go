package session

import "holivault.dev/core/wire"

// Default heartbeat cadence (component C7).
const (
	DefaultHeartbeatPeriod  = 5000  // ms
	DefaultHeartbeatTimeout = 20000 // ms
)

// heartbeatKeeper sends periodic pings and watches for a silent peer. It
// never sees wall-clock time directly; the host drives it by calling Tick
// with its own notion of now in milliseconds.
type heartbeatKeeper struct {
	periodMS  int64
	timeoutMS int64

	lastPingSentMS int64
	lastPongMS     int64
	started        bool
}

func newHeartbeatKeeper(periodMS, timeoutMS int64) *heartbeatKeeper {
	return &heartbeatKeeper{periodMS: periodMS, timeoutMS: timeoutMS}
}

// tick returns a Ping frame to send if the period has elapsed, and reports
// whether the peer has gone silent past the timeout.
func (h *heartbeatKeeper) tick(nowMS int64) (ping *wire.Frame, timedOut bool) {
	if !h.started {
		h.started = true
		h.lastPongMS = nowMS
		h.lastPingSentMS = nowMS - h.periodMS // fire a ping on the first tick
	}
	if nowMS-h.lastPongMS > h.timeoutMS {
		return nil, true
	}
	if nowMS-h.lastPingSentMS >= h.periodMS {
		h.lastPingSentMS = nowMS
		payload := wire.EncodeHeartbeat(wire.Heartbeat{TimestampMS: uint64(nowMS), HasTimestamp: true})
		return &wire.Frame{Type: wire.TypePing, Payload: payload}, false
	}
	return nil, false
}

// onPing records liveness and returns the Pong to echo back.
func (h *heartbeatKeeper) onPing(nowMS int64, hb wire.Heartbeat) *wire.Frame {
	h.lastPongMS = nowMS
	payload := wire.EncodeHeartbeat(hb)
	return &wire.Frame{Type: wire.TypePong, Payload: payload}
}

// onPong records liveness from an echoed timestamp.
func (h *heartbeatKeeper) onPong(nowMS int64) {
	h.lastPongMS = nowMS
}
