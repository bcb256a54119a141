// Package media bridges the real-time media session into the connection
// store and classifies remote participants as camera sources.
package media

import (
	"github.com/pion/webrtc/v4"

	"hoops-broadcast/internal/state"
	"hoops-broadcast/internal/store"
)

// SessionState is the connection state reported by a media session.
type SessionState string

const (
	SessionConnecting         SessionState = "connecting"
	SessionConnected          SessionState = "connected"
	SessionDisconnected       SessionState = "disconnected"
	SessionReconnecting       SessionState = "reconnecting"
	SessionSignalReconnecting SessionState = "signalReconnecting"
)

// Session is a media session handle.
type Session interface {
	State() SessionState
}

var statusTable = map[SessionState]state.Status{
	SessionConnecting:   state.StatusConnecting,
	SessionConnected:    state.StatusConnected,
	SessionDisconnected: state.StatusDisconnected,
}

// StatusFor maps a session state to a channel status. Anything outside the
// table, including the reconnecting states, is an error.
func StatusFor(s SessionState) state.Status {
	if st, ok := statusTable[s]; ok {
		return st
	}
	return state.StatusError
}

// DeriveConnectionStatus returns the channel status for session. Without a
// session the result is always disconnected. A non-empty signal takes
// precedence over the state read from the session.
func DeriveConnectionStatus(session Session, signal SessionState) state.Status {
	if session == nil {
		return state.StatusDisconnected
	}
	if signal != "" {
		return StatusFor(signal)
	}
	return StatusFor(session.State())
}

// UpdateConnectionState writes the derived status into the media channel of
// conn and returns it. The score channel is left alone.
func UpdateConnectionState(conn *store.Store[state.ConnectionState], session Session, signal SessionState) state.Status {
	status := DeriveConnectionStatus(session, signal)
	conn.Update(func(c state.ConnectionState) state.ConnectionState {
		return c.WithLiveKit(status)
	})
	return status
}

// PeerSession adapts a pion peer connection to Session.
type PeerSession struct {
	pc *webrtc.PeerConnection
}

// NewPeerSession wraps pc.
func NewPeerSession(pc *webrtc.PeerConnection) *PeerSession {
	return &PeerSession{pc: pc}
}

// State reads the peer connection state. A nil session reads as disconnected.
func (p *PeerSession) State() SessionState {
	if p == nil || p.pc == nil {
		return SessionDisconnected
	}
	return PeerState(p.pc.ConnectionState())
}

// PeerState translates a pion connection state. New counts as connecting;
// failed and unknown states keep their pion name and so map to error.
func PeerState(s webrtc.PeerConnectionState) SessionState {
	switch s {
	case webrtc.PeerConnectionStateNew, webrtc.PeerConnectionStateConnecting:
		return SessionConnecting
	case webrtc.PeerConnectionStateConnected:
		return SessionConnected
	case webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateClosed:
		return SessionDisconnected
	default:
		return SessionState(s.String())
	}
}
