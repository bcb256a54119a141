package media

import (
	"testing"
	"time"

	"github.com/pion/webrtc/v4"

	"hoops-broadcast/internal/state"
)

type fakeSession SessionState

func (f fakeSession) State() SessionState { return SessionState(f) }

func TestDeriveConnectionStatus(t *testing.T) {
	var nilPeer *PeerSession
	tests := []struct {
		name    string
		session Session
		signal  SessionState
		want    state.Status
	}{
		{"no session", nil, "", state.StatusDisconnected},
		{"no session ignores signal", nil, SessionConnected, state.StatusDisconnected},
		{"typed nil peer", nilPeer, "", state.StatusDisconnected},
		{"signal connecting", fakeSession(SessionConnected), SessionConnecting, state.StatusConnecting},
		{"signal connected", fakeSession(SessionDisconnected), SessionConnected, state.StatusConnected},
		{"signal disconnected", fakeSession(SessionConnected), SessionDisconnected, state.StatusDisconnected},
		{"signal reconnecting", fakeSession(SessionConnected), SessionReconnecting, state.StatusError},
		{"signal signalReconnecting", fakeSession(SessionConnected), SessionSignalReconnecting, state.StatusError},
		{"session connecting", fakeSession(SessionConnecting), "", state.StatusConnecting},
		{"session connected", fakeSession(SessionConnected), "", state.StatusConnected},
		{"session disconnected", fakeSession(SessionDisconnected), "", state.StatusDisconnected},
		{"session reconnecting", fakeSession(SessionReconnecting), "", state.StatusError},
		{"session unknown", fakeSession("weird"), "", state.StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveConnectionStatus(tt.session, tt.signal); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpdateConnectionState_writesMediaChannelOnly(t *testing.T) {
	stores := state.New()
	defer stores.Close()
	stores.Connection.Update(func(c state.ConnectionState) state.ConnectionState {
		return c.WithError("WebSocket connection error")
	})

	got := UpdateConnectionState(stores.Connection, fakeSession(SessionConnected), "")
	if got != state.StatusConnected {
		t.Fatalf("returned %q", got)
	}
	c := stores.Connection.Get()
	if c.LiveKit != state.StatusConnected {
		t.Errorf("livekit = %q, want connected", c.LiveKit)
	}
	if c.WebSocket != state.StatusError || c.ErrorMessage == "" {
		t.Errorf("score channel was modified: %+v", c)
	}

	UpdateConnectionState(stores.Connection, nil, SessionConnected)
	if c := stores.Connection.Get(); c.LiveKit != state.StatusDisconnected {
		t.Errorf("nil session: livekit = %q, want disconnected", c.LiveKit)
	}
}

func TestPeerState(t *testing.T) {
	tests := []struct {
		in   webrtc.PeerConnectionState
		want state.Status
	}{
		{webrtc.PeerConnectionStateNew, state.StatusConnecting},
		{webrtc.PeerConnectionStateConnecting, state.StatusConnecting},
		{webrtc.PeerConnectionStateConnected, state.StatusConnected},
		{webrtc.PeerConnectionStateDisconnected, state.StatusDisconnected},
		{webrtc.PeerConnectionStateClosed, state.StatusDisconnected},
		{webrtc.PeerConnectionStateFailed, state.StatusError},
		{webrtc.PeerConnectionStateUnknown, state.StatusError},
	}
	for _, tt := range tests {
		if got := StatusFor(PeerState(tt.in)); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPeerSession_followsPeerConnection(t *testing.T) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		t.Fatalf("NewPeerConnection: %v", err)
	}
	session := NewPeerSession(pc)

	if got := DeriveConnectionStatus(session, ""); got != state.StatusConnecting {
		t.Errorf("new peer: got %q, want connecting", got)
	}
	if err := pc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := DeriveConnectionStatus(session, ""); got != state.StatusDisconnected {
		t.Errorf("closed peer: got %q, want disconnected", got)
	}
}

func TestBridge_Watch_recordsCurrentState(t *testing.T) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		t.Fatalf("NewPeerConnection: %v", err)
	}
	defer pc.Close()

	stores := state.New()
	defer stores.Close()
	NewBridge(stores, nil, nil).Watch(NewPeerSession(pc))

	if got := stores.Connection.Get().LiveKit; got != state.StatusConnecting {
		t.Errorf("livekit = %q, want connecting", got)
	}
}

func TestBridge_Watch_nilPeer(t *testing.T) {
	stores := state.New()
	defer stores.Close()
	b := NewBridge(stores, nil, nil)

	stores.Connection.Update(func(c state.ConnectionState) state.ConnectionState {
		return c.WithLiveKit(state.StatusConnected)
	})
	b.Watch(&PeerSession{})
	if got := stores.Connection.Get().LiveKit; got != state.StatusDisconnected {
		t.Errorf("empty session: livekit = %q, want disconnected", got)
	}
	b.Watch(nil)
}

func TestBridge_peerStateHandler(t *testing.T) {
	stores := state.New()
	defer stores.Close()
	b := NewBridge(stores, nil, nil)
	handle := b.peerStateHandler(NewPeerSession(nil))

	tests := []struct {
		in   webrtc.PeerConnectionState
		want state.Status
	}{
		{webrtc.PeerConnectionStateConnected, state.StatusConnected},
		{webrtc.PeerConnectionStateFailed, state.StatusError},
		{webrtc.PeerConnectionStateClosed, state.StatusDisconnected},
	}
	for _, tt := range tests {
		handle(tt.in)
		if got := stores.Connection.Get().LiveKit; got != tt.want {
			t.Errorf("%s: livekit = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBridge_Watch_followsClose(t *testing.T) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		t.Fatalf("NewPeerConnection: %v", err)
	}

	stores := state.New()
	defer stores.Close()
	NewBridge(stores, nil, nil).Watch(NewPeerSession(pc))

	if err := pc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for stores.Connection.Get().LiveKit != state.StatusDisconnected {
		if time.Now().After(deadline) {
			t.Fatalf("livekit = %q after close, want disconnected", stores.Connection.Get().LiveKit)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
