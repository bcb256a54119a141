package media

import (
	"log/slog"

	"github.com/livekit/protocol/livekit"
	"github.com/pion/webrtc/v4"

	"hoops-broadcast/internal/platform/logger"
	"hoops-broadcast/internal/platform/metrics"
	"hoops-broadcast/internal/state"
)

// Bridge feeds media session events into the stores.
type Bridge struct {
	stores  *state.Stores
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewBridge returns a bridge writing into stores. log and m may be nil.
func NewBridge(stores *state.Stores, log *slog.Logger, m *metrics.Metrics) *Bridge {
	return &Bridge{
		stores:  stores,
		log:     logger.Component(log, "livekit"),
		metrics: m,
	}
}

// Update records the status of session, overridden by signal when set.
func (b *Bridge) Update(session Session, signal SessionState) state.Status {
	status := UpdateConnectionState(b.stores.Connection, session, signal)
	b.metrics.SetChannelStatus(metrics.ChannelLiveKit, string(status))
	b.log.Debug("media session state", "signal", string(signal), "status", string(status))
	return status
}

// Watch records the current state of session and every later change. A
// session without a peer connection is recorded once as disconnected.
func (b *Bridge) Watch(session *PeerSession) {
	b.Update(session, "")
	if session == nil || session.pc == nil {
		return
	}
	session.pc.OnConnectionStateChange(b.peerStateHandler(session))
}

func (b *Bridge) peerStateHandler(session *PeerSession) func(webrtc.PeerConnectionState) {
	return func(s webrtc.PeerConnectionState) {
		b.Update(session, PeerState(s))
	}
}

// Metadata decodes the metadata of p, counting decode failures.
func (b *Bridge) Metadata(p Participant) *Metadata {
	md, malformed := extractMetadata(b.log, p)
	if malformed {
		b.metrics.IncMalformedMetadata()
	}
	return md
}

// Join registers p as a camera source when its metadata classifies it.
func (b *Bridge) Join(p Participant) (state.StreamInfo, bool) {
	info, ok := StreamFromParticipant(p, b.Metadata(p))
	if !ok {
		return state.StreamInfo{}, false
	}
	b.stores.Streams.Upsert(info)
	b.metrics.SetStreamSources(len(b.stores.Streams.List()))
	b.log.Info("source joined",
		"identity", string(info.Identity),
		"phase", string(info.Phase),
		"game", string(info.Game),
		"angle", string(info.Angle),
	)
	return info, true
}

// Leave drops the source with identity.
func (b *Bridge) Leave(identity livekit.ParticipantIdentity) bool {
	removed := b.stores.Streams.Remove(identity)
	if removed {
		b.metrics.SetStreamSources(len(b.stores.Streams.List()))
		b.log.Info("source left", "identity", string(identity))
	}
	return removed
}
