package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/livekit/protocol/livekit"

	"hoops-broadcast/internal/state"
)

// ErrMalformedMetadata marks participant metadata that is not a JSON object.
var ErrMalformedMetadata = errors.New("malformed participant metadata")

// Participant is a remote participant of the media room.
type Participant interface {
	Identity() livekit.ParticipantIdentity
	SID() livekit.ParticipantID
	Metadata() string
	Tracks() []*livekit.TrackInfo
}

type infoParticipant struct {
	info *livekit.ParticipantInfo
}

// ParticipantFromInfo adapts a participant record from the media server.
func ParticipantFromInfo(info *livekit.ParticipantInfo) Participant {
	return infoParticipant{info: info}
}

func (p infoParticipant) Identity() livekit.ParticipantIdentity {
	return livekit.ParticipantIdentity(p.info.GetIdentity())
}

func (p infoParticipant) SID() livekit.ParticipantID {
	return livekit.ParticipantID(p.info.GetSid())
}

func (p infoParticipant) Metadata() string { return p.info.GetMetadata() }

func (p infoParticipant) Tracks() []*livekit.TrackInfo { return p.info.GetTracks() }

// Metadata is the decoded participant metadata. Phase, Game and Angle are
// lifted out of Raw when they are strings.
type Metadata struct {
	Phase state.Phase
	Game  state.Game
	Angle state.Angle
	Raw   map[string]any
}

// ParseMetadata decodes raw. Empty input and JSON null yield nil without
// error; anything else that is not an object wraps ErrMalformedMetadata.
func ParseMetadata(raw string) (*Metadata, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	if m == nil {
		return nil, nil
	}
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	return &Metadata{
		Phase: state.Phase(str("phase")),
		Game:  state.Game(str("game")),
		Angle: state.Angle(str("angle")),
		Raw:   m,
	}, nil
}

// ExtractMetadata returns the decoded metadata of p, or nil when it has none
// or it cannot be decoded. Decode failures are logged to the default logger.
func ExtractMetadata(p Participant) *Metadata {
	md, _ := extractMetadata(slog.Default(), p)
	return md
}

func extractMetadata(log *slog.Logger, p Participant) (md *Metadata, malformed bool) {
	if p == nil {
		return nil, false
	}
	md, err := ParseMetadata(p.Metadata())
	if err != nil {
		log.Error("error parsing metadata",
			"identity", string(p.Identity()),
			"error", err,
		)
		return nil, true
	}
	return md, false
}

// StreamFromParticipant builds the registry entry for a camera participant.
// It reports false when md is nil or names no valid phase. The first video
// and first audio tracks are taken.
func StreamFromParticipant(p Participant, md *Metadata) (state.StreamInfo, bool) {
	if p == nil || md == nil || !md.Phase.Valid() {
		return state.StreamInfo{}, false
	}
	info := state.StreamInfo{
		Identity: p.Identity(),
		SID:      p.SID(),
		Phase:    md.Phase,
		Game:     md.Game,
		Angle:    md.Angle,
	}
	for _, t := range p.Tracks() {
		switch t.GetType() {
		case livekit.TrackType_VIDEO:
			if info.Video == nil {
				info.Video = t
			}
		case livekit.TrackType_AUDIO:
			if info.Audio == nil {
				info.Audio = t
			}
		}
	}
	return info, true
}
