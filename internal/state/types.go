// Package state holds the observable application state of the broadcast
// client: channel statuses, the latest score snapshot, known camera sources
// and the current mode/page.
package state

import (
	"encoding/json"
	"fmt"

	"github.com/livekit/protocol/livekit"
)

// Status is the lifecycle of one connection channel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// ConnectionState tracks the media session and score socket independently.
type ConnectionState struct {
	LiveKit      Status `json:"livekit"`
	WebSocket    Status `json:"websocket"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// WithLiveKit returns a copy with the media channel set to st.
func (c ConnectionState) WithLiveKit(st Status) ConnectionState {
	c.LiveKit = st
	return c
}

// WithWebSocket returns a copy with the score channel set to st.
func (c ConnectionState) WithWebSocket(st Status) ConnectionState {
	c.WebSocket = st
	return c
}

// WithError returns a copy with the score channel in error and msg recorded.
func (c ConnectionState) WithError(msg string) ConnectionState {
	c.WebSocket = StatusError
	c.ErrorMessage = msg
	return c
}

// Phase is the tournament stage.
type Phase string

const (
	PhaseSemi  Phase = "semi"
	PhaseFinal Phase = "final"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool { return p == PhaseSemi || p == PhaseFinal }

// Game keys a scoreboard within a phase.
type Game string

const (
	Game1     Game = "game1"
	Game2     Game = "game2"
	GameFinal Game = "final"
)

// Games returns the games played in phase, in display order.
func (p Phase) Games() []Game {
	if p == PhaseFinal {
		return []Game{GameFinal}
	}
	return []Game{Game1, Game2}
}

// Angle distinguishes camera feeds of the same game.
type Angle string

const (
	AngleMain   Angle = "main"
	AngleFirst  Angle = "angle1"
	AngleSecond Angle = "angle2"
)

// PageType is the view the client currently shows.
type PageType string

const (
	PageHome   PageType = "home"
	PageCamera PageType = "camera"
	PageAdmin  PageType = "admin"
	PageOutput PageType = "output"
)

// GameScore maps a class name to its displayed score.
type GameScore map[string]string

// UnmarshalJSON accepts score values as strings or as JSON numbers; numbers are
// kept in their decimal text form.
func (g *GameScore) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*g = nil
		return nil
	}
	out := make(GameScore, len(raw))
	for class, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[class] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("score for %q: want string or number, got %s", class, v)
		}
		out[class] = n.String()
	}
	*g = out
	return nil
}

// Games holds the per-game scoreboards of a snapshot. Absent games are nil.
type Games struct {
	Game1 GameScore `json:"game1,omitempty"`
	Game2 GameScore `json:"game2,omitempty"`
	Final GameScore `json:"final,omitempty"`
}

// Get returns the scoreboard for game, or nil.
func (g Games) Get(game Game) GameScore {
	switch game {
	case Game1:
		return g.Game1
	case Game2:
		return g.Game2
	case GameFinal:
		return g.Final
	}
	return nil
}

// ScoreData is one score snapshot as published by the score feed.
type ScoreData struct {
	Phase  Phase `json:"phase"`
	Scores Games `json:"scores"`
}

// InitialScores is the value of the score store before any frame arrives.
func InitialScores() ScoreData {
	return ScoreData{Phase: PhaseSemi}
}

// Game returns the scoreboard for game, never nil.
func (d ScoreData) Game(game Game) GameScore {
	if g := d.Scores.Get(game); g != nil {
		return g
	}
	return GameScore{}
}

// StreamInfo describes one remote camera source.
type StreamInfo struct {
	Identity livekit.ParticipantIdentity `json:"identity"`
	SID      livekit.ParticipantID       `json:"sid"`
	Video    *livekit.TrackInfo          `json:"video,omitempty"`
	Audio    *livekit.TrackInfo          `json:"audio,omitempty"`
	Phase    Phase                       `json:"phase"`
	Game     Game                        `json:"game,omitempty"`
	Angle    Angle                       `json:"angle,omitempty"`
}
